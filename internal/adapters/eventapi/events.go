package eventapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/example/dayof/internal/core/errors"
	"github.com/example/dayof/internal/core/event"
	"github.com/example/dayof/internal/core/otp"
	"github.com/example/dayof/internal/ports/secondary"
)

type eventEnvelope struct {
	Event *event.Patch `json:"event"`
}

type eventsEnvelope struct {
	Events []event.Patch `json:"events"`
}

type analyticsEnvelope struct {
	Analytics *secondary.AnalyticsRecord `json:"analytics"`
}

type verifyOTPRequest struct {
	OTP string `json:"otp"`
}

// eventPath returns the escaped path of an event resource.
func eventPath(id string, action ...string) (string, error) {
	if !event.ValidID(id) {
		return "", apperrors.Validation("Invalid event link")
	}
	parts := append([]string{"events", url.PathEscape(id)}, action...)
	return strings.Join(parts, "/"), nil
}

// otpPaths returns the trigger and verify actions for kind.
func otpPaths(kind otp.Kind) (trigger, verify string, err error) {
	switch kind {
	case otp.KindStart:
		return "start-otp", "verify-start-otp", nil
	case otp.KindClosing:
		return "closing-otp", "verify-closing-otp", nil
	}
	return "", "", fmt.Errorf("unknown OTP kind %q", kind)
}

// ListEvents returns every event visible to the signed-in vendor.
func (c *Client) ListEvents(ctx context.Context) ([]event.Patch, error) {
	var out eventsEnvelope
	if err := c.do(ctx, request{method: http.MethodGet, path: "events"}, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

// GetEvent fetches a single event.
func (c *Client) GetEvent(ctx context.Context, id string) (event.Patch, error) {
	p, err := eventPath(id)
	if err != nil {
		return event.Patch{}, err
	}
	return c.eventCall(ctx, request{method: http.MethodGet, path: p})
}

// CreateEvent registers a new event.
func (c *Client) CreateEvent(ctx context.Context, rec secondary.NewEventRecord) (event.Patch, error) {
	r, err := jsonRequest(http.MethodPost, "events", rec)
	if err != nil {
		return event.Patch{}, err
	}
	return c.eventCall(ctx, r)
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	p, err := eventPath(id)
	if err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodDelete, path: p}, nil)
}

// CheckIn posts the arrival photo and position as multipart form data.
func (c *Client) CheckIn(ctx context.Context, id string, upload secondary.CheckInUpload) (event.Patch, error) {
	form := newMultipartForm()
	form.file("arrivalPhoto", upload.Photo)
	form.field("latitude", strconv.FormatFloat(upload.Position.Latitude, 'f', -1, 64))
	form.field("longitude", strconv.FormatFloat(upload.Position.Longitude, 'f', -1, 64))

	p, err := eventPath(id, "checkin")
	if err != nil {
		return event.Patch{}, err
	}
	r, err := form.request(http.MethodPost, p)
	if err != nil {
		return event.Patch{}, err
	}
	return c.eventCall(ctx, r)
}

// TriggerOTP asks the service to issue a fresh code of kind to the customer.
func (c *Client) TriggerOTP(ctx context.Context, id string, kind otp.Kind) (event.Patch, error) {
	trigger, _, err := otpPaths(kind)
	if err != nil {
		return event.Patch{}, err
	}
	p, err := eventPath(id, trigger)
	if err != nil {
		return event.Patch{}, err
	}
	return c.eventCall(ctx, request{method: http.MethodPost, path: p})
}

// VerifyOTP submits the customer's code.
func (c *Client) VerifyOTP(ctx context.Context, id string, kind otp.Kind, code string) (event.Patch, error) {
	_, verify, err := otpPaths(kind)
	if err != nil {
		return event.Patch{}, err
	}
	p, err := eventPath(id, verify)
	if err != nil {
		return event.Patch{}, err
	}
	r, err := jsonRequest(http.MethodPost, p, verifyOTPRequest{OTP: code})
	if err != nil {
		return event.Patch{}, err
	}
	return c.eventCall(ctx, r)
}

// UploadSetupPhotos posts one batch of pre or post setup photos.
func (c *Client) UploadSetupPhotos(ctx context.Context, id string, upload secondary.SetupUpload) (event.Patch, error) {
	form := newMultipartForm()
	for _, p := range upload.Photos {
		form.file("photos", p)
	}
	form.field("type", upload.Phase)
	if upload.Notes != "" {
		form.field("notes", upload.Notes)
	}

	p, err := eventPath(id, "setup-photos")
	if err != nil {
		return event.Patch{}, err
	}
	r, err := form.request(http.MethodPost, p)
	if err != nil {
		return event.Patch{}, err
	}
	return c.eventCall(ctx, r)
}

// Analytics returns the vendor's aggregate event statistics.
func (c *Client) Analytics(ctx context.Context) (*secondary.AnalyticsRecord, error) {
	var out analyticsEnvelope
	if err := c.do(ctx, request{method: http.MethodGet, path: "events/analytics"}, &out); err != nil {
		return nil, err
	}
	if out.Analytics == nil {
		return nil, apperrors.Transport("GET events/analytics", errors.New("response missing analytics"))
	}
	return out.Analytics, nil
}

// eventCall performs r and unwraps the {event} envelope.
func (c *Client) eventCall(ctx context.Context, r request) (event.Patch, error) {
	var out eventEnvelope
	if err := c.do(ctx, r, &out); err != nil {
		return event.Patch{}, err
	}
	if out.Event == nil {
		return event.Patch{}, apperrors.Transport(r.method+" "+r.path, errors.New("response missing event"))
	}
	return *out.Event, nil
}

// multipartForm accumulates parts and remembers the first write error.
type multipartForm struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newMultipartForm() *multipartForm {
	f := &multipartForm{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *multipartForm) field(name, value string) {
	if f.err != nil {
		return
	}
	f.err = f.w.WriteField(name, value)
}

func (f *multipartForm) file(name string, p secondary.Photo) {
	if f.err != nil {
		return
	}
	contentType := p.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, p.Name))
	h.Set("Content-Type", contentType)
	part, err := f.w.CreatePart(h)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = part.Write(p.Data)
}

func (f *multipartForm) request(method, reqPath string) (request, error) {
	if f.err == nil {
		f.err = f.w.Close()
	}
	if f.err != nil {
		return request{}, fmt.Errorf("failed to build multipart body: %w", f.err)
	}
	return request{
		method:      method,
		path:        reqPath,
		body:        bytes.NewReader(f.buf.Bytes()),
		contentType: f.w.FormDataContentType(),
	}, nil
}
