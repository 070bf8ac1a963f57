package sandbox

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/example/dayof/internal/core/event"
	"github.com/example/dayof/internal/core/otp"
	"github.com/example/dayof/internal/ctxutil"
	"github.com/example/dayof/internal/ports/secondary"
)

const maxUploadBytes = 32 << 20

type createEventRequest struct {
	EventName     string `json:"eventName"`
	EventDate     string `json:"eventDate"`
	Location      string `json:"location"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
}

type verifyRequest struct {
	OTP string `json:"otp"`
}

// reply is the outcome of a handler step run under the store lock.
type reply struct {
	status int
	body   any
}

func success(body any) reply { return reply{status: http.StatusOK, body: body} }

func fail(status int, message string) reply {
	return reply{status: status, body: map[string]string{"message": message}}
}

func (rp reply) write(w http.ResponseWriter) { writeJSON(w, rp.status, rp.body) }

// withEvent runs fn on the caller's event while holding the store lock.
func (s *Server) withEvent(r *http.Request, fn func(rec *record) reply) reply {
	id := chi.URLParam(r, "id")
	vendorID := ctxutil.VendorFromContext(r.Context())

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	rec, found := s.store.events[id]
	if !found || rec.deleted {
		return fail(http.StatusNotFound, "Event not found")
	}
	if rec.vendorID != vendorID {
		return fail(http.StatusForbidden, "Not authorized to access this event")
	}
	return fn(rec)
}

// eventBody encodes p at once, while the store lock still guards the
// fields it points into.
func eventBody(p event.Patch) map[string]json.RawMessage {
	data, _ := json.Marshal(p)
	return map[string]json.RawMessage{"event": data}
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	vendorID := ctxutil.VendorFromContext(r.Context())

	s.store.mu.Lock()
	events := make([]event.Event, 0, len(s.store.events))
	for _, rec := range s.store.events {
		if rec.vendorID == vendorID && !rec.deleted {
			events = append(events, rec.event.Clone())
		}
	}
	s.store.mu.Unlock()

	sortEvents(events)
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	for _, f := range []*string{&req.EventName, &req.EventDate, &req.Location, &req.CustomerName, &req.CustomerEmail, &req.CustomerPhone} {
		*f = strings.TrimSpace(*f)
		if *f == "" {
			writeError(w, http.StatusBadRequest, "All fields are required")
			return
		}
	}
	date, err := time.Parse(time.RFC3339, req.EventDate)
	if err != nil {
		date, err = time.Parse(time.DateOnly, req.EventDate)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event date")
		return
	}

	now := s.clock.Now().UTC()
	date = date.UTC()
	e := event.Event{
		ID:            uuid.NewString(),
		EventName:     req.EventName,
		EventDate:     &date,
		Location:      req.Location,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Status:        event.StatusPending,
		EventSetup:    event.Setup{PreSetupPhotos: []event.PhotoRef{}, PostSetupPhotos: []event.PhotoRef{}},
		CreatedAt:     &now,
		UpdatedAt:     &now,
	}

	s.store.mu.Lock()
	s.store.events[e.ID] = &record{event: e, vendorID: ctxutil.VendorFromContext(r.Context())}
	s.store.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"event": e})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	s.withEvent(r, func(rec *record) reply {
		return success(map[string]any{"event": rec.event.Clone()})
	}).write(w)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	s.withEvent(r, func(rec *record) reply {
		rec.deleted = true
		return success(map[string]string{"message": "Event deleted"})
	}).write(w)
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	file, header, err := r.FormFile("arrivalPhoto")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Arrival photo is required")
		return
	}
	file.Close()

	lat, latErr := strconv.ParseFloat(r.FormValue("latitude"), 64)
	lng, lngErr := strconv.ParseFloat(r.FormValue("longitude"), 64)
	if latErr != nil || lngErr != nil {
		writeError(w, http.StatusBadRequest, "Location is required")
		return
	}

	s.withEvent(r, func(rec *record) reply {
		if rec.event.CheckedIn() {
			return fail(http.StatusBadRequest, "Event already checked in")
		}
		now := s.clock.Now().UTC()
		rec.event.CheckIn = event.CheckIn{
			Timestamp:    &now,
			ArrivalPhoto: uploadURL(header.Filename),
			Location:     &event.Location{Latitude: lat, Longitude: lng},
		}
		rec.event.Status = event.StatusCheckedIn
		rec.event.UpdatedAt = &now

		return success(eventBody(event.Patch{ID: &rec.event.ID, Status: &rec.event.Status, CheckIn: &rec.event.CheckIn}))
	}).write(w)
}

func (s *Server) handleTriggerOTP(kind otp.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.withEvent(r, func(rec *record) reply {
			field, code := s.otpField(rec, kind)
			switch {
			case kind == otp.KindStart && !rec.event.CheckedIn():
				return fail(http.StatusBadRequest, "Check-in required before start OTP")
			case kind == otp.KindClosing && rec.event.Status != event.StatusInProgress:
				return fail(http.StatusBadRequest, "Event must be in progress to send closing OTP")
			case field.IsVerified:
				return fail(http.StatusBadRequest, "OTP already verified")
			}

			newCode, err := newOTPCode()
			if err != nil {
				s.logger.ErrorContext(r.Context(), "otp generation failed", "error", err)
				return fail(http.StatusInternalServerError, "Failed to generate OTP")
			}
			now := s.clock.Now().UTC()
			*field = event.OTP{SentAt: &now}
			*code = newCode
			rec.event.UpdatedAt = &now

			s.logger.InfoContext(r.Context(), "otp issued",
				"event_id", rec.event.ID,
				"kind", string(kind),
				"otp", newCode,
				"customer_email", rec.event.CustomerEmail,
			)
			if s.onOTP != nil {
				s.onOTP(rec.event.ID, kind, newCode)
			}
			return success(eventBody(otpPatch(rec, kind, false)))
		}).write(w)
	}
}

func (s *Server) handleVerifyOTP(kind otp.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		s.withEvent(r, func(rec *record) reply {
			field, code := s.otpField(rec, kind)
			now := s.clock.Now().UTC()
			switch {
			case field.IsVerified:
				return fail(http.StatusBadRequest, "OTP already verified")
			case field.SentAt == nil || *code == "":
				return fail(http.StatusBadRequest, "OTP not sent")
			case now.Sub(*field.SentAt) > s.otpTTL:
				return fail(http.StatusBadRequest, "OTP expired")
			case strings.TrimSpace(req.OTP) != *code:
				return fail(http.StatusBadRequest, "Invalid OTP")
			}

			field.IsVerified = true
			field.VerifiedAt = &now
			*code = ""
			if kind == otp.KindStart {
				rec.event.Status = event.StatusStarted
			} else {
				rec.event.Status = event.StatusCompleted
			}
			rec.event.UpdatedAt = &now
			return success(eventBody(otpPatch(rec, kind, true)))
		}).write(w)
	}
}

func (s *Server) handleSetupPhotos(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	phase := r.FormValue("type")
	if phase != "pre" && phase != "post" {
		writeError(w, http.StatusBadRequest, "Photo type must be pre or post")
		return
	}
	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "At least one photo is required")
		return
	}
	notes := strings.TrimSpace(r.FormValue("notes"))

	s.withEvent(r, func(rec *record) reply {
		if !rec.event.StartOTP.IsVerified {
			return fail(http.StatusBadRequest, "Start OTP must be verified first")
		}
		now := s.clock.Now().UTC()
		refs := make([]event.PhotoRef, 0, len(files))
		for _, fh := range files {
			uploaded := now
			refs = append(refs, event.PhotoRef{URL: uploadURL(fh.Filename), UploadedAt: &uploaded})
		}

		setup := &rec.event.EventSetup
		if phase == "pre" {
			setup.PreSetupPhotos = append(setup.PreSetupPhotos, refs...)
			if notes != "" {
				setup.PreSetupNotes = notes
			}
		} else {
			setup.PostSetupPhotos = append(setup.PostSetupPhotos, refs...)
			if notes != "" {
				setup.PostSetupNotes = notes
			}
		}
		if rec.event.Status == event.StatusStarted {
			rec.event.Status = event.StatusInProgress
		}
		rec.event.UpdatedAt = &now

		return success(eventBody(event.Patch{ID: &rec.event.ID, Status: &rec.event.Status, EventSetup: setup}))
	}).write(w)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	vendorID := ctxutil.VendorFromContext(r.Context())
	out := secondary.AnalyticsRecord{StatusCounts: make(map[string]int)}

	var started, completed, total averager
	s.store.mu.Lock()
	for _, rec := range s.store.events {
		if rec.vendorID != vendorID {
			continue
		}
		out.Totals.All++
		if rec.deleted {
			out.Totals.Deleted++
			continue
		}
		out.Totals.Active++
		out.StatusCounts[string(rec.event.Status)]++

		e := rec.event
		started.add(e.CheckIn.Timestamp, e.StartOTP.VerifiedAt)
		completed.add(e.StartOTP.VerifiedAt, e.ClosingOTP.VerifiedAt)
		total.add(e.CheckIn.Timestamp, e.ClosingOTP.VerifiedAt)
	}
	s.store.mu.Unlock()

	out.AvgDurationsMs = secondary.AnalyticsDurations{
		CheckInToStarted:   started.mean(),
		StartedToCompleted: completed.mean(),
		CheckInToCompleted: total.mean(),
	}
	writeJSON(w, http.StatusOK, map[string]any{"analytics": out})
}

// otpField returns the OTP record and stored code for kind.
func (s *Server) otpField(rec *record, kind otp.Kind) (*event.OTP, *string) {
	if kind == otp.KindClosing {
		return &rec.event.ClosingOTP, &rec.closingCode
	}
	return &rec.event.StartOTP, &rec.startCode
}

// otpPatch is the narrow response for an OTP action.
func otpPatch(rec *record, kind otp.Kind, withStatus bool) event.Patch {
	p := event.Patch{ID: &rec.event.ID}
	if withStatus {
		p.Status = &rec.event.Status
	}
	if kind == otp.KindClosing {
		p.ClosingOTP = &rec.event.ClosingOTP
	} else {
		p.StartOTP = &rec.event.StartOTP
	}
	return p
}

func uploadURL(filename string) string {
	return "/uploads/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

// averager accumulates the mean gap between two timestamps in milliseconds.
type averager struct {
	sum   float64
	count int
}

func (a *averager) add(from, to *time.Time) {
	if from == nil || to == nil {
		return
	}
	a.sum += float64(to.Sub(*from).Milliseconds())
	a.count++
}

func (a *averager) mean() *float64 {
	if a.count == 0 {
		return nil
	}
	m := a.sum / float64(a.count)
	return &m
}
