package eventapi

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/example/dayof/internal/core/errors"
	"github.com/example/dayof/internal/ports/secondary"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type vendorEnvelope struct {
	Vendor *secondary.VendorRecord `json:"vendor"`
}

// Login exchanges email and password for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*secondary.AuthRecord, error) {
	r, err := jsonRequest(http.MethodPost, "auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return c.authCall(ctx, r)
}

// Register creates a vendor account and returns its bearer token.
func (c *Client) Register(ctx context.Context, rec secondary.RegisterRecord) (*secondary.AuthRecord, error) {
	r, err := jsonRequest(http.MethodPost, "auth/register", rec)
	if err != nil {
		return nil, err
	}
	return c.authCall(ctx, r)
}

// Me returns the vendor the current token belongs to.
func (c *Client) Me(ctx context.Context) (*secondary.VendorRecord, error) {
	var out vendorEnvelope
	if err := c.do(ctx, request{method: http.MethodGet, path: "auth/me"}, &out); err != nil {
		return nil, err
	}
	if out.Vendor == nil {
		return nil, apperrors.Transport("GET auth/me", errors.New("response missing vendor"))
	}
	return out.Vendor, nil
}

func (c *Client) authCall(ctx context.Context, r request) (*secondary.AuthRecord, error) {
	var out secondary.AuthRecord
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, apperrors.Transport(r.method+" "+r.path, errors.New("response missing token"))
	}
	return &out, nil
}
