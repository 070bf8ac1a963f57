// Package eventapi is the HTTP client for the Event and Auth Services.
package eventapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	apperrors "github.com/example/dayof/internal/core/errors"
	"github.com/example/dayof/internal/ctxutil"
	"github.com/example/dayof/internal/ports/secondary"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Tokens            secondary.TokenSource
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Client talks to the Event Service under {BaseURL}/events and the Auth
// Service under {BaseURL}/auth. It implements both secondary.EventGateway
// and secondary.AuthGateway. Requests are never retried.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	tokens  secondary.TokenSource
	logger  *slog.Logger
}

var (
	_ secondary.EventGateway = (*Client)(nil)
	_ secondary.AuthGateway  = (*Client)(nil)
)

// NewClient builds a client. A zero RequestsPerSecond disables throttling.
func NewClient(opts Options) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: parsed,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		tokens:  opts.Tokens,
		logger:  logger,
	}, nil
}

// errorResponse is the failure body shape: {"message": "..."}.
type errorResponse struct {
	Message string `json:"message"`
}

// request is a single outbound call.
type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
}

func jsonRequest(method, reqPath string, payload any) (request, error) {
	r := request{method: method, path: reqPath}
	if payload == nil {
		return r, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return r, fmt.Errorf("failed to marshal request body: %w", err)
	}
	r.body = bytes.NewReader(data)
	r.contentType = "application/json"
	return r, nil
}

// do executes r and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	op := r.method + " " + r.path

	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.Transport(op, err)
	}

	// r.path is already escaped; JoinPath keeps it as the raw path.
	u := c.baseURL.JoinPath(r.path)

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), r.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")

	requestID := ctxutil.RequestFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = ctxutil.WithRequestID(ctx, requestID)
	}
	req.Header.Set(RequestIDHeader, requestID)

	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "request failed", "op", op, "error", err)
		return apperrors.Transport(op, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "request completed",
		"op", op,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remote := c.handleHTTPError(resp)
		c.logger.WarnContext(ctx, "remote service rejected request",
			"op", op,
			"status", remote.StatusCode,
			"message", remote.Message,
		)
		return remote
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Transport(op, errors.New("empty response body"))
		}
		return apperrors.Transport(op, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// handleHTTPError reads the {message} body of a non-2xx response.
func (c *Client) handleHTTPError(resp *http.Response) *apperrors.RemoteError {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body errorResponse
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		body.Message = ""
	}
	return &apperrors.RemoteError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(body.Message),
	}
}
