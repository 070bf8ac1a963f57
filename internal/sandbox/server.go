// Package sandbox is an in-memory stand-in for the Event and Auth Services,
// used for local runs of the CLI and for end-to-end tests. Issued OTP codes
// are written to the log instead of being emailed.
package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/example/dayof/internal/clock"
	"github.com/example/dayof/internal/core/otp"
	"github.com/example/dayof/internal/ctxutil"
)

// Options configures a Server.
type Options struct {
	Secret   string
	TokenTTL time.Duration
	OTPTTL   time.Duration
	Clock    clock.Clock
	Logger   *slog.Logger

	// OnOTPIssued, when set, receives every issued code.
	OnOTPIssued func(eventID string, kind otp.Kind, code string)
}

// Server serves the sandbox API under /api.
type Server struct {
	store  *store
	tokens *TokenManager
	clock  clock.Clock
	otpTTL time.Duration
	logger *slog.Logger
	onOTP  func(eventID string, kind otp.Kind, code string)
}

var errVendorExists = errors.New("vendor already exists")

// NewServer creates a sandbox server.
func NewServer(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = otp.DefaultTTL
	}
	return &Server{
		store:  newStore(),
		tokens: NewTokenManager(opts.Secret, opts.TokenTTL, opts.Clock),
		clock:  opts.Clock,
		otpTTL: opts.OTPTTL,
		logger: opts.Logger,
		onOTP:  opts.OnOTPIssued,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/auth/me", s.handleMe)
			r.Route("/events", func(r chi.Router) {
				r.Get("/", s.handleListEvents)
				r.Post("/", s.handleCreateEvent)
				r.Get("/analytics", s.handleAnalytics)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetEvent)
					r.Delete("/", s.handleDeleteEvent)
					r.Post("/checkin", s.handleCheckIn)
					r.Post("/start-otp", s.handleTriggerOTP(otp.KindStart))
					r.Post("/verify-start-otp", s.handleVerifyOTP(otp.KindStart))
					r.Post("/setup-photos", s.handleSetupPhotos)
					r.Post("/closing-otp", s.handleTriggerOTP(otp.KindClosing))
					r.Post("/verify-closing-otp", s.handleVerifyOTP(otp.KindClosing))
				})
			})
		})
	})

	return r
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("sandbox starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("sandbox shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestID ensures each request has an X-Request-ID and carries it in the
// context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctxutil.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLogger logs method, path, status and duration of each request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}

// authenticate validates the bearer token and stores the vendor id in the
// request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		claims, err := s.tokens.ValidateToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		if _, ok := s.store.vendor(claims.VendorID); !ok {
			writeError(w, http.StatusUnauthorized, "Not authorized, vendor not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(ctxutil.WithVendorID(r.Context(), claims.VendorID)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
