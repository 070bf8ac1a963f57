package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"github.com/example/dayof/internal/clock"
	"github.com/example/dayof/internal/core/effects"
	apperrors "github.com/example/dayof/internal/core/errors"
	"github.com/example/dayof/internal/ports/primary"
	"github.com/example/dayof/internal/ports/secondary"
)

// AuthServiceImpl implements the AuthService interface.
type AuthServiceImpl struct {
	auth     secondary.AuthGateway
	store    secondary.CredentialRepository
	creds    *Credentials
	executor EffectExecutor
	validate *validator.Validate
	clock    clock.Clock
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService with injected dependencies.
func NewAuthService(
	auth secondary.AuthGateway,
	store secondary.CredentialRepository,
	creds *Credentials,
	executor EffectExecutor,
	clk clock.Clock,
	logger *slog.Logger,
) *AuthServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthServiceImpl{
		auth:     auth,
		store:    store,
		creds:    creds,
		executor: executor,
		validate: newValidator(),
		clock:    clk,
		logger:   logger,
	}
}

// Login signs the vendor in and stores the credential.
func (s *AuthServiceImpl) Login(ctx context.Context, req primary.LoginRequest) (*primary.Vendor, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(s.validate, req); err != nil {
		return nil, s.reject(ctx, err, "Login failed")
	}

	rec, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.reject(ctx, err, "Login failed")
	}
	vendor, err := s.establish(ctx, rec)
	if err != nil {
		return nil, s.reject(ctx, err, "Login failed")
	}
	s.notify(ctx, effects.LevelSuccess, "Login successful!")
	return vendor, nil
}

// Register creates an account and signs it in.
func (s *AuthServiceImpl) Register(ctx context.Context, req primary.RegisterRequest) (*primary.Vendor, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validateRequest(s.validate, req); err != nil {
		return nil, s.reject(ctx, err, "Registration failed")
	}

	rec, err := s.auth.Register(ctx, secondary.RegisterRecord{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return nil, s.reject(ctx, err, "Registration failed")
	}
	vendor, err := s.establish(ctx, rec)
	if err != nil {
		return nil, s.reject(ctx, err, "Registration failed")
	}
	s.notify(ctx, effects.LevelSuccess, "Registration successful!")
	return vendor, nil
}

// WhoAmI refreshes the vendor identity. Any failed refresh clears the
// stored credential.
func (s *AuthServiceImpl) WhoAmI(ctx context.Context) (*primary.Vendor, error) {
	if s.creds.Token() == "" {
		return nil, apperrors.ErrNotAuthenticated
	}

	rec, err := s.auth.Me(ctx)
	if err != nil {
		s.logger.InfoContext(ctx, "identity refresh failed, clearing credential", "error", err)
		s.Invalidate(ctx)
		return nil, err
	}

	stored, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	if stored == nil {
		return nil, apperrors.ErrNotAuthenticated
	}
	stored.VendorID = rec.ID
	stored.VendorName = rec.Name
	stored.VendorEmail = rec.Email
	if err := s.store.Save(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to save credential: %w", err)
	}
	s.creds.Set(stored.Token, rec.ID)
	return vendorOf(stored), nil
}

// Current returns the stored vendor without a network call.
func (s *AuthServiceImpl) Current(ctx context.Context) (*primary.Vendor, error) {
	stored, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	if stored == nil {
		return nil, apperrors.ErrNotAuthenticated
	}
	return vendorOf(stored), nil
}

// Restore loads the stored credential into memory. An expired token is
// discarded and reported as ErrSessionInvalid.
func (s *AuthServiceImpl) Restore(ctx context.Context) error {
	stored, err := s.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load credential: %w", err)
	}
	if stored == nil {
		s.creds.Clear()
		return apperrors.ErrNotAuthenticated
	}
	if stored.ExpiresAt != nil && !s.clock.Now().Before(*stored.ExpiresAt) {
		s.logger.InfoContext(ctx, "stored token expired", "expires_at", stored.ExpiresAt)
		s.Invalidate(ctx)
		return apperrors.ErrSessionInvalid
	}
	s.creds.Set(stored.Token, stored.VendorID)
	return nil
}

// Logout clears the stored credential.
func (s *AuthServiceImpl) Logout(ctx context.Context) error {
	s.creds.Clear()
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	s.notify(ctx, effects.LevelInfo, "Logged out successfully")
	return nil
}

// Invalidate drops the credential after the service rejected it.
func (s *AuthServiceImpl) Invalidate(ctx context.Context) {
	s.creds.Clear()
	if err := s.store.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to clear credential", "error", err)
	}
}

// establish stores the credential returned by login or register.
func (s *AuthServiceImpl) establish(ctx context.Context, rec *secondary.AuthRecord) (*primary.Vendor, error) {
	if rec == nil || rec.Token == "" {
		return nil, errors.New("auth service returned no token")
	}

	claims, err := peekClaims(rec.Token)
	if err != nil {
		s.logger.DebugContext(ctx, "token claims unreadable", "error", err)
	}

	cred := &secondary.CredentialRecord{
		Token:       rec.Token,
		VendorID:    rec.Vendor.ID,
		VendorName:  rec.Vendor.Name,
		VendorEmail: rec.Vendor.Email,
		SavedAt:     s.clock.Now(),
	}
	if claims != nil {
		if cred.VendorID == "" {
			cred.VendorID = claims.Subject
		}
		if claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.Time.UTC()
			cred.ExpiresAt = &exp
		}
	}

	if err := s.store.Save(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to save credential: %w", err)
	}
	s.creds.Set(cred.Token, cred.VendorID)
	return vendorOf(cred), nil
}

// peekClaims reads the registered claims of a bearer token without
// verifying its signature. The client never holds the signing key; the
// claims only drive local expiry.
func peekClaims(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func vendorOf(cred *secondary.CredentialRecord) *primary.Vendor {
	return &primary.Vendor{
		ID:        cred.VendorID,
		Name:      cred.VendorName,
		Email:     cred.VendorEmail,
		ExpiresAt: cred.ExpiresAt,
	}
}

func (s *AuthServiceImpl) reject(ctx context.Context, err error, fallback string) error {
	s.notify(ctx, effects.LevelError, apperrors.UserMessage(err, fallback))
	return err
}

func (s *AuthServiceImpl) notify(ctx context.Context, level, msg string) {
	if s.executor == nil {
		return
	}
	if err := s.executor.Execute(ctx, []effects.Effect{effects.NotifyEffect{Level: level, Message: msg}}); err != nil {
		s.logger.WarnContext(ctx, "notify failed", "error", err)
	}
}
