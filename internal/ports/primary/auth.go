package primary

import (
	"context"
	"time"
)

// AuthService defines the primary port for vendor sign-in.
type AuthService interface {
	// Login signs the vendor in and stores the credential.
	Login(ctx context.Context, req LoginRequest) (*Vendor, error)

	// Register creates an account, signs it in and stores the credential.
	Register(ctx context.Context, req RegisterRequest) (*Vendor, error)

	// WhoAmI refreshes the vendor identity from the Auth Service.
	// A rejected token is cleared.
	WhoAmI(ctx context.Context) (*Vendor, error)

	// Current returns the stored vendor without a network call.
	Current(ctx context.Context) (*Vendor, error)

	// Restore loads the stored credential for this process. An expired
	// credential is discarded.
	Restore(ctx context.Context) error

	// Logout clears the stored credential.
	Logout(ctx context.Context) error
}

// LoginRequest contains parameters for signing in.
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// RegisterRequest contains parameters for creating an account.
type RegisterRequest struct {
	Name     string `validate:"required,min=2"`
	Email    string `validate:"required,email"`
	Phone    string `validate:"required,vendor_phone"`
	Password string `validate:"required,min=8,strong_password"`
}

// Vendor represents the signed-in vendor at the port boundary.
type Vendor struct {
	ID        string
	Name      string
	Email     string
	ExpiresAt *time.Time
}
