// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"

	"github.com/example/dayof/internal/core/event"
	"github.com/example/dayof/internal/core/otp"
)

// EventGateway defines the secondary port for the remote Event Service.
// Mutations return the service's (possibly partial) view of the event.
type EventGateway interface {
	// ListEvents retrieves every event owned by the vendor.
	ListEvents(ctx context.Context) ([]event.Patch, error)

	// GetEvent retrieves one event in full.
	GetEvent(ctx context.Context, id string) (event.Patch, error)

	// CreateEvent creates a new event from its descriptive fields.
	CreateEvent(ctx context.Context, req NewEventRecord) (event.Patch, error)

	// DeleteEvent removes an event.
	DeleteEvent(ctx context.Context, id string) error

	// CheckIn records the vendor's arrival with a photo and a position fix.
	CheckIn(ctx context.Context, id string, upload CheckInUpload) (event.Patch, error)

	// TriggerOTP issues (or re-issues) a passcode of the given kind.
	TriggerOTP(ctx context.Context, id string, kind otp.Kind) (event.Patch, error)

	// VerifyOTP submits a passcode of the given kind.
	VerifyOTP(ctx context.Context, id string, kind otp.Kind, code string) (event.Patch, error)

	// UploadSetupPhotos uploads one batch of setup photos.
	UploadSetupPhotos(ctx context.Context, id string, upload SetupUpload) (event.Patch, error)

	// Analytics retrieves the vendor's aggregate statistics.
	Analytics(ctx context.Context) (*AnalyticsRecord, error)
}

// NewEventRecord carries the descriptive fields of an event to create.
type NewEventRecord struct {
	EventName     string    `json:"eventName"`
	EventDate     time.Time `json:"eventDate"`
	Location      string    `json:"location"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerPhone string    `json:"customerPhone"`
}

// CheckInUpload is the multipart body of a check-in.
type CheckInUpload struct {
	Photo    Photo
	Position Coordinates
}

// SetupUpload is the multipart body of a setup photo batch.
type SetupUpload struct {
	Phase  string // pre, post
	Photos []Photo
	Notes  string // attached only when non-empty
}

// AnalyticsRecord is the aggregate statistics document.
type AnalyticsRecord struct {
	Totals         AnalyticsTotals    `json:"totals"`
	StatusCounts   map[string]int     `json:"statusCounts"`
	AvgDurationsMs AnalyticsDurations `json:"avgDurationsMs"`
}

// AnalyticsTotals counts events by lifecycle.
type AnalyticsTotals struct {
	All     int `json:"all"`
	Active  int `json:"active"`
	Deleted int `json:"deleted"`
}

// AnalyticsDurations holds average phase durations in milliseconds.
// A nil value means no completed event contributed to it.
type AnalyticsDurations struct {
	CheckInToStarted   *float64 `json:"checkInToStarted"`
	StartedToCompleted *float64 `json:"startedToCompleted"`
	CheckInToCompleted *float64 `json:"checkInToCompleted"`
}

// AuthGateway defines the secondary port for the remote Auth Service.
type AuthGateway interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, email, password string) (*AuthRecord, error)

	// Register creates a vendor account and signs it in.
	Register(ctx context.Context, req RegisterRecord) (*AuthRecord, error)

	// Me returns the vendor the current token belongs to.
	Me(ctx context.Context) (*VendorRecord, error)
}

// RegisterRecord carries the fields of a new vendor account.
type RegisterRecord struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// AuthRecord is the response of login and register.
type AuthRecord struct {
	Token  string       `json:"token"`
	Vendor VendorRecord `json:"vendor"`
}

// VendorRecord is a vendor account as returned by the Auth Service.
type VendorRecord struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// TokenSource supplies the bearer token attached to outbound requests.
type TokenSource interface {
	// Token returns the current token, or "" when signed out.
	Token() string
}
