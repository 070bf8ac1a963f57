// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import (
	"context"
	"time"

	"github.com/example/dayof/internal/core/event"
	"github.com/example/dayof/internal/core/otp"
	"github.com/example/dayof/internal/core/workflow"
)

// WorkflowService defines the primary port for the day-of workflow.
type WorkflowService interface {
	// Open fetches an event and starts a workflow session on it.
	Open(ctx context.Context, eventID string) (WorkflowSession, error)
}

// WorkflowSession drives the gated steps of one event.
// At most one mutation runs at a time; a concurrent call fails with
// ErrActionInProgress. After Close every call fails with ErrSessionClosed.
type WorkflowSession interface {
	// Event returns a copy of the current local event view.
	Event() event.Event

	// Board returns the evaluated steps, cursor and OTP countdowns.
	Board() Board

	// Select moves the view cursor to step if it is selectable.
	Select(step workflow.Step) error

	// CheckIn uploads the arrival photo with a position fix.
	CheckIn(ctx context.Context, photoPath string) error

	// SendOTP issues or re-issues the passcode of kind.
	SendOTP(ctx context.Context, kind otp.Kind) error

	// VerifyOTP submits the customer's passcode of kind.
	VerifyOTP(ctx context.Context, kind otp.Kind, code string) error

	// UploadSetupPhotos uploads one batch of pre or post setup photos.
	UploadSetupPhotos(ctx context.Context, req SetupPhotosRequest) error

	// Refresh re-fetches the event and merges it.
	Refresh(ctx context.Context) error

	// Delete deletes the event and closes the session.
	Delete(ctx context.Context) error

	// Ticks delivers countdown ticks until the session closes.
	Ticks() <-chan Tick

	// Close stops all countdowns and discards late responses.
	Close()

	// Closed reports whether Close has run.
	Closed() bool
}

// SetupPhotosRequest contains parameters for a setup photo batch.
type SetupPhotosRequest struct {
	Phase workflow.Phase
	Paths []string
	Notes string
}

// Tick is one countdown update for an OTP challenge.
type Tick struct {
	Kind      otp.Kind
	Remaining time.Duration
	State     otp.State
}

// Board is the rendered state of a workflow session.
type Board struct {
	Event    event.Event
	Steps    []StepView
	Selected workflow.Step
	Setup    workflow.SetupProgress
	OTPs     []OTPView
}

// StepView is one step at the port boundary.
type StepView struct {
	Step     workflow.Step
	Title    string
	Number   int
	Unlocked bool
	Complete bool
	Selected bool
}

// OTPView is one passcode challenge at the port boundary.
type OTPView struct {
	Kind      otp.Kind
	State     otp.State
	SentAt    *time.Time
	Remaining time.Duration
}
