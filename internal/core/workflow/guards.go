package workflow

import (
	"fmt"
	"time"

	apperrors "github.com/example/dayof/internal/core/errors"
	"github.com/example/dayof/internal/core/event"
	"github.com/example/dayof/internal/core/otp"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Expired bool
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	if r.Expired {
		return apperrors.Expiry(r.Reason)
	}
	return apperrors.Validation("%s", r.Reason)
}

func allowed() GuardResult { return GuardResult{Allowed: true} }

func denied(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// lockedReason explains why step is locked for e.
func lockedReason(e event.Event, step Step) string {
	switch step {
	case StepStartVerify:
		return "Start OTP is locked: check in first"
	case StepSetup:
		return "Event Setup is locked: verify the start OTP first"
	case StepClose:
		return fmt.Sprintf("Close Event is locked: event must be in-progress (current status: %s)", e.Status)
	}
	return fmt.Sprintf("%s is locked", step.Title())
}

// CanSelect evaluates whether the view cursor may move to step.
// Rules:
// - Unlocked steps can be selected
// - Completed steps can always be viewed
func CanSelect(e event.Event, step Step) GuardResult {
	if step.Number() == 0 {
		return denied("unknown step %q", step)
	}
	if IsUnlocked(e, step) || IsComplete(e, step) {
		return allowed()
	}
	return denied("%s", lockedReason(e, step))
}

// CheckInContext provides context for check-in guards.
type CheckInContext struct {
	Event         event.Event
	PhotoSelected bool
}

// CanCheckIn evaluates whether a check-in may be attempted.
// Rules:
// - Event must not be checked in already
// - A photo must be selected
// Geolocation is acquired afterwards, still before any request.
func CanCheckIn(ctx CheckInContext) GuardResult {
	if ctx.Event.CheckedIn() {
		return denied("Already checked in")
	}
	if !ctx.PhotoSelected {
		return denied("Please select a photo")
	}
	return allowed()
}

// CanSendOTP evaluates whether a code of kind may be issued or re-issued.
// Rules:
// - The owning step must be unlocked
// - The challenge must not be verified already
func CanSendOTP(e event.Event, kind otp.Kind, ttl time.Duration) GuardResult {
	step := StepFor(kind)
	if !IsUnlocked(e, step) {
		return denied("%s", lockedReason(e, step))
	}
	r := otp.CanSend(kind, otp.ChallengeOf(otp.FieldOf(e, kind), ttl))
	return GuardResult{Allowed: r.Allowed, Reason: r.Reason}
}

// VerifyContext provides context for verification guards.
type VerifyContext struct {
	Event event.Event
	Kind  otp.Kind
	Code  string
	TTL   time.Duration
	Now   time.Time
}

// CanVerifyOTP evaluates whether a verification request may be sent.
// Rules:
// - The owning step must be unlocked
// - The challenge must be pending (not expired, sent, not verified)
// - The code must be exactly 6 digits
func CanVerifyOTP(ctx VerifyContext) GuardResult {
	step := StepFor(ctx.Kind)
	if !IsUnlocked(ctx.Event, step) {
		return denied("%s", lockedReason(ctx.Event, step))
	}
	r := otp.CanVerify(otp.VerifyContext{
		Challenge: otp.ChallengeOf(otp.FieldOf(ctx.Event, ctx.Kind), ctx.TTL),
		Code:      ctx.Code,
		Now:       ctx.Now,
	})
	return GuardResult{Allowed: r.Allowed, Reason: r.Reason, Expired: r.Expired}
}

// Phase is the setup sub-step a photo batch belongs to.
type Phase string

const (
	PhasePre  Phase = "pre"
	PhasePost Phase = "post"
)

// ParsePhase parses a phase name.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "pre":
		return PhasePre, nil
	case "post":
		return PhasePost, nil
	}
	return "", fmt.Errorf("unknown setup phase %q (expected pre or post)", s)
}

// Label returns the display prefix of the phase.
func (p Phase) Label() string {
	if p == PhasePost {
		return "Post"
	}
	return "Pre"
}

// UploadContext provides context for setup photo guards.
type UploadContext struct {
	Event      event.Event
	Phase      Phase
	PhotoCount int
}

// CanUploadSetupPhotos evaluates whether a setup photo batch may be uploaded.
// Rules:
// - Event Setup must be unlocked
// - Phase must be pre or post
// - At least one photo must be selected
func CanUploadSetupPhotos(ctx UploadContext) GuardResult {
	if !IsUnlocked(ctx.Event, StepSetup) {
		return denied("%s", lockedReason(ctx.Event, StepSetup))
	}
	if ctx.Phase != PhasePre && ctx.Phase != PhasePost {
		return denied("unknown setup phase %q", ctx.Phase)
	}
	if ctx.PhotoCount == 0 {
		return denied("Please select at least one photo")
	}
	return allowed()
}
