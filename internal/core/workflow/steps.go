// Package workflow contains the pure gating logic of the day-of workflow.
// The state machine is stateless: every answer is derived from an Event plus,
// where relevant, the transient step the vendor is looking at.
package workflow

import (
	"fmt"

	"github.com/example/dayof/internal/core/event"
	"github.com/example/dayof/internal/core/otp"
)

// Step is one of the four ordered workflow steps.
type Step string

const (
	StepCheckIn     Step = "checkin"
	StepStartVerify Step = "start-otp"
	StepSetup       Step = "setup"
	StepClose       Step = "closing"
)

// Steps lists the steps in gate order.
var Steps = []Step{StepCheckIn, StepStartVerify, StepSetup, StepClose}

// ParseStep parses a step name as typed on the command line.
func ParseStep(s string) (Step, error) {
	switch s {
	case "checkin", "check-in", "1":
		return StepCheckIn, nil
	case "start-otp", "start", "2":
		return StepStartVerify, nil
	case "setup", "3":
		return StepSetup, nil
	case "closing", "close", "4":
		return StepClose, nil
	}
	return "", fmt.Errorf("unknown step %q (expected checkin, start, setup or close)", s)
}

// Title returns the display title of the step.
func (s Step) Title() string {
	switch s {
	case StepCheckIn:
		return "Check-In"
	case StepStartVerify:
		return "Start OTP"
	case StepSetup:
		return "Event Setup"
	case StepClose:
		return "Close Event"
	}
	return string(s)
}

// Number returns the 1-based position of the step.
func (s Step) Number() int {
	for i, step := range Steps {
		if step == s {
			return i + 1
		}
	}
	return 0
}

// StepFor returns the step an OTP kind belongs to.
func StepFor(kind otp.Kind) Step {
	if kind == otp.KindClosing {
		return StepClose
	}
	return StepStartVerify
}

// StepState is the evaluated gate of one step.
type StepState struct {
	Step     Step
	Unlocked bool
	Complete bool
}

// SetupProgress tracks pre and post setup photos independently.
type SetupProgress struct {
	PreCount  int
	PostCount int
}

// PreDone reports whether at least one pre-setup photo exists.
func (p SetupProgress) PreDone() bool { return p.PreCount > 0 }

// PostDone reports whether at least one post-setup photo exists.
func (p SetupProgress) PostDone() bool { return p.PostCount > 0 }

// SetupProgressOf counts the setup photos of e.
func SetupProgressOf(e event.Event) SetupProgress {
	return SetupProgress{
		PreCount:  len(e.EventSetup.PreSetupPhotos),
		PostCount: len(e.EventSetup.PostSetupPhotos),
	}
}

// IsUnlocked reports whether step may be acted on for e.
func IsUnlocked(e event.Event, step Step) bool {
	switch step {
	case StepCheckIn:
		return true
	case StepStartVerify:
		return e.CheckedIn()
	case StepSetup:
		return e.StartOTP.IsVerified
	case StepClose:
		return e.Status == event.StatusInProgress
	}
	return false
}

// IsComplete reports whether step is done for e.
func IsComplete(e event.Event, step Step) bool {
	switch step {
	case StepCheckIn:
		return e.CheckedIn()
	case StepStartVerify:
		return e.StartOTP.IsVerified
	case StepSetup:
		p := SetupProgressOf(e)
		return p.PreDone() || p.PostDone()
	case StepClose:
		return e.ClosingOTP.IsVerified
	}
	return false
}

// Evaluate returns the gate state of every step in order.
func Evaluate(e event.Event) []StepState {
	states := make([]StepState, len(Steps))
	for i, step := range Steps {
		states[i] = StepState{
			Step:     step,
			Unlocked: IsUnlocked(e, step),
			Complete: IsComplete(e, step),
		}
	}
	return states
}

// DefaultStep returns the first unlocked step that is not yet complete.
// When every unlocked step is done it returns the furthest step that can
// still be viewed.
func DefaultStep(e event.Event) Step {
	states := Evaluate(e)
	for _, s := range states {
		if s.Unlocked && !s.Complete {
			return s.Step
		}
	}
	for i := len(states) - 1; i >= 0; i-- {
		if states[i].Unlocked || states[i].Complete {
			return states[i].Step
		}
	}
	return StepCheckIn
}

// ResolveStep returns the step the view should show: the vendor's selection
// while it is still selectable, otherwise DefaultStep. Call it after every
// Event change instead of storing the result.
func ResolveStep(e event.Event, selected Step) Step {
	if selected != "" && CanSelect(e, selected).Allowed {
		return selected
	}
	return DefaultStep(e)
}
