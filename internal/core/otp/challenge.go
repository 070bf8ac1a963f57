// Package otp contains the pure business logic for customer passcode challenges.
// This is part of the Functional Core - no I/O, only pure functions.
// The caller passes the current time to enable testing.
package otp

import (
	"fmt"
	"time"

	"github.com/example/dayof/internal/core/event"
)

// DefaultTTL is how long an issued code stays valid.
const DefaultTTL = 10 * time.Minute

// CodeLength is the exact number of digits in a passcode.
const CodeLength = 6

// Kind identifies which of the two workflow passcodes is meant.
type Kind string

const (
	KindStart   Kind = "start"
	KindClosing Kind = "closing"
)

// Kinds lists both passcode kinds in workflow order.
var Kinds = []Kind{KindStart, KindClosing}

// ParseKind parses a kind name as typed on the command line.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "start", "start-otp":
		return KindStart, nil
	case "closing", "close", "closing-otp":
		return KindClosing, nil
	}
	return "", fmt.Errorf("unknown OTP kind %q (expected start or closing)", s)
}

// Label returns the human name used in messages.
func (k Kind) Label() string {
	if k == KindClosing {
		return "Closing"
	}
	return "Start"
}

// FieldOf returns the OTP field of e that k refers to.
func FieldOf(e event.Event, k Kind) event.OTP {
	if k == KindClosing {
		return e.ClosingOTP
	}
	return e.StartOTP
}

// State is the lifecycle state of one challenge.
// NotSent → Pending → {Verified | Expired}; Expired → Pending via resend.
type State string

const (
	StateNotSent  State = "not-sent"
	StatePending  State = "pending"
	StateVerified State = "verified"
	StateExpired  State = "expired"
)

// Challenge is the derived, never persisted, view of an OTP field.
type Challenge struct {
	SentAt     *time.Time
	IsVerified bool
	TTL        time.Duration
}

// ChallengeOf derives the challenge for an OTP field. A non-positive ttl
// falls back to DefaultTTL.
func ChallengeOf(f event.OTP, ttl time.Duration) Challenge {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return Challenge{SentAt: f.SentAt, IsVerified: f.IsVerified, TTL: ttl}
}

// Active reports whether the challenge has a running countdown:
// a code was sent and has not been verified.
func (c Challenge) Active() bool {
	return c.SentAt != nil && !c.IsVerified
}

// Remaining returns max(0, ttl - (now - sentAt)). ok is false when no
// countdown applies (not sent or already verified).
func (c Challenge) Remaining(now time.Time) (remaining time.Duration, ok bool) {
	if !c.Active() {
		return 0, false
	}
	expires, _ := c.ExpiresAt()
	remaining = expires.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// ExpiresAt returns the instant the code stops being accepted.
func (c Challenge) ExpiresAt() (time.Time, bool) {
	if c.SentAt == nil {
		return time.Time{}, false
	}
	return c.SentAt.Add(c.TTL), true
}

// State returns the lifecycle state at now.
func (c Challenge) State(now time.Time) State {
	switch {
	case c.IsVerified:
		return StateVerified
	case c.SentAt == nil:
		return StateNotSent
	}
	if remaining, _ := c.Remaining(now); remaining <= 0 {
		return StateExpired
	}
	return StatePending
}

// FormatRemaining renders d as MM:SS with seconds rounded up.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
