// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

import "time"

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// Notification levels understood by the notify sink.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelError   = "error"
)

// NotifyEffect represents a user-visible message.
type NotifyEffect struct {
	Level   string // info, success, error
	Message string
}

func (e NotifyEffect) EffectType() string { return "notify" }

// LogEffect represents a logging operation.
type LogEffect struct {
	Level   string
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }

// Countdown operations.
const (
	CountdownStart = "start"
	CountdownStop  = "stop"
)

// CountdownEffect starts or stops the expiry countdown of one OTP challenge.
type CountdownEffect struct {
	Operation string    // start, stop
	Kind      string    // start, closing
	SentAt    time.Time // server-reported issuance time; zero for stop
}

func (e CountdownEffect) EffectType() string { return "countdown" }
