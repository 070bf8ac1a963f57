package otp

import (
	"time"

	"github.com/example/dayof/internal/core/effects"
	"github.com/example/dayof/internal/core/event"
)

// PlanCountdowns compares the challenges of two successive event views and
// returns the countdown effects needed to keep timers in step:
//   - start when a pending challenge becomes observable or its sentAt changes (resend)
//   - stop when a previously active challenge is verified, expired or gone
//
// This is a pure function - the caller passes now.
func PlanCountdowns(prev, next event.Event, ttl time.Duration, now time.Time) []effects.Effect {
	var plan []effects.Effect
	for _, kind := range Kinds {
		before := ChallengeOf(FieldOf(prev, kind), ttl)
		after := ChallengeOf(FieldOf(next, kind), ttl)

		if after.State(now) == StatePending {
			if !before.Active() || !before.SentAt.Equal(*after.SentAt) {
				plan = append(plan, effects.CountdownEffect{
					Operation: effects.CountdownStart,
					Kind:      string(kind),
					SentAt:    *after.SentAt,
				})
			}
			continue
		}

		if before.Active() {
			plan = append(plan, effects.CountdownEffect{
				Operation: effects.CountdownStop,
				Kind:      string(kind),
			})
		}
	}
	return plan
}
