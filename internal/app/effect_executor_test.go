package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/dayof/internal/core/effects"
	"github.com/example/dayof/internal/core/otp"
	"github.com/example/dayof/internal/logging"
)

type recordingCountdowns struct {
	started map[otp.Kind]time.Time
	stopped []otp.Kind
}

func (r *recordingCountdowns) Start(kind otp.Kind, sentAt time.Time) {
	if r.started == nil {
		r.started = make(map[otp.Kind]time.Time)
	}
	r.started[kind] = sentAt
}

func (r *recordingCountdowns) Stop(kind otp.Kind) {
	r.stopped = append(r.stopped, kind)
}

func TestEffectExecutor_Execute(t *testing.T) {
	notifier := &recordingNotifier{}
	countdowns := &recordingCountdowns{}
	exec := NewEffectExecutor(notifier, countdowns, logging.Discard())

	err := exec.Execute(context.Background(), []effects.Effect{
		effects.CountdownEffect{Operation: effects.CountdownStart, Kind: "start", SentAt: t0},
		effects.CountdownEffect{Operation: effects.CountdownStop, Kind: "closing"},
		effects.LogEffect{Level: "WARN", Message: "noted", Fields: map[string]any{"k": 1}},
		effects.NotifyEffect{Level: effects.LevelSuccess, Message: "done"},
	})

	require.NoError(t, err)
	assert.Equal(t, t0, countdowns.started[otp.KindStart])
	assert.Equal(t, []otp.Kind{otp.KindClosing}, countdowns.stopped)
	assert.Equal(t, effects.NotifyEffect{Level: effects.LevelSuccess, Message: "done"}, notifier.last())
}

func TestEffectExecutor_Errors(t *testing.T) {
	exec := NewEffectExecutor(&recordingNotifier{}, nil, logging.Discard())

	err := exec.Execute(context.Background(), []effects.Effect{
		effects.CountdownEffect{Operation: effects.CountdownStart, Kind: "start"},
	})
	assert.ErrorContains(t, err, "no countdown controller")

	exec = NewEffectExecutor(&recordingNotifier{}, &recordingCountdowns{}, logging.Discard())
	err = exec.Execute(context.Background(), []effects.Effect{
		effects.CountdownEffect{Operation: "pause", Kind: "start"},
	})
	assert.ErrorContains(t, err, "unknown countdown operation")

	err = exec.Execute(context.Background(), []effects.Effect{
		effects.CountdownEffect{Operation: effects.CountdownStop, Kind: "teardown"},
	})
	assert.ErrorContains(t, err, "unknown OTP kind")
}
