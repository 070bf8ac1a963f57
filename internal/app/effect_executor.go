// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/dayof/internal/core/effects"
	"github.com/example/dayof/internal/core/otp"
	"github.com/example/dayof/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// CountdownController is the part of CountdownManager the executor drives.
type CountdownController interface {
	Start(kind otp.Kind, sentAt time.Time)
	Stop(kind otp.Kind)
}

// DefaultEffectExecutor implements EffectExecutor with real I/O.
type DefaultEffectExecutor struct {
	notifier   secondary.Notifier
	countdowns CountdownController
	logger     *slog.Logger
}

// NewEffectExecutor creates a new DefaultEffectExecutor. countdowns may be
// nil for services that never plan countdown effects.
func NewEffectExecutor(notifier secondary.Notifier, countdowns CountdownController, logger *slog.Logger) *DefaultEffectExecutor {
	return &DefaultEffectExecutor{
		notifier:   notifier,
		countdowns: countdowns,
		logger:     logger,
	}
}

// Execute processes a slice of effects, executing each in sequence.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.NotifyEffect:
		if e.notifier != nil {
			e.notifier.Notify(typed.Level, typed.Message)
		}
		return nil
	case effects.CountdownEffect:
		return e.executeCountdown(typed)
	case effects.LogEffect:
		e.executeLog(ctx, typed)
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeCountdown(eff effects.CountdownEffect) error {
	if e.countdowns == nil {
		return fmt.Errorf("no countdown controller for %s countdown", eff.Kind)
	}
	kind, err := otp.ParseKind(eff.Kind)
	if err != nil {
		return err
	}
	switch eff.Operation {
	case effects.CountdownStart:
		e.countdowns.Start(kind, eff.SentAt)
	case effects.CountdownStop:
		e.countdowns.Stop(kind)
	default:
		return fmt.Errorf("unknown countdown operation: %s", eff.Operation)
	}
	return nil
}

func (e *DefaultEffectExecutor) executeLog(ctx context.Context, eff effects.LogEffect) {
	if e.logger == nil {
		return
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(eff.Level)); err != nil {
		level = slog.LevelInfo
	}
	args := make([]any, 0, len(eff.Fields)*2)
	for k, v := range eff.Fields {
		args = append(args, k, v)
	}
	e.logger.Log(ctx, level, eff.Message, args...)
}
