package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/example/dayof/internal/clock"
	"github.com/example/dayof/internal/core/effects"
	apperrors "github.com/example/dayof/internal/core/errors"
	"github.com/example/dayof/internal/core/event"
	"github.com/example/dayof/internal/ports/primary"
	"github.com/example/dayof/internal/ports/secondary"
)

// EventServiceImpl implements the EventService interface.
type EventServiceImpl struct {
	events    secondary.EventGateway
	snapshots secondary.EventSnapshotRepository
	executor  EffectExecutor
	validate  *validator.Validate
	clock     clock.Clock
	logger    *slog.Logger
}

// NewEventService creates a new EventService with injected dependencies.
// snapshots may be nil to disable the offline cache.
func NewEventService(
	events secondary.EventGateway,
	snapshots secondary.EventSnapshotRepository,
	executor EffectExecutor,
	clk clock.Clock,
	logger *slog.Logger,
) *EventServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventServiceImpl{
		events:    events,
		snapshots: snapshots,
		executor:  executor,
		validate:  newValidator(),
		clock:     clk,
		logger:    logger,
	}
}

// ListEvents lists events, serving the cache when the service is unreachable.
func (s *EventServiceImpl) ListEvents(ctx context.Context) (*primary.ListEventsResponse, error) {
	patches, err := s.events.ListEvents(ctx)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindTransport && s.snapshots != nil {
			if resp, cacheErr := s.listCached(ctx); cacheErr == nil {
				s.logger.WarnContext(ctx, "event service unreachable, serving cached events", "error", err)
				return resp, nil
			}
		}
		return nil, err
	}

	now := s.clock.Now()
	resp := &primary.ListEventsResponse{FetchedAt: now}
	snaps := make([]*secondary.EventSnapshotRecord, 0, len(patches))
	for _, p := range patches {
		e := event.FromPatch(p)
		resp.Events = append(resp.Events, summaryOf(e))
		if snap, err := snapshotOf(e, now); err == nil {
			snaps = append(snaps, snap)
		}
	}

	if s.snapshots != nil {
		if err := s.snapshots.ReplaceAll(ctx, snaps); err != nil {
			s.logger.WarnContext(ctx, "failed to refresh event cache", "error", err)
		}
	}
	return resp, nil
}

func (s *EventServiceImpl) listCached(ctx context.Context) (*primary.ListEventsResponse, error) {
	snaps, err := s.snapshots.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := &primary.ListEventsResponse{Stale: true}
	for _, snap := range snaps {
		e, err := eventOf(snap)
		if err != nil {
			return nil, err
		}
		if resp.FetchedAt.IsZero() || snap.FetchedAt.Before(resp.FetchedAt) {
			resp.FetchedAt = snap.FetchedAt
		}
		resp.Events = append(resp.Events, summaryOf(e))
	}
	return resp, nil
}

// GetEvent retrieves one event, serving the cache when the service is unreachable.
func (s *EventServiceImpl) GetEvent(ctx context.Context, eventID string) (*primary.EventSummary, error) {
	patch, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindTransport && s.snapshots != nil {
			if snap, cacheErr := s.snapshots.GetByID(ctx, eventID); cacheErr == nil {
				if e, decodeErr := eventOf(snap); decodeErr == nil {
					s.logger.WarnContext(ctx, "event service unreachable, serving cached event", "error", err)
					return summaryOf(e), nil
				}
			}
		}
		return nil, err
	}
	e := event.FromPatch(patch)
	s.cache(ctx, e)
	return summaryOf(e), nil
}

// CreateEvent validates the request locally before creating the event.
func (s *EventServiceImpl) CreateEvent(ctx context.Context, req primary.CreateEventRequest) (*event.Event, error) {
	req = primary.CreateEventRequest{
		EventName:     strings.TrimSpace(req.EventName),
		EventDate:     strings.TrimSpace(req.EventDate),
		Location:      strings.TrimSpace(req.Location),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
	}
	if err := validateRequest(s.validate, req); err != nil {
		return nil, s.reject(ctx, err, "Failed to create event")
	}
	date, err := ParseEventDate(req.EventDate)
	if err != nil {
		return nil, s.reject(ctx, err, "Failed to create event")
	}

	patch, err := s.events.CreateEvent(ctx, secondary.NewEventRecord{
		EventName:     req.EventName,
		EventDate:     date,
		Location:      req.Location,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		return nil, s.reject(ctx, err, "Failed to create event")
	}

	e := event.FromPatch(patch)
	s.cache(ctx, e)
	s.notify(ctx, effects.LevelSuccess, "Event created successfully!")
	return &e, nil
}

// ParseEventDate accepts a calendar date (YYYY-MM-DD) or an RFC 3339 timestamp.
func ParseEventDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, apperrors.Validation("Please select event date")
}

// DeleteEvent deletes an event and its cached copy.
func (s *EventServiceImpl) DeleteEvent(ctx context.Context, eventID string) error {
	if err := s.events.DeleteEvent(ctx, eventID); err != nil {
		return s.reject(ctx, err, msgDeleteFailed)
	}
	if s.snapshots != nil {
		if err := s.snapshots.Delete(ctx, eventID); err != nil {
			s.logger.WarnContext(ctx, "failed to drop cached event", "error", err)
		}
	}
	s.notify(ctx, effects.LevelSuccess, msgDeletedOK)
	return nil
}

// GetAnalytics retrieves aggregate statistics.
func (s *EventServiceImpl) GetAnalytics(ctx context.Context) (*primary.Analytics, error) {
	rec, err := s.events.Analytics(ctx)
	if err != nil {
		return nil, s.reject(ctx, err, "Failed to load analytics")
	}
	if rec == nil {
		return nil, nil
	}

	out := &primary.Analytics{
		Total:              rec.Totals.All,
		Active:             rec.Totals.Active,
		Deleted:            rec.Totals.Deleted,
		CheckInToStarted:   millis(rec.AvgDurationsMs.CheckInToStarted),
		StartedToCompleted: millis(rec.AvgDurationsMs.StartedToCompleted),
		CheckInToCompleted: millis(rec.AvgDurationsMs.CheckInToCompleted),
	}
	for _, status := range event.Statuses {
		if n, ok := rec.StatusCounts[string(status)]; ok {
			out.StatusCounts = append(out.StatusCounts, primary.StatusCount{Status: status, Count: n})
		}
	}
	return out, nil
}

func millis(ms *float64) *time.Duration {
	if ms == nil {
		return nil
	}
	d := time.Duration(*ms * float64(time.Millisecond))
	return &d
}

func (s *EventServiceImpl) reject(ctx context.Context, err error, fallback string) error {
	s.notify(ctx, effects.LevelError, apperrors.UserMessage(err, fallback))
	return err
}

func (s *EventServiceImpl) notify(ctx context.Context, level, msg string) {
	if s.executor == nil {
		return
	}
	if err := s.executor.Execute(ctx, []effects.Effect{effects.NotifyEffect{Level: level, Message: msg}}); err != nil {
		s.logger.WarnContext(ctx, "notify failed", "error", err)
	}
}

func (s *EventServiceImpl) cache(ctx context.Context, e event.Event) {
	if s.snapshots == nil {
		return
	}
	snap, err := snapshotOf(e, s.clock.Now())
	if err == nil {
		err = s.snapshots.Save(ctx, snap)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to cache event", "error", err)
	}
}

// ProgressOf derives the progress marks of an event.
func ProgressOf(e event.Event) primary.Progress {
	return primary.Progress{
		CheckedIn:     e.CheckedIn(),
		StartVerified: e.StartOTP.IsVerified,
		PrePhotos:     len(e.EventSetup.PreSetupPhotos),
		PostPhotos:    len(e.EventSetup.PostSetupPhotos),
		Closed:        e.ClosingOTP.IsVerified,
	}
}

func summaryOf(e event.Event) *primary.EventSummary {
	return &primary.EventSummary{Event: e, Progress: ProgressOf(e)}
}

func snapshotOf(e event.Event, now time.Time) (*secondary.EventSnapshotRecord, error) {
	if e.ID == "" {
		return nil, errors.New("event has no id")
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	snap := &secondary.EventSnapshotRecord{
		ID:        e.ID,
		EventName: e.EventName,
		Status:    string(e.Status),
		Payload:   payload,
		FetchedAt: now,
	}
	if e.EventDate != nil {
		snap.EventDate = e.EventDate.UTC().Format(time.RFC3339)
	}
	return snap, nil
}

func eventOf(snap *secondary.EventSnapshotRecord) (event.Event, error) {
	var e event.Event
	if err := json.Unmarshal(snap.Payload, &e); err != nil {
		return event.Event{}, fmt.Errorf("failed to decode cached event %s: %w", snap.ID, err)
	}
	return e, nil
}
