package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/dayof/internal/clock"
	"github.com/example/dayof/internal/core/effects"
	apperrors "github.com/example/dayof/internal/core/errors"
	"github.com/example/dayof/internal/core/event"
	"github.com/example/dayof/internal/core/otp"
	"github.com/example/dayof/internal/core/workflow"
	"github.com/example/dayof/internal/ctxutil"
	"github.com/example/dayof/internal/ports/primary"
	"github.com/example/dayof/internal/ports/secondary"
)

// Fallback messages shown when the service gives no reason.
const (
	msgLoadFailed      = "Failed to load event details"
	msgCheckInFailed   = "Check-in failed"
	msgStartOTPFailed  = "Failed to trigger OTP"
	msgCloseOTPFailed  = "Failed to trigger closing OTP"
	msgInvalidOTP      = "Invalid OTP"
	msgUploadFailed    = "Upload failed"
	msgDeleteFailed    = "Failed to delete event"
	msgNoGeolocation   = "Geolocation is not supported"
	msgNoPosition      = "Unable to get your location"
	msgCheckInOK       = "Check-in successful!"
	msgStartVerifiedOK = "Start OTP verified! Event started."
	msgCompletedOK     = "Event completed successfully!"
	msgDeletedOK       = "Event deleted"
)

// WorkflowDeps are the collaborators of the workflow service.
type WorkflowDeps struct {
	Events    secondary.EventGateway
	Photos    secondary.PhotoSelector
	Geo       secondary.Geolocator
	Notifier  secondary.Notifier
	Snapshots secondary.EventSnapshotRepository // optional
	Clock     clock.Clock
	TTL       time.Duration
	Logger    *slog.Logger
	// OnSessionInvalid runs when the service rejects the credentials.
	OnSessionInvalid func(ctx context.Context)
}

// WorkflowServiceImpl implements the WorkflowService interface.
type WorkflowServiceImpl struct {
	deps WorkflowDeps
}

// NewWorkflowService creates a new WorkflowService with injected dependencies.
func NewWorkflowService(deps WorkflowDeps) *WorkflowServiceImpl {
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}
	if deps.TTL <= 0 {
		deps.TTL = otp.DefaultTTL
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &WorkflowServiceImpl{deps: deps}
}

// Open fetches an event and starts a workflow session on it. Challenges
// already pending on the fetched event get their countdowns started.
func (s *WorkflowServiceImpl) Open(ctx context.Context, eventID string) (primary.WorkflowSession, error) {
	eventID = strings.TrimSpace(eventID)
	if !event.ValidID(eventID) {
		err := apperrors.Validation("Invalid event link")
		s.deps.Notifier.Notify(effects.LevelError, err.Error())
		return nil, err
	}
	ctx = ctxutil.WithEventID(ctx, eventID)

	patch, err := s.deps.Events.GetEvent(ctx, eventID)
	if err != nil {
		s.deps.Notifier.Notify(effects.LevelError, apperrors.UserMessage(err, msgLoadFailed))
		if errors.Is(err, apperrors.ErrSessionInvalid) && s.deps.OnSessionInvalid != nil {
			s.deps.OnSessionInvalid(ctx)
		}
		return nil, err
	}

	countdowns := NewCountdownManager(s.deps.Clock, s.deps.TTL)
	sess := &workflowSession{
		deps:       s.deps,
		countdowns: countdowns,
		executor:   NewEffectExecutor(s.deps.Notifier, countdowns, s.deps.Logger),
	}
	if err := sess.apply(ctx, patch, nil); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

// workflowSession is one vendor's view of one event.
type workflowSession struct {
	deps       WorkflowDeps
	countdowns *CountdownManager
	executor   EffectExecutor

	busy   atomic.Bool
	closed atomic.Bool

	mu       sync.Mutex
	event    event.Event
	selected workflow.Step
}

// Event returns a copy of the current local event view.
func (s *workflowSession) Event() event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.event.Clone()
}

// Board evaluates the steps and countdowns of the current event view.
func (s *workflowSession) Board() primary.Board {
	s.mu.Lock()
	e := s.event.Clone()
	selected := s.selected
	s.mu.Unlock()

	now := s.deps.Clock.Now()
	cursor := workflow.ResolveStep(e, selected)

	board := primary.Board{
		Event:    e,
		Selected: cursor,
		Setup:    workflow.SetupProgressOf(e),
	}
	for _, st := range workflow.Evaluate(e) {
		board.Steps = append(board.Steps, primary.StepView{
			Step:     st.Step,
			Title:    st.Step.Title(),
			Number:   st.Step.Number(),
			Unlocked: st.Unlocked,
			Complete: st.Complete,
			Selected: st.Step == cursor,
		})
	}
	for _, kind := range otp.Kinds {
		field := otp.FieldOf(e, kind)
		ch := otp.ChallengeOf(field, s.deps.TTL)
		remaining, _ := ch.Remaining(now)
		board.OTPs = append(board.OTPs, primary.OTPView{
			Kind:      kind,
			State:     ch.State(now),
			SentAt:    field.SentAt,
			Remaining: remaining,
		})
	}
	return board
}

// Select moves the view cursor to step.
func (s *workflowSession) Select(step workflow.Step) error {
	if s.closed.Load() {
		return apperrors.ErrSessionClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if result := workflow.CanSelect(s.event, step); !result.Allowed {
		return result.Error()
	}
	s.selected = step
	return nil
}

// CheckIn validates the photo and position locally, then uploads them.
func (s *workflowSession) CheckIn(ctx context.Context, photoPath string) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()
	ctx = s.scope(ctx)

	e := s.Event()
	photoPath = strings.TrimSpace(photoPath)
	guard := workflow.CanCheckIn(workflow.CheckInContext{Event: e, PhotoSelected: photoPath != ""})
	if !guard.Allowed {
		return s.fail(ctx, guard.Error(), msgCheckInFailed)
	}

	photos, err := s.deps.Photos.Select([]string{photoPath})
	if err != nil {
		return s.fail(ctx, err, msgCheckInFailed)
	}

	pos, err := s.position(ctx)
	if err != nil {
		return s.fail(ctx, err, msgCheckInFailed)
	}

	s.deps.Logger.InfoContext(ctx, "checking in", "latitude", pos.Latitude, "longitude", pos.Longitude)
	patch, err := s.deps.Events.CheckIn(ctx, e.ID, secondary.CheckInUpload{Photo: photos[0], Position: pos})
	if err != nil {
		return s.fail(ctx, err, msgCheckInFailed)
	}
	return s.apply(ctx, patch, success(msgCheckInOK))
}

// position acquires a fix, mapping capability failures to validation errors.
func (s *workflowSession) position(ctx context.Context) (secondary.Coordinates, error) {
	if s.deps.Geo == nil {
		return secondary.Coordinates{}, apperrors.Validation(msgNoGeolocation)
	}
	pos, err := s.deps.Geo.CurrentPosition(ctx)
	switch {
	case err == nil:
		return pos, nil
	case errors.Is(err, secondary.ErrGeolocationUnsupported):
		return pos, apperrors.Validation(msgNoGeolocation)
	default:
		s.deps.Logger.WarnContext(ctx, "position unavailable", "error", err)
		return pos, apperrors.Validation(msgNoPosition)
	}
}

// SendOTP issues the passcode of kind; a second call re-issues it.
func (s *workflowSession) SendOTP(ctx context.Context, kind otp.Kind) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()
	ctx = s.scope(ctx)

	fallback := msgStartOTPFailed
	if kind == otp.KindClosing {
		fallback = msgCloseOTPFailed
	}

	e := s.Event()
	if guard := workflow.CanSendOTP(e, kind, s.deps.TTL); !guard.Allowed {
		return s.fail(ctx, guard.Error(), fallback)
	}
	resend := otp.FieldOf(e, kind).SentAt != nil

	patch, err := s.deps.Events.TriggerOTP(ctx, e.ID, kind)
	if err != nil {
		return s.fail(ctx, err, fallback)
	}
	return s.apply(ctx, patch, &effects.NotifyEffect{Level: effects.LevelInfo, Message: sentMessage(kind, resend)})
}

func sentMessage(kind otp.Kind, resend bool) string {
	switch {
	case kind == otp.KindClosing && resend:
		return "Closing OTP resent to customer email"
	case kind == otp.KindClosing:
		return "Closing OTP sent to customer email"
	case resend:
		return "Start OTP resent to customer email"
	}
	return "OTP sent to customer email"
}

// VerifyOTP checks expiry and format locally, then submits the code.
func (s *workflowSession) VerifyOTP(ctx context.Context, kind otp.Kind, code string) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()
	ctx = s.scope(ctx)

	e := s.Event()
	guard := workflow.CanVerifyOTP(workflow.VerifyContext{
		Event: e,
		Kind:  kind,
		Code:  code,
		TTL:   s.deps.TTL,
		Now:   s.deps.Clock.Now(),
	})
	if !guard.Allowed {
		return s.fail(ctx, guard.Error(), msgInvalidOTP)
	}

	patch, err := s.deps.Events.VerifyOTP(ctx, e.ID, kind, code)
	if err != nil {
		return s.fail(ctx, err, msgInvalidOTP)
	}
	msg := msgStartVerifiedOK
	if kind == otp.KindClosing {
		msg = msgCompletedOK
	}
	return s.apply(ctx, patch, success(msg))
}

// UploadSetupPhotos uploads one pre or post batch with optional notes.
func (s *workflowSession) UploadSetupPhotos(ctx context.Context, req primary.SetupPhotosRequest) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()
	ctx = s.scope(ctx)

	e := s.Event()
	guard := workflow.CanUploadSetupPhotos(workflow.UploadContext{
		Event:      e,
		Phase:      req.Phase,
		PhotoCount: len(req.Paths),
	})
	if !guard.Allowed {
		return s.fail(ctx, guard.Error(), msgUploadFailed)
	}

	photos, err := s.deps.Photos.Select(req.Paths)
	if err != nil {
		return s.fail(ctx, err, msgUploadFailed)
	}

	patch, err := s.deps.Events.UploadSetupPhotos(ctx, e.ID, secondary.SetupUpload{
		Phase:  string(req.Phase),
		Photos: photos,
		Notes:  strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return s.fail(ctx, err, msgUploadFailed)
	}
	return s.apply(ctx, patch, success(fmt.Sprintf("%s-event photos uploaded successfully!", req.Phase.Label())))
}

// Refresh re-fetches the event.
func (s *workflowSession) Refresh(ctx context.Context) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()
	ctx = s.scope(ctx)

	patch, err := s.deps.Events.GetEvent(ctx, s.Event().ID)
	if err != nil {
		return s.fail(ctx, err, msgLoadFailed)
	}
	return s.apply(ctx, patch, nil)
}

// Delete deletes the event, drops its cached copy and closes the session.
func (s *workflowSession) Delete(ctx context.Context) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()
	ctx = s.scope(ctx)

	id := s.Event().ID
	if err := s.deps.Events.DeleteEvent(ctx, id); err != nil {
		return s.fail(ctx, err, msgDeleteFailed)
	}
	if s.closed.Load() {
		return apperrors.ErrSessionClosed
	}
	if s.deps.Snapshots != nil {
		if err := s.deps.Snapshots.Delete(ctx, id); err != nil {
			s.deps.Logger.WarnContext(ctx, "failed to drop cached event", "error", err)
		}
	}
	s.deps.Notifier.Notify(effects.LevelSuccess, msgDeletedOK)
	s.Close()
	return nil
}

// Ticks delivers countdown ticks until the session closes.
func (s *workflowSession) Ticks() <-chan primary.Tick {
	return s.countdowns.Ticks()
}

// Close stops all countdowns. Responses still in flight are discarded.
func (s *workflowSession) Close() {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return
	}
	s.closed.Store(true)
	s.mu.Unlock()
	s.countdowns.StopAll()
}

// Closed reports whether Close has run.
func (s *workflowSession) Closed() bool {
	return s.closed.Load()
}

// begin claims the single in-flight action slot.
func (s *workflowSession) begin() (func(), error) {
	if s.closed.Load() {
		return nil, apperrors.ErrSessionClosed
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, apperrors.ErrActionInProgress
	}
	return func() { s.busy.Store(false) }, nil
}

func (s *workflowSession) scope(ctx context.Context) context.Context {
	return ctxutil.WithEventID(ctx, s.Event().ID)
}

// apply merges a successful response into the local view and plans the
// countdowns for the transition. Responses arriving after Close are dropped.
func (s *workflowSession) apply(ctx context.Context, patch event.Patch, notice *effects.NotifyEffect) error {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		s.deps.Logger.DebugContext(ctx, "discarding response for closed session")
		return apperrors.ErrSessionClosed
	}
	prev := s.event
	next := event.Merge(prev, patch)
	s.event = next
	s.mu.Unlock()

	plan := otp.PlanCountdowns(prev, next, s.deps.TTL, s.deps.Clock.Now())
	if prev.Status != next.Status {
		plan = append(plan, effects.LogEffect{
			Level:   "INFO",
			Message: "event status changed",
			Fields:  map[string]any{"from": string(prev.Status), "to": string(next.Status)},
		})
	}
	if notice != nil {
		plan = append(plan, *notice)
	}

	s.saveSnapshot(ctx, next)
	return s.executor.Execute(ctx, plan)
}

// fail reports err to the vendor and leaves the local view untouched.
// A rejected credential also tears the session down.
func (s *workflowSession) fail(ctx context.Context, err error, fallback string) error {
	if s.closed.Load() {
		return apperrors.ErrSessionClosed
	}

	level := "WARN"
	if apperrors.IsLocal(err) {
		level = "DEBUG"
	}
	_ = s.executor.Execute(ctx, []effects.Effect{
		effects.LogEffect{
			Level:   level,
			Message: "action rejected",
			Fields:  map[string]any{"kind": string(apperrors.KindOf(err)), "error": err.Error()},
		},
		effects.NotifyEffect{Level: effects.LevelError, Message: apperrors.UserMessage(err, fallback)},
	})

	if errors.Is(err, apperrors.ErrSessionInvalid) {
		if s.deps.OnSessionInvalid != nil {
			s.deps.OnSessionInvalid(ctx)
		}
		s.Close()
	}
	return err
}

func (s *workflowSession) saveSnapshot(ctx context.Context, e event.Event) {
	if s.deps.Snapshots == nil {
		return
	}
	snap, err := snapshotOf(e, s.deps.Clock.Now())
	if err == nil {
		err = s.deps.Snapshots.Save(ctx, snap)
	}
	if err != nil {
		s.deps.Logger.WarnContext(ctx, "failed to cache event", "error", err)
	}
}

func success(msg string) *effects.NotifyEffect {
	return &effects.NotifyEffect{Level: effects.LevelSuccess, Message: msg}
}
