package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/example/dayof/internal/core/effects"
	"github.com/example/dayof/internal/core/event"
	"github.com/example/dayof/internal/core/otp"
	"github.com/example/dayof/internal/ports/secondary"
)

var t0 = time.Date(2026, 6, 14, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string               { return &s }
func timePtr(t time.Time) *time.Time        { return &t }
func statusPtr(s event.Status) *event.Status { return &s }

// Ensure mocks implement the interfaces
var (
	_ secondary.EventGateway            = (*mockEventGateway)(nil)
	_ secondary.AuthGateway             = (*mockAuthGateway)(nil)
	_ secondary.CredentialRepository    = (*mockCredentialRepository)(nil)
	_ secondary.EventSnapshotRepository = (*mockSnapshotRepository)(nil)
	_ secondary.PhotoSelector           = (*mockPhotoSelector)(nil)
	_ secondary.Geolocator              = (*mockGeolocator)(nil)
	_ secondary.Notifier                = (*recordingNotifier)(nil)
)

// mockEventGateway implements secondary.EventGateway for testing.
// When block is set, mutations wait on it after signalling entered.
type mockEventGateway struct {
	mu    sync.Mutex
	calls []string

	getPatch event.Patch
	getErr   error

	listPatches []event.Patch
	listErr     error

	createPatch event.Patch
	createErr   error
	created     []secondary.NewEventRecord

	deleteErr error
	deleted   []string

	checkInPatch event.Patch
	checkInErr   error
	checkIns     []secondary.CheckInUpload

	triggerPatch map[otp.Kind]event.Patch
	triggerErr   error

	verifyPatch map[otp.Kind]event.Patch
	verifyErr   error
	codes       []string

	uploadPatch event.Patch
	uploadErr   error
	uploads     []secondary.SetupUpload

	analytics    *secondary.AnalyticsRecord
	analyticsErr error

	block   chan struct{}
	entered chan struct{}
}

func newMockEventGateway(e event.Event) *mockEventGateway {
	return &mockEventGateway{
		getPatch:     event.ToPatch(e),
		triggerPatch: make(map[otp.Kind]event.Patch),
		verifyPatch:  make(map[otp.Kind]event.Patch),
	}
}

func (m *mockEventGateway) record(ctx context.Context, call string) error {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	block, entered := m.block, m.entered
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *mockEventGateway) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockEventGateway) ListEvents(ctx context.Context) ([]event.Patch, error) {
	_ = m.record(ctx, "list")
	return m.listPatches, m.listErr
}

func (m *mockEventGateway) GetEvent(ctx context.Context, id string) (event.Patch, error) {
	_ = m.record(ctx, "get "+id)
	return m.getPatch, m.getErr
}

func (m *mockEventGateway) CreateEvent(ctx context.Context, req secondary.NewEventRecord) (event.Patch, error) {
	_ = m.record(ctx, "create")
	m.mu.Lock()
	m.created = append(m.created, req)
	m.mu.Unlock()
	return m.createPatch, m.createErr
}

func (m *mockEventGateway) DeleteEvent(ctx context.Context, id string) error {
	if err := m.record(ctx, "delete "+id); err != nil {
		return err
	}
	m.mu.Lock()
	m.deleted = append(m.deleted, id)
	m.mu.Unlock()
	return m.deleteErr
}

func (m *mockEventGateway) CheckIn(ctx context.Context, id string, upload secondary.CheckInUpload) (event.Patch, error) {
	if err := m.record(ctx, "checkin "+id); err != nil {
		return event.Patch{}, err
	}
	m.mu.Lock()
	m.checkIns = append(m.checkIns, upload)
	m.mu.Unlock()
	return m.checkInPatch, m.checkInErr
}

func (m *mockEventGateway) TriggerOTP(ctx context.Context, id string, kind otp.Kind) (event.Patch, error) {
	if err := m.record(ctx, "trigger "+string(kind)); err != nil {
		return event.Patch{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.triggerPatch[kind], m.triggerErr
}

func (m *mockEventGateway) VerifyOTP(ctx context.Context, id string, kind otp.Kind, code string) (event.Patch, error) {
	if err := m.record(ctx, "verify "+string(kind)); err != nil {
		return event.Patch{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = append(m.codes, code)
	return m.verifyPatch[kind], m.verifyErr
}

func (m *mockEventGateway) UploadSetupPhotos(ctx context.Context, id string, upload secondary.SetupUpload) (event.Patch, error) {
	if err := m.record(ctx, "upload "+upload.Phase); err != nil {
		return event.Patch{}, err
	}
	m.mu.Lock()
	m.uploads = append(m.uploads, upload)
	m.mu.Unlock()
	return m.uploadPatch, m.uploadErr
}

func (m *mockEventGateway) Analytics(ctx context.Context) (*secondary.AnalyticsRecord, error) {
	_ = m.record(ctx, "analytics")
	return m.analytics, m.analyticsErr
}

// mockAuthGateway implements secondary.AuthGateway for testing.
type mockAuthGateway struct {
	authRecord *secondary.AuthRecord
	authErr    error
	vendor     *secondary.VendorRecord
	meErr      error
	registered []secondary.RegisterRecord
	logins     int
}

func (m *mockAuthGateway) Login(ctx context.Context, email, password string) (*secondary.AuthRecord, error) {
	m.logins++
	return m.authRecord, m.authErr
}

func (m *mockAuthGateway) Register(ctx context.Context, req secondary.RegisterRecord) (*secondary.AuthRecord, error) {
	m.registered = append(m.registered, req)
	return m.authRecord, m.authErr
}

func (m *mockAuthGateway) Me(ctx context.Context) (*secondary.VendorRecord, error) {
	return m.vendor, m.meErr
}

// mockCredentialRepository implements secondary.CredentialRepository for testing.
type mockCredentialRepository struct {
	cred *secondary.CredentialRecord
}

func (m *mockCredentialRepository) Get(ctx context.Context) (*secondary.CredentialRecord, error) {
	if m.cred == nil {
		return nil, nil
	}
	c := *m.cred
	return &c, nil
}

func (m *mockCredentialRepository) Save(ctx context.Context, cred *secondary.CredentialRecord) error {
	c := *cred
	m.cred = &c
	return nil
}

func (m *mockCredentialRepository) Clear(ctx context.Context) error {
	m.cred = nil
	return nil
}

// mockSnapshotRepository implements secondary.EventSnapshotRepository for testing.
type mockSnapshotRepository struct {
	mu    sync.Mutex
	snaps map[string]*secondary.EventSnapshotRecord
}

func newMockSnapshotRepository() *mockSnapshotRepository {
	return &mockSnapshotRepository{snaps: make(map[string]*secondary.EventSnapshotRecord)}
}

func (m *mockSnapshotRepository) Save(ctx context.Context, snap *secondary.EventSnapshotRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.ID] = snap
	return nil
}

func (m *mockSnapshotRepository) GetByID(ctx context.Context, id string) (*secondary.EventSnapshotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[id]
	if !ok {
		return nil, errors.New("snapshot not found")
	}
	return snap, nil
}

func (m *mockSnapshotRepository) List(ctx context.Context) ([]*secondary.EventSnapshotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*secondary.EventSnapshotRecord, 0, len(m.snaps))
	for _, snap := range m.snaps {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockSnapshotRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, id)
	return nil
}

func (m *mockSnapshotRepository) ReplaceAll(ctx context.Context, snaps []*secondary.EventSnapshotRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = make(map[string]*secondary.EventSnapshotRecord)
	for _, snap := range snaps {
		m.snaps[snap.ID] = snap
	}
	return nil
}

// mockPhotoSelector implements secondary.PhotoSelector for testing.
type mockPhotoSelector struct {
	err      error
	selected [][]string
}

func (m *mockPhotoSelector) Select(paths []string) ([]secondary.Photo, error) {
	m.selected = append(m.selected, paths)
	if m.err != nil {
		return nil, m.err
	}
	photos := make([]secondary.Photo, len(paths))
	for i, p := range paths {
		photos[i] = secondary.Photo{Name: p, ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}
	}
	return photos, nil
}

// mockGeolocator implements secondary.Geolocator for testing.
type mockGeolocator struct {
	pos   secondary.Coordinates
	err   error
	calls int
}

func (m *mockGeolocator) CurrentPosition(ctx context.Context) (secondary.Coordinates, error) {
	m.calls++
	return m.pos, m.err
}

// recordingNotifier implements secondary.Notifier for testing.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []effects.NotifyEffect
}

func (n *recordingNotifier) Notify(level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, effects.NotifyEffect{Level: level, Message: message})
}

func (n *recordingNotifier) last() effects.NotifyEffect {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		return effects.NotifyEffect{}
	}
	return n.messages[len(n.messages)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

// mockEffectExecutor implements EffectExecutor for testing.
type mockEffectExecutor struct {
	executedEffects []effects.Effect
	executeErr      error
}

func newMockEffectExecutor() *mockEffectExecutor {
	return &mockEffectExecutor{
		executedEffects: []effects.Effect{},
	}
}

func (m *mockEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	if m.executeErr != nil {
		return m.executeErr
	}
	m.executedEffects = append(m.executedEffects, effs...)
	return nil
}

func (m *mockEffectExecutor) notices() []effects.NotifyEffect {
	var out []effects.NotifyEffect
	for _, eff := range m.executedEffects {
		if n, ok := eff.(effects.NotifyEffect); ok {
			out = append(out, n)
		}
	}
	return out
}

// Event fixtures

func pendingEvent() event.Event {
	return event.Event{
		ID:            "evt-1",
		EventName:     "Harbor Wedding",
		Location:      "Pier 17",
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "+1 555 0100",
		Status:        event.StatusPending,
	}
}

func checkedInEvent() event.Event {
	e := pendingEvent()
	e.Status = event.StatusCheckedIn
	e.CheckIn = event.CheckIn{
		Timestamp:    timePtr(t0),
		ArrivalPhoto: "https://cdn.example.com/arrival.jpg",
		Location:     &event.Location{Latitude: 40.7, Longitude: -74.0},
	}
	return e
}

func startedEvent() event.Event {
	e := checkedInEvent()
	e.Status = event.StatusStarted
	e.StartOTP = event.OTP{SentAt: timePtr(t0), IsVerified: true, VerifiedAt: timePtr(t0.Add(2 * time.Minute))}
	return e
}

func inProgressEvent() event.Event {
	e := startedEvent()
	e.Status = event.StatusInProgress
	e.EventSetup.PreSetupPhotos = []event.PhotoRef{{URL: "https://cdn.example.com/pre-1.jpg"}}
	return e
}
