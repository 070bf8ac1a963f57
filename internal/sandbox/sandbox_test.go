package sandbox_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/dayof/internal/adapters/cli"
	"github.com/example/dayof/internal/adapters/eventapi"
	"github.com/example/dayof/internal/adapters/filesystem"
	"github.com/example/dayof/internal/adapters/geo"
	"github.com/example/dayof/internal/adapters/sqlite"
	"github.com/example/dayof/internal/app"
	"github.com/example/dayof/internal/clock"
	apperrors "github.com/example/dayof/internal/core/errors"
	"github.com/example/dayof/internal/core/event"
	"github.com/example/dayof/internal/core/otp"
	"github.com/example/dayof/internal/core/workflow"
	"github.com/example/dayof/internal/db"
	"github.com/example/dayof/internal/logging"
	"github.com/example/dayof/internal/ports/primary"
	"github.com/example/dayof/internal/sandbox"
)

// codeBook records the codes the sandbox issues.
type codeBook struct {
	mu    sync.Mutex
	codes map[otp.Kind]string
}

func (b *codeBook) record(_ string, kind otp.Kind, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.codes[kind] = code
}

func (b *codeBook) get(kind otp.Kind) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.codes[kind]
}

type harness struct {
	server    *httptest.Server
	codes     *codeBook
	creds     *app.Credentials
	auth      *app.AuthServiceImpl
	events    *app.EventServiceImpl
	workflows *app.WorkflowServiceImpl
	out       *bytes.Buffer
	photoDir  string
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logging.Discard()
	codes := &codeBook{codes: make(map[otp.Kind]string)}

	sb := sandbox.NewServer(sandbox.Options{Secret: "test-secret", Logger: logger, OnOTPIssued: codes.record})
	srv := httptest.NewServer(sb.Handler())
	t.Cleanup(srv.Close)

	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	creds := app.NewCredentials()
	client, err := eventapi.NewClient(eventapi.Options{BaseURL: srv.URL + "/api", Tokens: creds, Logger: logger})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	notifier := cli.NewNotifier(out, out)
	executor := app.NewEffectExecutor(notifier, nil, logger)
	snapshots := sqlite.NewEventSnapshotRepository(conn)
	clk := clock.NewSystem()
	lat, lng := 40.7128, -74.006

	h := &harness{
		server:   srv,
		codes:    codes,
		creds:    creds,
		out:      out,
		photoDir: t.TempDir(),
	}
	h.auth = app.NewAuthService(client, sqlite.NewCredentialRepository(conn), creds, executor, clk, logger)
	h.events = app.NewEventService(client, snapshots, executor, clk, logger)
	h.workflows = app.NewWorkflowService(app.WorkflowDeps{
		Events:           client,
		Photos:           filesystem.NewPhotoSelector(0),
		Geo:              geo.NewStaticLocator(&lat, &lng),
		Notifier:         notifier,
		Snapshots:        snapshots,
		Clock:            clk,
		Logger:           logger,
		OnSessionInvalid: h.auth.Invalidate,
	})
	return h
}

func (h *harness) photo(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(h.photoDir, name)
	require.NoError(t, os.WriteFile(p, pngHeader, 0o600))
	return p
}

func (h *harness) signUp(t *testing.T, email string) {
	t.Helper()
	_, err := h.auth.Register(context.Background(), primary.RegisterRequest{
		Name: "Grace Hopper", Email: email, Phone: "+1 555-0100", Password: "Str0ng!pass",
	})
	require.NoError(t, err)
}

func (h *harness) createEvent(t *testing.T) *event.Event {
	t.Helper()
	e, err := h.events.CreateEvent(context.Background(), primary.CreateEventRequest{
		EventName: "Harbor Wedding", EventDate: "2026-07-04", Location: "Pier 17",
		CustomerName: "Ada Lovelace", CustomerEmail: "ada@example.com", CustomerPhone: "+1 (555) 010-0100",
	})
	require.NoError(t, err)
	return e
}

func TestFullDayOfWorkflow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t, "grace@example.com")
	created := h.createEvent(t)

	session, err := h.workflows.Open(ctx, created.ID)
	require.NoError(t, err)
	defer session.Close()
	assert.Equal(t, workflow.StepCheckIn, session.Board().Selected)

	require.NoError(t, session.CheckIn(ctx, h.photo(t, "arrival.png")))
	assert.Equal(t, event.StatusCheckedIn, session.Event().Status)
	assert.Equal(t, "Harbor Wedding", session.Event().EventName, "narrow responses keep descriptive fields")

	require.NoError(t, session.SendOTP(ctx, otp.KindStart))
	require.NotEmpty(t, h.codes.get(otp.KindStart))
	require.NoError(t, session.VerifyOTP(ctx, otp.KindStart, h.codes.get(otp.KindStart)))
	assert.True(t, session.Event().StartOTP.IsVerified)
	assert.Equal(t, workflow.StepSetup, session.Board().Selected)

	require.NoError(t, session.UploadSetupPhotos(ctx, primary.SetupPhotosRequest{
		Phase: workflow.PhasePre,
		Paths: []string{h.photo(t, "pre-1.png"), h.photo(t, "pre-2.png")},
		Notes: "Arch is up",
	}))
	assert.Len(t, session.Event().EventSetup.PreSetupPhotos, 2)
	assert.Equal(t, event.StatusInProgress, session.Event().Status)

	require.NoError(t, session.SendOTP(ctx, otp.KindClosing))
	err = session.VerifyOTP(ctx, otp.KindClosing, "000000")
	if h.codes.get(otp.KindClosing) != "000000" {
		var remote *apperrors.RemoteError
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, "Invalid OTP", remote.Message)
	}
	require.NoError(t, session.VerifyOTP(ctx, otp.KindClosing, h.codes.get(otp.KindClosing)))
	assert.Equal(t, event.StatusCompleted, session.Event().Status)
	assert.Contains(t, h.out.String(), "Event completed successfully!")

	list, err := h.events.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, list.Events, 1)
	assert.Equal(t, primary.Progress{CheckedIn: true, StartVerified: true, PrePhotos: 2, Closed: true}, list.Events[0].Progress)

	stats, err := h.events.GetAnalytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	require.NotNil(t, stats.CheckInToCompleted)
	assert.GreaterOrEqual(t, *stats.CheckInToCompleted, time.Duration(0))
}

func TestOtherVendorsEventsAreForbidden(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t, "grace@example.com")
	created := h.createEvent(t)

	require.NoError(t, h.auth.Logout(ctx))
	h.signUp(t, "ada@example.com")

	_, err := h.workflows.Open(ctx, created.ID)
	var remote *apperrors.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusForbidden, remote.StatusCode)
	assert.Empty(t, h.creds.Token(), "a rejected session clears credentials")
}

func TestDeleteThenFetchIsNotFound(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t, "grace@example.com")
	created := h.createEvent(t)

	require.NoError(t, h.events.DeleteEvent(ctx, created.ID))

	_, err := h.workflows.Open(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	h := newHarness(t)

	resp, err := http.Get(h.server.URL + "/api/events")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, err = h.auth.Login(context.Background(), primary.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.Equal(t, "Invalid credentials", apperrors.UserMessage(err, "Login failed"))
}

func TestSendBeforeCheckInIsBlockedLocally(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t, "grace@example.com")
	created := h.createEvent(t)

	session, err := h.workflows.Open(ctx, created.ID)
	require.NoError(t, err)
	defer session.Close()

	err = session.SendOTP(ctx, otp.KindStart)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Empty(t, h.codes.get(otp.KindStart))
}
