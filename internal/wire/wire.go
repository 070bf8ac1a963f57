// Package wire provides dependency injection for the dayof application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/dayof/internal/adapters/cli"
	"github.com/example/dayof/internal/adapters/eventapi"
	"github.com/example/dayof/internal/adapters/filesystem"
	"github.com/example/dayof/internal/adapters/geo"
	"github.com/example/dayof/internal/adapters/sqlite"
	"github.com/example/dayof/internal/app"
	"github.com/example/dayof/internal/clock"
	"github.com/example/dayof/internal/config"
	"github.com/example/dayof/internal/db"
	"github.com/example/dayof/internal/logging"
	"github.com/example/dayof/internal/ports/primary"
	"github.com/example/dayof/internal/sandbox"
)

var (
	settings     *config.Settings
	logger       *slog.Logger
	settingsOnce sync.Once

	authService     primary.AuthService
	eventService    primary.EventService
	workflowService primary.WorkflowService
	once            sync.Once

	positionMu  sync.Mutex
	positionLat *float64
	positionLng *float64
)

// Settings returns the environment settings, exiting on invalid configuration.
func Settings() *config.Settings {
	settingsOnce.Do(initSettings)
	return settings
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	settingsOnce.Do(initSettings)
	return logger
}

// AuthService returns the singleton AuthService instance.
func AuthService() primary.AuthService {
	once.Do(initServices)
	return authService
}

// EventService returns the singleton EventService instance.
func EventService() primary.EventService {
	once.Do(initServices)
	return eventService
}

// WorkflowService returns the singleton WorkflowService instance.
func WorkflowService() primary.WorkflowService {
	once.Do(initServices)
	return workflowService
}

// SetPosition overrides the configured position for check-in. It must be
// called before the first WorkflowService call to take effect.
func SetPosition(lat, lng float64) {
	positionMu.Lock()
	defer positionMu.Unlock()
	positionLat, positionLng = &lat, &lng
}

// Renderer returns a new EventRenderer writing to stdout.
func Renderer() *cliadapter.EventRenderer {
	return RendererWithOutput(os.Stdout)
}

// RendererWithOutput returns a new EventRenderer writing to the given output.
func RendererWithOutput(out io.Writer) *cliadapter.EventRenderer {
	return cliadapter.NewEventRenderer(out)
}

// SandboxServer returns a sandbox server configured from the environment.
func SandboxServer() *sandbox.Server {
	s := Settings()
	return sandbox.NewServer(sandbox.Options{
		Secret: s.Sandbox.Secret,
		OTPTTL: s.OTP.TTL,
		Logger: Logger(),
	})
}

func initSettings() {
	var err error
	settings, err = config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := logging.DefaultConfig()
	cfg.Level = settings.Logging.Level
	cfg.Format = settings.Logging.Format
	logger = logging.NewLogger(cfg)
	slog.SetDefault(logger)
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	s := Settings()
	log := Logger()

	dataDir, err := s.DataDir()
	if err != nil {
		fatal(log, "failed to resolve data directory", err)
	}
	database, err := db.GetDB(dataDir)
	if err != nil {
		fatal(log, "failed to initialize database", err)
	}

	creds := app.NewCredentials()
	client, err := eventapi.NewClient(eventapi.Options{
		BaseURL:           s.API.BaseURL,
		Timeout:           s.API.Timeout,
		RequestsPerSecond: s.RateLimit.RequestsPerSecond,
		Burst:             s.RateLimit.Burst,
		Tokens:            creds,
		Logger:            log,
	})
	if err != nil {
		fatal(log, "failed to create service client", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	credentialRepo := sqlite.NewCredentialRepository(database)
	snapshotRepo := sqlite.NewEventSnapshotRepository(database)

	clk := clock.NewSystem()
	notifier := cliadapter.NewNotifier(os.Stdout, os.Stderr)
	executor := app.NewEffectExecutor(notifier, nil, log)

	auth := app.NewAuthService(client, credentialRepo, creds, executor, clk, log)
	authService = auth
	eventService = app.NewEventService(client, snapshotRepo, executor, clk, log)

	positionMu.Lock()
	lat, lng := positionLat, positionLng
	positionMu.Unlock()
	if lat == nil && lng == nil {
		lat, lng = s.Geo.Latitude, s.Geo.Longitude
	}

	workflowService = app.NewWorkflowService(app.WorkflowDeps{
		Events:           client,
		Photos:           filesystem.NewPhotoSelector(0),
		Geo:              geo.NewStaticLocator(lat, lng),
		Notifier:         notifier,
		Snapshots:        snapshotRepo,
		Clock:            clk,
		TTL:              s.OTP.TTL,
		Logger:           log,
		OnSessionInvalid: auth.Invalidate,
	})
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// Shutdown releases the database connection.
func Shutdown(ctx context.Context) {
	if err := db.Close(); err != nil {
		Logger().WarnContext(ctx, "failed to close database", "error", err)
	}
}
