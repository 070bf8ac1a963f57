package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ConfigVersion is written into every saved project config.
const ConfigVersion = "1"

// Config represents the project-local .dayof/config.json
type Config struct {
	Version      string `json:"version"`
	FocusEventID string `json:"focus_event_id,omitempty"` // event the workflow commands act on
}

// LoadConfig reads .dayof/config.json from the specified directory.
// Resolution order: cwd only (no home fallback).
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".dayof", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	dayofDir := filepath.Join(dir, ".dayof")
	if err := os.MkdirAll(dayofDir, 0755); err != nil {
		return fmt.Errorf("failed to create .dayof dir: %w", err)
	}

	if cfg.Version == "" {
		cfg.Version = ConfigVersion
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dayofDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Settings holds the environment-driven runtime configuration.
type Settings struct {
	API       APISettings
	OTP       OTPSettings
	RateLimit RateLimitSettings
	Logging   LoggingSettings
	Home      string // directory holding dayof.db
	Geo       GeoSettings
	Sandbox   SandboxSettings
}

// APISettings configures the Event and Auth Service client.
type APISettings struct {
	BaseURL string
	Timeout time.Duration
}

// OTPSettings configures the passcode countdown.
type OTPSettings struct {
	TTL time.Duration
}

// RateLimitSettings throttles outbound requests.
type RateLimitSettings struct {
	RequestsPerSecond float64
	Burst             int
}

// LoggingSettings holds logging configuration
type LoggingSettings struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// GeoSettings is a fixed position used when no --lat/--lng flags are given.
type GeoSettings struct {
	Latitude  *float64
	Longitude *float64
}

// SandboxSettings configures the local stand-in service.
type SandboxSettings struct {
	Addr   string
	Secret string
}

// Load loads settings from environment variables, reading .env first when present.
func Load() (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}

	s := &Settings{
		API: APISettings{
			BaseURL: strings.TrimRight(getEnvOrDefault("DAYOF_API_URL", "http://localhost:5000/api"), "/"),
			Timeout: getDurationOrDefault("DAYOF_HTTP_TIMEOUT", 30*time.Second),
		},
		OTP: OTPSettings{
			TTL: getDurationOrDefault("DAYOF_OTP_TTL", 10*time.Minute),
		},
		RateLimit: RateLimitSettings{
			RequestsPerSecond: getFloatOrDefault("DAYOF_RATE_LIMIT_RPS", 5),
			Burst:             getIntOrDefault("DAYOF_RATE_LIMIT_BURST", 10),
		},
		Logging: LoggingSettings{
			Level:  getEnvOrDefault("DAYOF_LOG_LEVEL", "warn"),
			Format: getEnvOrDefault("DAYOF_LOG_FORMAT", "text"),
		},
		Home: getEnvOrDefault("DAYOF_HOME", ""),
		Geo: GeoSettings{
			Latitude:  getOptionalFloat("DAYOF_LATITUDE"),
			Longitude: getOptionalFloat("DAYOF_LONGITUDE"),
		},
		Sandbox: SandboxSettings{
			Addr:   getEnvOrDefault("DAYOF_SANDBOX_ADDR", ":5000"),
			Secret: getEnvOrDefault("DAYOF_SANDBOX_SECRET", "dayof-sandbox-secret"),
		},
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate validates the settings
func (s *Settings) Validate() error {
	var errs []string

	if !strings.HasPrefix(s.API.BaseURL, "http://") && !strings.HasPrefix(s.API.BaseURL, "https://") {
		errs = append(errs, "DAYOF_API_URL must be an http(s) URL")
	}
	if s.API.Timeout <= 0 {
		errs = append(errs, "DAYOF_HTTP_TIMEOUT must be positive")
	}
	if s.OTP.TTL <= 0 {
		errs = append(errs, "DAYOF_OTP_TTL must be positive")
	}
	if s.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, "DAYOF_RATE_LIMIT_RPS must be positive")
	}
	if s.RateLimit.Burst < 1 {
		errs = append(errs, "DAYOF_RATE_LIMIT_BURST must be at least 1")
	}
	if (s.Geo.Latitude == nil) != (s.Geo.Longitude == nil) {
		errs = append(errs, "DAYOF_LATITUDE and DAYOF_LONGITUDE must be set together")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// DataDir returns the directory holding local state, defaulting to ~/.dayof.
func (s *Settings) DataDir() (string, error) {
	if s.Home != "" {
		return s.Home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".dayof"), nil
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getOptionalFloat(key string) *float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return &floatValue
		}
	}
	return nil
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
