// Package config loads the client configuration from an optional TOML
// file with environment variable overrides. Validation happens at load
// time so misconfiguration fails before any session state exists.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Defaults match the backend's issued token lifetime (30 minutes) with
// a five minute warning lead.
const (
	DefaultAppName        = "DineKit"
	DefaultBackendURL     = "http://localhost:8000"
	DefaultSessionTimeout = 30 * time.Minute
	DefaultWarningLead    = 5 * time.Minute
	DefaultStorageBackend = "file"
	DefaultStoragePath    = "dinekit-session.json"
	DefaultLogLevel       = "info"
)

// Config is what the rest of the application consumes.
type Config interface {
	EnvConfig
	SessionConfig
	StorageConfig
	LogConfig
}

type EnvConfig interface {
	GetAppName() string
	GetBackendURL() string
	GetRestaurantID() string
}

type SessionConfig interface {
	GetSessionTimeout() time.Duration
	GetWarningLead() time.Duration
}

type StorageConfig interface {
	GetStorageBackend() string // "file" or "sqlite"
	GetStoragePath() string
	GetStoragePassphrase() string // empty disables encryption at rest
}

type LogConfig interface {
	GetLogLevel() string
	GetLogFile() string // empty logs to stderr only
}

// Settings is the TOML document shape.
type Settings struct {
	AppName      string `toml:"app_name"`
	BackendURL   string `toml:"backend_url"`
	RestaurantID string `toml:"restaurant_id"`

	Session struct {
		TimeoutMinutes     int `toml:"timeout_minutes"`
		WarningLeadMinutes int `toml:"warning_lead_minutes"`
	} `toml:"session"`

	Storage struct {
		Backend    string `toml:"backend"`
		Path       string `toml:"path"`
		Passphrase string `toml:"passphrase"`
	} `toml:"storage"`

	Log struct {
		Level string `toml:"level"`
		File  string `toml:"file"`
	} `toml:"log"`
}

var _ Config = (*Settings)(nil)

// New returns the configuration built from defaults and environment
// variables only.
func New() (Config, error) {
	return Load("")
}

// Load reads the TOML file at path (skipped when empty or absent),
// applies environment overrides, and validates the result.
func Load(path string) (Config, error) {
	s := &Settings{}

	if path != "" {
		if _, err := toml.DecodeFile(path, s); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "[config.Load] %s", path)
		}
	}
	s.applyEnv()

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyEnv() {
	s.AppName = GetEnv("DINEKIT_APP_NAME", defaultStr(s.AppName, DefaultAppName))
	s.BackendURL = GetEnv("DINEKIT_BACKEND_URL", defaultStr(s.BackendURL, DefaultBackendURL))
	s.RestaurantID = GetEnv("DINEKIT_RESTAURANT_ID", s.RestaurantID)
	s.Storage.Backend = GetEnv("DINEKIT_STORAGE_BACKEND", defaultStr(s.Storage.Backend, DefaultStorageBackend))
	s.Storage.Path = GetEnv("DINEKIT_STORAGE_PATH", defaultStr(s.Storage.Path, DefaultStoragePath))
	s.Storage.Passphrase = GetEnv("DINEKIT_STORAGE_PASSPHRASE", s.Storage.Passphrase)
	s.Log.Level = GetEnv("DINEKIT_LOG_LEVEL", defaultStr(s.Log.Level, DefaultLogLevel))
	s.Log.File = GetEnv("DINEKIT_LOG_FILE", s.Log.File)
}

func (s *Settings) validate() error {
	timeout := s.GetSessionTimeout()
	lead := s.GetWarningLead()

	if timeout <= 0 {
		return errors.New("[config] session timeout must be positive")
	}
	if lead < 0 {
		return errors.New("[config] warning lead must not be negative")
	}
	if timeout <= lead {
		return errors.Errorf("[config] session timeout (%s) must exceed warning lead (%s)", timeout, lead)
	}

	switch s.Storage.Backend {
	case "file", "sqlite":
	default:
		return errors.Errorf("[config] unknown storage backend %q", s.Storage.Backend)
	}
	return nil
}

func (s *Settings) GetAppName() string      { return s.AppName }
func (s *Settings) GetBackendURL() string   { return s.BackendURL }
func (s *Settings) GetRestaurantID() string { return s.RestaurantID }

func (s *Settings) GetSessionTimeout() time.Duration {
	if s.Session.TimeoutMinutes > 0 {
		return time.Duration(s.Session.TimeoutMinutes) * time.Minute
	}
	return DefaultSessionTimeout
}

func (s *Settings) GetWarningLead() time.Duration {
	if s.Session.WarningLeadMinutes != 0 {
		return time.Duration(s.Session.WarningLeadMinutes) * time.Minute
	}
	return DefaultWarningLead
}

func (s *Settings) GetStorageBackend() string    { return s.Storage.Backend }
func (s *Settings) GetStoragePath() string       { return s.Storage.Path }
func (s *Settings) GetStoragePassphrase() string { return s.Storage.Passphrase }
func (s *Settings) GetLogLevel() string          { return s.Log.Level }
func (s *Settings) GetLogFile() string           { return s.Log.File }

// GetEnv returns the environment variable's value or defaultValue when
// unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func defaultStr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
