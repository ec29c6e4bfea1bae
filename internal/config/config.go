package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the root configuration for timesheet, stored in
// ~/.timesheet/config.toml.
type Config struct {
	// Timezone is the IANA operating timezone every "today" is anchored to.
	Timezone string `toml:"timezone"`

	Storage  StorageConfig  `toml:"storage"`
	Remote   RemoteConfig   `toml:"remote"`
	Sessions SessionsConfig `toml:"sessions"`
	Sync     SyncConfig     `toml:"sync"`
	Server   ServerConfig   `toml:"server"`
}

// StorageConfig selects the backend.
type StorageConfig struct {
	// Backend is one of file, sqlite, mysql or remote.
	Backend string `toml:"backend"`
	// Path is the data directory (file) or database file (sqlite).
	Path string `toml:"path"`
	// DSN is the MySQL data source name.
	DSN string `toml:"dsn"`
}

// RemoteConfig holds the document store endpoint and OAuth2 settings.
type RemoteConfig struct {
	BaseURL       string   `toml:"base_url"`
	ClientID      string   `toml:"client_id"`
	ClientSecret  string   `toml:"client_secret"`
	TokenURL      string   `toml:"token_url"`
	DeviceAuthURL string   `toml:"device_auth_url"`
	Scopes        []string `toml:"scopes"`
	PollSeconds   int      `toml:"poll_seconds"`
}

// SessionsConfig controls the clock-in engine.
type SessionsConfig struct {
	// DoubleClockIn is overwrite, reject or restart.
	DoubleClockIn string `toml:"double_clock_in"`
}

// SyncConfig controls the background write queue.
type SyncConfig struct {
	MaxAttempts int `toml:"max_attempts"`
	BackoffMS   int `toml:"backoff_ms"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`

	// AllowedOrigins lists the CORS origins; empty allows any origin.
	AllowedOrigins []string `toml:"allowed_origins"`
}

const (
	DefaultTimezone      = "America/New_York"
	DefaultBackend       = "file"
	DefaultDoubleClockIn = "overwrite"
	DefaultPollSeconds   = 5
	DefaultMaxAttempts   = 5
	DefaultBackoffMS     = 500
	DefaultAddr          = ":8080"
)

// defaultConfig returns a Config pre-filled with the built-in defaults.
func defaultConfig() Config {
	return Config{
		Timezone: DefaultTimezone,
		Storage:  StorageConfig{Backend: DefaultBackend},
		Remote:   RemoteConfig{PollSeconds: DefaultPollSeconds},
		Sessions: SessionsConfig{DoubleClockIn: DefaultDoubleClockIn},
		Sync:     SyncConfig{MaxAttempts: DefaultMaxAttempts, BackoffMS: DefaultBackoffMS},
		Server:   ServerConfig{Addr: DefaultAddr},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# timesheet configuration - ~/.timesheet/config.toml
#
# Every setting is optional. Any value can also be set through a TIMESHEET_*
# environment variable or a .env file in the working directory, e.g.
# TIMESHEET_STORAGE_BACKEND=sqlite.

# IANA timezone used for every "today" decision, regardless of the host zone.
timezone = "America/New_York"

[storage]
# file   - one JSON file per day under path (default ~/.timesheet/data)
# sqlite - a single database file at path (default ~/.timesheet/timesheet.db)
# mysql  - the database named by dsn, e.g. "user:pass@tcp(host:3306)/timesheet?parseTime=true"
# remote - the shared document store configured in [remote]
backend = "file"
path = ""
dsn = ""

[remote]
# Base URL of the document store, e.g. "https://sync.example.com/v1".
base_url = ""
# OAuth2 client. With a client_secret the client-credentials grant is used;
# without one the device-code flow asks you to sign in once in a browser.
client_id = ""
client_secret = ""
token_url = ""
device_auth_url = ""
scopes = []
# How often "timesheet watch" and "timesheet serve" poll for remote changes.
poll_seconds = 5

[sessions]
# What clocking in an already clocked-in person does:
# overwrite - replace the open session, discarding its start time (default)
# reject    - refuse with an error
# restart   - close the open session into an entry, then clock in again
double_clock_in = "overwrite"

[sync]
# Each write is tried up to max_attempts times, waiting backoff_ms after the
# first failure and doubling the wait after each further failure.
max_attempts = 5
backoff_ms = 500

[server]
# Listen address of "timesheet serve".
addr = ":8080"
# Browser origins allowed to call the API. Empty allows any origin.
allowed_origins = []
`

// Dir returns the timesheet home directory, ~/.timesheet unless
// TIMESHEET_HOME is set.
func Dir() (string, error) {
	if dir := os.Getenv("TIMESHEET_HOME"); dir != "" {
		return expandPath(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".timesheet"), nil
}

// configFilePath returns the path to config.toml.
func configFilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads .env (if present), then reads config.toml, creating it with
// annotated defaults on first run. Environment variables override the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}
	path, err := configFilePath()
	if err != nil {
		return defaultConfig(), err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path, creating it with annotated defaults
// when it does not exist, and applies environment overrides.
func LoadFile(path string) (Config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return cfg, err
	}
	cfg.fillDefaults()
	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	return cfg, nil
}

// applyEnv overrides cfg with TIMESHEET_* variables.
func applyEnv(cfg *Config, getenv func(string) string) error {
	strs := map[string]*string{
		"TIMESHEET_TIMEZONE":               &cfg.Timezone,
		"TIMESHEET_STORAGE_BACKEND":        &cfg.Storage.Backend,
		"TIMESHEET_STORAGE_PATH":           &cfg.Storage.Path,
		"TIMESHEET_STORAGE_DSN":            &cfg.Storage.DSN,
		"TIMESHEET_REMOTE_BASE_URL":        &cfg.Remote.BaseURL,
		"TIMESHEET_REMOTE_CLIENT_ID":       &cfg.Remote.ClientID,
		"TIMESHEET_REMOTE_CLIENT_SECRET":   &cfg.Remote.ClientSecret,
		"TIMESHEET_REMOTE_TOKEN_URL":       &cfg.Remote.TokenURL,
		"TIMESHEET_REMOTE_DEVICE_AUTH_URL": &cfg.Remote.DeviceAuthURL,
		"TIMESHEET_DOUBLE_CLOCK_IN":        &cfg.Sessions.DoubleClockIn,
		"TIMESHEET_SERVER_ADDR":            &cfg.Server.Addr,
	}
	for key, dst := range strs {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"TIMESHEET_REMOTE_POLL_SECONDS": &cfg.Remote.PollSeconds,
		"TIMESHEET_SYNC_MAX_ATTEMPTS":   &cfg.Sync.MaxAttempts,
		"TIMESHEET_SYNC_BACKOFF_MS":     &cfg.Sync.BackoffMS,
	}
	for key, dst := range ints {
		v := getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", key, v)
		}
		*dst = n
	}

	if v := getenv("TIMESHEET_REMOTE_SCOPES"); v != "" {
		cfg.Remote.Scopes = splitList(v)
	}
	if v := getenv("TIMESHEET_SERVER_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// fillDefaults replaces zero values left by a partial file.
func (c *Config) fillDefaults() {
	d := defaultConfig()
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Remote.PollSeconds <= 0 {
		c.Remote.PollSeconds = d.Remote.PollSeconds
	}
	if c.Sessions.DoubleClockIn == "" {
		c.Sessions.DoubleClockIn = d.Sessions.DoubleClockIn
	}
	if c.Sync.MaxAttempts <= 0 {
		c.Sync.MaxAttempts = d.Sync.MaxAttempts
	}
	if c.Sync.BackoffMS < 0 {
		c.Sync.BackoffMS = d.Sync.BackoffMS
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
}

// StoragePath returns Storage.Path, or the default location for the
// configured backend inside the timesheet home directory.
func (c Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if c.Storage.Backend == "sqlite" {
		return filepath.Join(dir, "timesheet.db"), nil
	}
	return filepath.Join(dir, "data"), nil
}

// PollInterval returns Remote.PollSeconds as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Remote.PollSeconds) * time.Second
}

// Backoff returns Sync.BackoffMS as a duration.
func (c Config) Backoff() time.Duration {
	return time.Duration(c.Sync.BackoffMS) * time.Millisecond
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
