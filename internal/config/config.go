package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/pattern"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/spf13/viper"
)

// Backend selects where the ledger is persisted.
type Backend string

// Supported backends.
const (
	BackendSQLite Backend = "sqlite"
	BackendHTTP   Backend = "http"
)

// BaseURLEnv is read when remote.base_url is not configured.
const BaseURLEnv = "LEDGER_API_BASE_URL"

// Config holds the runtime configuration of the ledger CLI.
type Config struct {
	Backend      Backend
	DatabasePath string
	BaseURL      string
	SessionPath  string
	LogLevel     string
	LogFormat    string
	ImportRules  []pattern.Rule
	Timeout      time.Duration
	Retry        service.RetryOptions
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:      BackendSQLite,
		DatabasePath: filepath.Join(DataDir(), "ledger.db"),
		SessionPath:  filepath.Join(ConfigDir(), "session.json"),
		LogLevel:     "info",
		LogFormat:    "console",
		Timeout:      30 * time.Second,
		Retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// SetDefaults registers the defaults with v so that config files and
// LEDGER_* environment variables can override them.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("backend", string(d.Backend))
	v.SetDefault("database.path", d.DatabasePath)
	v.SetDefault("session.path", d.SessionPath)
	v.SetDefault("logging.level", d.LogLevel)
	v.SetDefault("logging.format", d.LogFormat)
	v.SetDefault("remote.timeout", d.Timeout)
	v.SetDefault("remote.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("remote.retry.initial_delay", d.Retry.InitialDelay)
	v.SetDefault("remote.retry.max_delay", d.Retry.MaxDelay)
}

// Load reads the configuration from v. It follows this precedence:
// 1. Viper configuration (from config file, flags or LEDGER_ env vars)
// 2. Direct environment variables (LEDGER_API_BASE_URL)
// 3. Default values
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if s := v.GetString("backend"); s != "" {
		cfg.Backend = Backend(strings.ToLower(s))
	}
	if s := v.GetString("database.path"); s != "" {
		cfg.DatabasePath = ExpandPath(s)
	}
	if s := v.GetString("session.path"); s != "" {
		cfg.SessionPath = ExpandPath(s)
	}
	if s := v.GetString("remote.base_url"); s != "" {
		cfg.BaseURL = s
	}
	if s := v.GetString("logging.level"); s != "" {
		cfg.LogLevel = s
	}
	if s := v.GetString("logging.format"); s != "" {
		cfg.LogFormat = s
	}
	if d := v.GetDuration("remote.timeout"); d > 0 {
		cfg.Timeout = d
	}
	if n := v.GetInt("remote.retry.max_attempts"); n > 0 {
		cfg.Retry.MaxAttempts = n
	}
	if d := v.GetDuration("remote.retry.initial_delay"); d > 0 {
		cfg.Retry.InitialDelay = d
	}
	if d := v.GetDuration("remote.retry.max_delay"); d > 0 {
		cfg.Retry.MaxDelay = d
	}

	if v.IsSet("import.rules") {
		if err := v.UnmarshalKey("import.rules", &cfg.ImportRules, viper.DecodeHook(pattern.DecodeHook())); err != nil {
			return nil, fmt.Errorf("%w: import.rules: %w", common.ErrInvalidConfig, err)
		}
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv(BaseURLEnv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration can be used.
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendSQLite:
		if c.DatabasePath == "" {
			errs = append(errs, fmt.Errorf("%w: database.path", common.ErrMissingConfig))
		}
	case BackendHTTP:
		if c.BaseURL == "" {
			errs = append(errs, fmt.Errorf("%w: remote.base_url (or %s)", common.ErrMissingConfig, BaseURLEnv))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: backend %q must be %q or %q",
			common.ErrInvalidConfig, c.Backend, BackendSQLite, BackendHTTP))
	}

	if c.SessionPath == "" {
		errs = append(errs, fmt.Errorf("%w: session.path", common.ErrMissingConfig))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("%w: remote.retry.max_attempts must be at least 1", common.ErrInvalidConfig))
	}
	if err := pattern.Validate(c.ImportRules); err != nil {
		errs = append(errs, fmt.Errorf("%w: import.rules: %w", common.ErrInvalidConfig, err))
	}

	return errors.Join(errs...)
}
