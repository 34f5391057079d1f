package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/spf13/viper"
)

// Defaults mirror the behaviour of the web dashboard this client replaces.
const (
	DefaultAPIURL          = "http://localhost:8000"
	DefaultAPITimeout      = 30 * time.Second
	DefaultListPageSize    = 6
	DefaultLogsPageSize    = 10
	DefaultMonitorInterval = 30 * time.Second
	DefaultDebounce        = 500 * time.Millisecond
)

// Config is the resolved application configuration.
type Config struct {
	API     APIConfig
	Session SessionConfig
	UI      UIConfig
	Logs    LogsConfig
	Monitor MonitorConfig
	Logging LoggingConfig
}

// APIConfig describes how to reach the backend.
type APIConfig struct {
	URL     string
	Timeout time.Duration
}

// SessionConfig locates the persisted session.
type SessionConfig struct {
	Path string
}

// UIConfig holds list presentation settings.
type UIConfig struct {
	PageSize int
}

// LogsConfig holds request-log viewer settings.
type LogsConfig struct {
	PageSize int
	Debounce time.Duration
}

// MonitorConfig holds health/readiness polling settings.
type MonitorConfig struct {
	Interval time.Duration
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("api.timeout", DefaultAPITimeout)
	v.SetDefault("session.path", filepath.Join(DataDir(), "session.json"))
	v.SetDefault("ui.page_size", DefaultListPageSize)
	v.SetDefault("logs.page_size", DefaultLogsPageSize)
	v.SetDefault("logs.debounce", DefaultDebounce)
	v.SetDefault("monitor.interval", DefaultMonitorInterval)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
}

// Load reads configuration from Viper.
// It follows this precedence:
// 1. Flags bound to Viper
// 2. Environment variables (CONTRACTDESK_*)
// 3. Config file
// 4. Default values
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		API: APIConfig{
			URL:     strings.TrimRight(strings.TrimSpace(v.GetString("api.url")), "/"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Session: SessionConfig{
			Path: ExpandPath(v.GetString("session.path")),
		},
		UI: UIConfig{
			PageSize: v.GetInt("ui.page_size"),
		},
		Logs: LogsConfig{
			PageSize: v.GetInt("logs.page_size"),
			Debounce: v.GetDuration("logs.debounce"),
		},
		Monitor: MonitorConfig{
			Interval: v.GetDuration("monitor.interval"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
			File:   ExpandPath(v.GetString("logging.file")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the client cannot work with.
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return fmt.Errorf("%w: api.url is empty", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api.url %q is not an http(s) URL", common.ErrInvalidConfig, c.API.URL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", common.ErrInvalidConfig)
	}
	if c.Session.Path == "" {
		return fmt.Errorf("%w: session.path is empty", common.ErrMissingConfig)
	}
	if c.UI.PageSize <= 0 {
		return fmt.Errorf("%w: ui.page_size must be positive", common.ErrInvalidConfig)
	}
	if c.Logs.PageSize <= 0 {
		return fmt.Errorf("%w: logs.page_size must be positive", common.ErrInvalidConfig)
	}
	if c.Logs.Debounce < 0 {
		return fmt.Errorf("%w: logs.debounce must not be negative", common.ErrInvalidConfig)
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("%w: monitor.interval must be positive", common.ErrInvalidConfig)
	}
	return nil
}
