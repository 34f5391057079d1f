package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.API.URL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 6, cfg.UI.PageSize)
	assert.Equal(t, 10, cfg.Logs.PageSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Logs.Debounce)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, "session.json", filepath.Base(cfg.Session.Path))
	assert.Equal(t, "contractdesk", filepath.Base(filepath.Dir(cfg.Session.Path)))
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("api.url", "https://contracts.example.com/")
	v.Set("ui.page_size", 12)
	v.Set("monitor.interval", "5s")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://contracts.example.com", cfg.API.URL, "trailing slash is trimmed")
	assert.Equal(t, 12, cfg.UI.PageSize)
	assert.Equal(t, 5*time.Second, cfg.Monitor.Interval)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			API:     APIConfig{URL: "http://localhost:8000", Timeout: time.Second},
			Session: SessionConfig{Path: "/tmp/session.json"},
			UI:      UIConfig{PageSize: 6},
			Logs:    LogsConfig{PageSize: 10, Debounce: time.Millisecond},
			Monitor: MonitorConfig{Interval: time.Second},
		}
	}

	tests := []struct {
		mutate  func(*Config)
		wantErr error
		name    string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty url", mutate: func(c *Config) { c.API.URL = "" }, wantErr: common.ErrMissingConfig},
		{name: "non-http url", mutate: func(c *Config) { c.API.URL = "ftp://host" }, wantErr: common.ErrInvalidConfig},
		{name: "zero timeout", mutate: func(c *Config) { c.API.Timeout = 0 }, wantErr: common.ErrInvalidConfig},
		{name: "no session path", mutate: func(c *Config) { c.Session.Path = "" }, wantErr: common.ErrMissingConfig},
		{name: "zero page size", mutate: func(c *Config) { c.UI.PageSize = 0 }, wantErr: common.ErrInvalidConfig},
		{name: "zero logs page size", mutate: func(c *Config) { c.Logs.PageSize = 0 }, wantErr: common.ErrInvalidConfig},
		{name: "negative debounce", mutate: func(c *Config) { c.Logs.Debounce = -time.Second }, wantErr: common.ErrInvalidConfig},
		{name: "zero interval", mutate: func(c *Config) { c.Monitor.Interval = 0 }, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("CONTRACTDESK_TEST_DIR", "/var/data")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde only", in: "~", want: home},
		{name: "tilde prefix", in: "~/x/session.json", want: filepath.Join(home, "x/session.json")},
		{name: "env var", in: "$CONTRACTDESK_TEST_DIR/s.json", want: "/var/data/s.json"},
		{name: "absolute", in: "/etc/contractdesk", want: "/etc/contractdesk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestXDGDirs(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")

	assert.Equal(t, "/xdg/data/contractdesk", DataDir())
	assert.Equal(t, "/xdg/state/contractdesk", StateDir())
	assert.Equal(t, "/xdg/config/contractdesk", ConfigDir())
}
