package tui

import (
	"context"
	"time"

	"github.com/Veraticus/contractdesk/internal/app"
	"github.com/Veraticus/contractdesk/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Context      context.Context
	App          *app.App
	Now          func() time.Time
	Theme        themes.Theme
	Width        int
	Height       int
	MouseSupport bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Context:      context.Background(),
		Now:          time.Now,
		Theme:        themes.Default,
		Width:        100,
		Height:       30,
		MouseSupport: true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithClock replaces the clock used for date filters.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// WithMouse enables or disables mouse events.
func WithMouse(enabled bool) Option {
	return func(c *Config) {
		c.MouseSupport = enabled
	}
}

// WithContext sets the context requests run under.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		c.Context = ctx
	}
}
