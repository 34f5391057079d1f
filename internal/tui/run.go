package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/contractdesk/internal/app"
	"github.com/Veraticus/contractdesk/internal/common"
)

// Run starts the full-screen dashboard and blocks until the user quits.
func Run(ctx context.Context, a *app.App, opts ...Option) error {
	if a == nil {
		return errors.New("app is required")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.App = a
	cfg.Context = ctx

	m := newModel(cfg)
	defer func() {
		m.stopMonitors()
		a.Policy.OnRedirect(nil)
	}()

	programOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}
	if cfg.MouseSupport {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, programOpts...)

	// Background senders must not block on the event loop, which may itself
	// be waiting for them to stop.
	m.notifier.bind(func(msg tea.Msg) { go p.Send(msg) })

	common.LogInfo("Dashboard started", common.Fields{"api": a.API.BaseURL(), "mouse": cfg.MouseSupport})
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		common.LogError(err, "Dashboard stopped", nil)
		return fmt.Errorf("dashboard error: %w", err)
	}
	common.LogDebug("Dashboard stopped", nil)
	return nil
}
