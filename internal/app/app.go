// Package app wires configuration, the session store, the API client and
// the controllers together.
package app

import (
	"context"
	"fmt"

	"github.com/Veraticus/contractdesk/internal/api"
	"github.com/Veraticus/contractdesk/internal/config"
	"github.com/Veraticus/contractdesk/internal/listview"
	"github.com/Veraticus/contractdesk/internal/model"
	"github.com/Veraticus/contractdesk/internal/monitor"
	"github.com/Veraticus/contractdesk/internal/session"
)

// App holds the long-lived services shared by the dashboard and the CLI.
type App struct {
	Config  *config.Config
	Session *session.Store
	API     *api.Client
	Policy  *UnauthorizedPolicy
}

// Option customises New.
type Option func(*options)

type options struct {
	apiConfig api.Config
}

// WithAPIConfig overrides the API client settings derived from config.
func WithAPIConfig(cfg api.Config) Option {
	return func(o *options) {
		o.apiConfig = cfg
	}
}

// New builds the application services. backend stores the session.
func New(cfg *config.Config, backend session.Backend, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	o := options{
		apiConfig: api.Config{
			BaseURL: cfg.API.URL,
			Timeout: cfg.API.Timeout,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	store := session.NewStore(backend)
	policy := NewUnauthorizedPolicy(store)

	// Every 401 goes through the policy, whichever caller made the request.
	apiConfig := o.apiConfig
	extra := apiConfig.OnUnauthorized
	apiConfig.OnUnauthorized = func(err error) {
		if extra != nil {
			extra(err)
		}
		policy.Handle(err)
	}

	client, err := api.New(apiConfig, store)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return &App{
		Config:  cfg,
		Session: store,
		API:     client,
		Policy:  policy,
	}, nil
}

// NewFromConfig builds the application with the file session backend at
// the configured path.
func NewFromConfig(cfg *config.Config) (*App, error) {
	return New(cfg, session.NewFileBackend(cfg.Session.Path))
}

// Login authenticates and persists the session.
func (a *App) Login(ctx context.Context, creds model.LoginCredentials) (*model.AuthResponse, error) {
	return a.Session.Login(ctx, a.API, creds)
}

// Register creates an account and persists the session.
func (a *App) Register(ctx context.Context, creds model.RegisterCredentials) (*model.AuthResponse, error) {
	return a.Session.Register(ctx, a.API, creds)
}

// Logout clears the session.
func (a *App) Logout() error {
	return a.Session.Logout()
}

// RequireUser returns the logged-in user or common.ErrNotAuthenticated.
func (a *App) RequireUser() (*model.User, error) {
	return a.Session.RequireUser()
}

// Contracts creates a contracts controller reporting through notify.
func (a *App) Contracts(notify listview.Notifier) *listview.ContractsController {
	return listview.NewContractsController(a.API, a.Policy.Notifier(notify), a.Config.UI.PageSize)
}

// Clients creates a clients controller reporting through notify.
func (a *App) Clients(notify listview.Notifier) *listview.ClientsController {
	return listview.NewClientsController(a.API, a.Policy.Notifier(notify), a.Config.UI.PageSize)
}

// Logs creates a request-log controller.
func (a *App) Logs() *monitor.LogsController {
	return monitor.NewLogsController(a.API, a.Config.Logs.PageSize, a.Config.Logs.Debounce)
}

// HealthMonitor creates a stopped health poller.
func (a *App) HealthMonitor() *monitor.StatusMonitor {
	return monitor.NewHealthMonitor(a.API, a.Config.Monitor.Interval)
}

// ReadinessMonitor creates a stopped readiness poller.
func (a *App) ReadinessMonitor() *monitor.StatusMonitor {
	return monitor.NewReadinessMonitor(a.API, a.Config.Monitor.Interval)
}
