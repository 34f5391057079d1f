// Package monitor polls backend health and readiness and drives the
// request-log viewer.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/contractdesk/internal/model"
	"github.com/Veraticus/contractdesk/internal/timing"
)

// DefaultInterval is how often health and readiness are polled.
const DefaultInterval = 30 * time.Second

// Probe performs one check and reports whether the backend is up, along
// with the raw status and any detail the backend gave.
type Probe func(ctx context.Context) (Result, error)

// Result is the outcome of one successful probe.
type Result struct {
	Status string
	Detail string
	OK     bool
}

// Snapshot is the monitor state shown in a status card.
type Snapshot struct {
	LastChecked time.Time
	Err         error
	Name        string
	Status      string
	Detail      string
	Checks      int
	Healthy     bool
}

// Checked reports whether at least one probe has completed.
func (s Snapshot) Checked() bool {
	return s.Checks > 0
}

// HealthAPI is the backend call behind the health card.
type HealthAPI interface {
	Health(ctx context.Context) (*model.HealthStatus, error)
}

// ReadyAPI is the backend call behind the readiness card.
type ReadyAPI interface {
	Ready(ctx context.Context) (*model.ReadinessStatus, error)
}

// StatusMonitor polls a probe on a fixed interval.
type StatusMonitor struct {
	probe    Probe
	poller   *timing.Poller
	onUpdate func(Snapshot)
	now      func() time.Time
	logger   *slog.Logger
	snap     Snapshot
	mu       sync.Mutex
}

// NewStatusMonitor creates a stopped monitor named name.
func NewStatusMonitor(name string, interval time.Duration, probe Probe) *StatusMonitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	m := &StatusMonitor{
		probe:  probe,
		now:    time.Now,
		logger: slog.Default().With("component", "monitor", "monitor", name),
		snap:   Snapshot{Name: name},
	}
	m.poller = timing.NewPoller(interval, func(ctx context.Context) {
		m.Check(ctx)
	})
	return m
}

// NewHealthMonitor polls GET /api/health/.
func NewHealthMonitor(api HealthAPI, interval time.Duration) *StatusMonitor {
	return NewStatusMonitor("health", interval, func(ctx context.Context) (Result, error) {
		status, err := api.Health(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{OK: status.Healthy(), Status: status.Status}, nil
	})
}

// NewReadinessMonitor polls GET /api/ready/.
func NewReadinessMonitor(api ReadyAPI, interval time.Duration) *StatusMonitor {
	return NewStatusMonitor("readiness", interval, func(ctx context.Context) (Result, error) {
		status, err := api.Ready(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{OK: status.Ready(), Status: status.Status, Detail: status.Error}, nil
	})
}

// OnUpdate registers fn to receive every new snapshot. It must be set
// before Start.
func (m *StatusMonitor) OnUpdate(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = fn
}

// Start polls immediately and then on the interval until Stop or ctx ends.
func (m *StatusMonitor) Start(ctx context.Context) {
	m.poller.Start(ctx)
}

// Stop ends polling. No updates are delivered after Stop returns.
func (m *StatusMonitor) Stop() {
	m.poller.Stop()
}

// Running reports whether the monitor is polling.
func (m *StatusMonitor) Running() bool {
	return m.poller.Running()
}

// Check runs the probe once and records the outcome. A failure replaces
// the last good result until a later check succeeds.
func (m *StatusMonitor) Check(ctx context.Context) Snapshot {
	result, err := m.probe(ctx)

	m.mu.Lock()
	snap := m.snap
	snap.Checks++
	snap.LastChecked = m.now()
	if err != nil {
		snap.Err = err
		snap.Healthy = false
		snap.Status = ""
		snap.Detail = ""
	} else {
		snap.Err = nil
		snap.Healthy = result.OK
		snap.Status = result.Status
		snap.Detail = result.Detail
	}
	m.snap = snap
	onUpdate := m.onUpdate
	m.mu.Unlock()

	if err != nil {
		m.logger.Debug("Status check failed", "error", err)
	} else {
		m.logger.Debug("Status checked", "status", result.Status, "ok", result.OK)
	}

	if onUpdate != nil && ctx.Err() == nil {
		onUpdate(snap)
	}
	return snap
}

// Snapshot returns the latest recorded state.
func (m *StatusMonitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}
