package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/contractdesk/internal/cli"
	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/Veraticus/contractdesk/internal/monitor"
	"github.com/Veraticus/contractdesk/internal/tui/viewmodel"
)

func systemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Backend health, readiness and request logs",
	}

	cmd.AddCommand(systemHealthCmd())
	cmd.AddCommand(systemReadyCmd())
	cmd.AddCommand(systemLogsCmd())
	cmd.AddCommand(systemWatchCmd())

	return cmd
}

func systemHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check backend health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return printSnapshot(cmd, a.HealthMonitor().Check(cmd.Context()))
		},
	}
}

func systemReadyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "Check backend readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return printSnapshot(cmd, a.ReadinessMonitor().Check(cmd.Context()))
		},
	}
}

// errUnhealthy makes one-shot checks exit non-zero.
var errUnhealthy = errors.New("backend is not healthy")

// printSnapshot prints a one-shot check and fails when it was not healthy.
// Request failures are left to main to print.
func printSnapshot(cmd *cobra.Command, snap monitor.Snapshot) error {
	if snap.Err != nil {
		return snap.Err
	}
	if err := printLine(cmd, formatSnapshot(snap)); err != nil {
		return err
	}
	if !snap.Healthy {
		return fmt.Errorf("%s: %w", snap.Name, errUnhealthy)
	}
	return nil
}

func formatSnapshot(snap monitor.Snapshot) string {
	name := fmt.Sprintf("%-9s", snap.Name)
	switch {
	case snap.Err != nil:
		return fmt.Sprintf("%s %s", name, cli.FormatError(common.Message(snap.Err)))
	case snap.Healthy:
		return fmt.Sprintf("%s %s", name, cli.FormatSuccess(snap.Status))
	case snap.Detail != "":
		return fmt.Sprintf("%s %s", name, cli.FormatWarning(snap.Status+": "+snap.Detail))
	default:
		return fmt.Sprintf("%s %s", name, cli.FormatWarning(snap.Status))
	}
}

func systemLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show backend request logs",
		Long: `Show one page of backend request logs.

--date must be YYYY-MM-DD and --status must start with a number; both are
otherwise rejected.`,
		Args: cobra.NoArgs,
		RunE: runSystemLogs,
	}
	cmd.Flags().String("user", "", "filter by username")
	cmd.Flags().String("endpoint", "", "filter by endpoint")
	cmd.Flags().String("date", "", "filter by date (YYYY-MM-DD)")
	cmd.Flags().String("status", "", "filter by response status")
	cmd.Flags().Int("page", 1, "page to show")
	return cmd
}

func runSystemLogs(cmd *cobra.Command, _ []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	logs := a.Logs()
	defer logs.Close()

	ctx := cmd.Context()
	for _, key := range monitor.LogFilters {
		value, _ := cmd.Flags().GetString(string(key))
		if value == "" {
			continue
		}
		if err := logs.SetFilter(ctx, key, value); err != nil {
			return fmt.Errorf("--%s: %w", key, err)
		}
	}
	if err := logs.ApplyNow(ctx); err != nil {
		return err
	}
	if page, _ := cmd.Flags().GetInt("page"); page > 1 {
		if err := logs.SetPage(ctx, page); err != nil {
			return err
		}
	}

	state := logs.State()
	if len(state.Entries) == 0 {
		return printLine(cmd, cli.SubtleStyle.Render("No request logs match the current filters."))
	}

	rows := make([][]string, 0, len(state.Entries))
	for _, e := range state.Entries {
		r := viewmodel.NewLogRow(e)
		rows = append(rows, []string{r.Date, r.User, r.Method, r.Endpoint, cli.StyleHTTPStatus(e.Status)})
	}
	if err := printLine(cmd, cli.RenderTable(viewmodel.LogColumns, rows)); err != nil {
		return err
	}
	return pageFooter(cmd, state.Page, state.TotalPages, state.Count, "requests")
}

func systemWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll health and readiness until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runSystemWatch,
	}
	cmd.Flags().Duration("interval", 0, "poll interval (default: monitor.interval)")
	return cmd
}

func runSystemWatch(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
		a.Config.Monitor.Interval = interval
	}

	var mu sync.Mutex
	report := func(snap monitor.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		_ = printf(cmd, "%s  %s\n", cli.SubtleStyle.Render(snap.LastChecked.Format(time.TimeOnly)), formatSnapshot(snap))
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	for _, m := range []*monitor.StatusMonitor{a.HealthMonitor(), a.ReadinessMonitor()} {
		g.Go(func() error {
			return watchMonitor(ctx, m, report)
		})
	}
	return g.Wait()
}

// watchMonitor polls m until ctx ends.
func watchMonitor(ctx context.Context, m *monitor.StatusMonitor, fn func(monitor.Snapshot)) error {
	m.OnUpdate(fn)
	m.Start(ctx)
	<-ctx.Done()
	m.Stop()
	return nil
}
