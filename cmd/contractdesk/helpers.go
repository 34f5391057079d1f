package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/contractdesk/internal/app"
	"github.com/Veraticus/contractdesk/internal/cli"
	"github.com/Veraticus/contractdesk/internal/config"
	"github.com/Veraticus/contractdesk/internal/listview"
)

// envKeyReplacer maps api.url to CONTRACTDESK_API_URL.
var envKeyReplacer = strings.NewReplacer(".", "_")

// now is replaced in tests that depend on date filters.
var now = time.Now

// newApp loads the configuration and opens the stored session.
func newApp() (*app.App, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return app.NewFromConfig(cfg)
}

// loggedInApp is newApp for commands that need a session.
func loggedInApp() (*app.App, error) {
	a, err := newApp()
	if err != nil {
		return nil, err
	}
	if _, err := a.RequireUser(); err != nil {
		return nil, err
	}
	return a, nil
}

// notifier prints controller successes. Failures are returned to cobra and
// printed once by main.
func notifier(cmd *cobra.Command) listview.Notifier {
	return cli.NewNotifier(cmd.OutOrStdout(), io.Discard)
}

func prompter(cmd *cobra.Command) *cli.Prompter {
	return cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
}

func printLine(cmd *cobra.Command, s string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), s)
	return err
}

func printf(cmd *cobra.Command, format string, args ...any) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	return err
}

// confirmDelete asks before deleting unless --yes was given.
func confirmDelete(cmd *cobra.Command, what string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}
	return prompter(cmd).Confirm(cmd.Context(), fmt.Sprintf("Delete %s? This cannot be undone.", what))
}

func pageFooter(cmd *cobra.Command, page, total, count int, noun string) error {
	summary := fmt.Sprintf("%d %s", count, noun)
	if total > 1 {
		summary = fmt.Sprintf("Page %d of %d, %s", page, total, summary)
	}
	return printLine(cmd, cli.SubtleStyle.Render(summary))
}
