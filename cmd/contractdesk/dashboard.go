package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/contractdesk/internal/tui"
	"github.com/Veraticus/contractdesk/internal/tui/themes"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive dashboard",
		Long: `Open the full-screen dashboard. Logs are written to the state directory
unless --log-file is given.`,
		Args: cobra.NoArgs,
		RunE: runDashboard,
	}
	cmd.Flags().String("theme", "default", "color theme (default, catppuccin-mocha, plain)")
	cmd.Flags().Bool("no-mouse", false, "disable mouse support")
	_ = viper.BindPFlag("ui.theme", cmd.Flags().Lookup("theme"))
	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	noMouse, _ := cmd.Flags().GetBool("no-mouse")
	return tui.Run(cmd.Context(), a,
		tui.WithTheme(themes.GetTheme(viper.GetString("ui.theme"))),
		tui.WithMouse(!noMouse),
		tui.WithClock(now),
	)
}
