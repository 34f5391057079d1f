package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/contractdesk/internal/api"
	"github.com/Veraticus/contractdesk/internal/app"
	"github.com/Veraticus/contractdesk/internal/cli"
	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/Veraticus/contractdesk/internal/config"
)

var (
	cfgFile   string
	version   = "dev"
	logCloser io.Closer
	rootCmd   = newRootCmd()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contractdesk",
		Short: "📄 Contract analysis dashboard for the terminal",
		Long: `contractdesk: manage contracts, clients and their AI analyses from the terminal.

Run "contractdesk dashboard" for the interactive dashboard, or use the
subcommands for scripting.`,
		PersistentPreRunE:  initConfig,
		PersistentPostRunE: closeLogs,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/contractdesk/config.yaml)")
	cmd.PersistentFlags().String("api-url", "", "backend base URL (default: "+config.DefaultAPIURL+")")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	cmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")

	_ = viper.BindPFlag("api.url", cmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.file", cmd.PersistentFlags().Lookup("log-file"))

	cmd.AddCommand(authCmd())
	cmd.AddCommand(contractsCmd())
	cmd.AddCommand(clientsCmd())
	cmd.AddCommand(systemCmd())
	cmd.AddCommand(dashboardCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err for the user. A rejected token gets a re-login
// hint instead of the raw failure.
func reportError(w io.Writer, err error) {
	common.LogDebug("Command failed", common.Fields{"error": err.Error()})
	if api.IsUnauthorized(err) || errors.Is(err, common.ErrNotAuthenticated) {
		_, _ = fmt.Fprintln(w, cli.FormatError(app.SessionExpiredMessage))
		_, _ = fmt.Fprintln(w, cli.FormatInfo("Run: contractdesk auth login"))
		return
	}
	_, _ = fmt.Fprintln(w, cli.FormatError(common.Message(err)))
}

func initConfig(cmd *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CONTRACTDESK")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := setupLogging(cmd); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

// setupLogging configures slog. The dashboard owns the terminal, so unless
// a file is configured its logs go to the state directory.
func setupLogging(cmd *cobra.Command) error {
	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}

	file := config.ExpandPath(viper.GetString("logging.file"))
	if file == "" && cmd.Name() == "dashboard" {
		file = filepath.Join(config.StateDir(), "contractdesk.log")
	}

	closer, err := common.SetupLogger(level, viper.GetString("logging.format"), file)
	if err != nil {
		return err
	}
	logCloser = closer
	return nil
}

func closeLogs(_ *cobra.Command, _ []string) error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "contractdesk %s\n", version)
			return err
		},
	}
}
