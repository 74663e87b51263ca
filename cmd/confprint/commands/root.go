package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"confprint/internal/config"
	appLog "confprint/internal/log"
	"confprint/internal/printer"
)

var (
	configPath string

	// cfg is loaded once per invocation by loadConfig.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "confprint",
	Short: "Print a conference program as a per-room PDF timetable",
	Long: `confprint downloads a pentabarf XML schedule, inserts the configured
breaks, and writes one printable timetable page per day and room.

Without a subcommand it renders once (or on the refresh schedule when
refresh is set in the config file).

Environment variables (CONFPRINT_FEED_URL, CONFPRINT_OUTPUT, ...) override
the config file; a .env file in the working directory is read first.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	RunE: runRender,
	// Enable strict flag parsing - unknown flags will cause an error
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the root command. Cobra's own error printing is silenced;
// commands report failures through the printer package.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "confprint.yaml", "Path to config file (created with defaults if missing)")
}

func loadConfig() error {
	// A missing .env file is normal.
	_ = godotenv.Load()

	loaded, err := config.Load(configPath)
	if err != nil {
		return printer.Error(
			"Failed to load configuration",
			err.Error(),
			[]string{fmt.Sprintf("Check that %s is valid YAML", configPath)},
		)
	}
	loaded.ApplyEnv()
	if err := loaded.Validate(); err != nil {
		return printer.Error("Invalid configuration", err.Error(), nil)
	}

	appLog.SetLevel(appLog.ParseLevel(loaded.LogLevel))
	appLog.Debug("effective config",
		"feed_url", loaded.FeedURL,
		"output", loaded.Output,
		"locale", loaded.Locale,
		"breaks", len(loaded.Breaks),
		"excluded_rooms", len(loaded.ExcludedRooms),
		"refresh", loaded.Refresh,
	)
	cfg = loaded
	return nil
}

// signalContext is canceled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
