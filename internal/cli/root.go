// Package cli implements the memoria command line.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmynk/memoria/internal/config"
	"github.com/mmynk/memoria/pkg/logging"
)

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// options are the flags shared by every subcommand.
type options struct {
	v          *viper.Viper
	configFile string
	envFile    string
}

// load reads the configuration and installs the logger.
func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.v, o.envFile, o.configFile)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func NewRootCommand() *cobra.Command {
	opts := &options{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:           "memoria",
		Short:         "Family photo album server",
		Long:          `Memoria stores family photos, extracts their capture time and location, and serves albums, timelines and maps to family members.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Path to a config file (yaml, json or toml)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file; ignored when missing")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	opts.v.BindPFlag("log.level", flags.Lookup("log-level"))
	opts.v.BindPFlag("log.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newExtractCommand(opts),
	)
	return rootCmd
}
