package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stacklok/translations-sync/internal/app"
	"github.com/stacklok/translations-sync/internal/config"
	"github.com/stacklok/translations-sync/internal/logging"
)

const telemetryShutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the sync loop and the optional read API",
		Long: `Run a sync cycle immediately and then every SYNC_INTERVAL until interrupted.

The read API is served when SERVER_ADDRESS is set. The process exits with a
non-zero status on the first failed cycle.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApp(cmd, func(ctx context.Context, a *app.TranslationsApp) error {
				return a.Run(ctx)
			})
		},
	}
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run a single sync cycle and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApp(cmd, func(ctx context.Context, a *app.TranslationsApp) error {
				return a.RunOnce(ctx)
			})
		},
	}
}

// runApp loads the configuration, sets up logging and runs fn until it
// returns or the process is interrupted
func runApp(cmd *cobra.Command, fn func(context.Context, *app.TranslationsApp) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cmd, config.DefaultLogLevel)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		logger.Error(err, "Configuration error")
		return err
	}

	if logger, err = newLogger(cmd, cfg.LogLevel); err != nil {
		return err
	}
	logger = logger.WithValues("run_id", uuid.NewString())
	ctx = logr.NewContext(ctx, logger)

	logger.Info("Starting translations sync",
		"source", cfg.Source.Type,
		"interval", cfg.SyncPolicy.GetInterval().String(),
		"filterTags", cfg.SyncPolicy.FilterTags,
		"storage", cfg.Storage.Path)

	translationsApp, err := app.NewTranslationsApp(ctx, app.WithConfig(cfg))
	if err != nil {
		logger.Error(err, "Failed to initialize application")
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryShutdownTimeout)
		defer cancel()
		if err := translationsApp.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "Failed to shut down telemetry")
		}
	}()

	if err := fn(ctx, translationsApp); err != nil {
		logger.Error(err, "Translations sync failed")
		return fmt.Errorf("translations sync failed: %w", err)
	}
	return nil
}

// newLogger builds a JSON logger on the command's stderr
func newLogger(cmd *cobra.Command, level string) (logr.Logger, error) {
	logger, err := logging.New(level, logging.WithWriter(cmd.ErrOrStderr()))
	if err != nil {
		return logr.Discard(), fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
