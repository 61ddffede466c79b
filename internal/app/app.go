// Package app wires the translations sync components and manages their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/translations-sync/internal/config"
	"github.com/stacklok/translations-sync/internal/sources"
)

// TranslationsApp encapsulates the sync loop and the optional read API
type TranslationsApp struct {
	config          *config.Config
	components      *AppComponents
	httpServer      *http.Server
	shutdownTimeout time.Duration

	// Set when the file source is watched for changes
	watchPath    string
	watchTrigger chan struct{}
}

// Run starts the sync coordinator and, when configured, the HTTP server.
// It blocks until ctx is cancelled or one of them fails.
func (app *TranslationsApp) Run(ctx context.Context) error {
	if app.httpServer == nil {
		return app.run(ctx, nil)
	}

	ln, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err)
	}
	return app.run(ctx, ln)
}

// RunOnce performs a single sync cycle
func (app *TranslationsApp) RunOnce(ctx context.Context) error {
	return app.components.SyncCoordinator.RunOnce(ctx)
}

// Shutdown flushes and stops the telemetry providers
func (app *TranslationsApp) Shutdown(ctx context.Context) error {
	if app.components.Telemetry == nil {
		return nil
	}
	return app.components.Telemetry.Shutdown(ctx)
}

func (app *TranslationsApp) run(ctx context.Context, ln net.Listener) error {
	logger := logr.FromContextOrDiscard(ctx)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.components.SyncCoordinator.Start(gctx); err != nil {
			return fmt.Errorf("sync coordinator failed: %w", err)
		}
		return nil
	})

	if app.watchTrigger != nil {
		g.Go(func() error {
			return sources.WatchFile(gctx, app.watchPath, app.watchTrigger)
		})
	}

	if ln != nil {
		// Request contexts carry the logger but outlive the shutdown signal
		app.httpServer.BaseContext = func(net.Listener) context.Context {
			return context.WithoutCancel(gctx)
		}

		g.Go(func() error {
			logger.Info("Server listening", "address", ln.Addr().String())
			if err := app.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server failed: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			logger.Info("Shutting down server")

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), app.shutdownTimeout)
			defer cancel()
			if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *TranslationsApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server, nil when the read API is disabled
func (app *TranslationsApp) GetHTTPServer() *http.Server {
	return app.httpServer
}
