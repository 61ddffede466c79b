package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"

	"github.com/stacklok/translations-sync/internal/api"
	"github.com/stacklok/translations-sync/internal/config"
	"github.com/stacklok/translations-sync/internal/sources"
	"github.com/stacklok/translations-sync/internal/status"
	"github.com/stacklok/translations-sync/internal/storage"
	pkgsync "github.com/stacklok/translations-sync/internal/sync"
	"github.com/stacklok/translations-sync/internal/sync/coordinator"
	"github.com/stacklok/translations-sync/internal/telemetry"
	"github.com/stacklok/translations-sync/internal/versions"
)

const (
	defaultRequestTimeout  = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// TranslationsAppOptions is a function that configures the translations app builder
type TranslationsAppOptions func(*translationsAppConfig) error

// translationsAppConfig collects the builder inputs.
// Component overrides are primarily used by tests.
type translationsAppConfig struct {
	config *config.Config

	// Optional component overrides
	sourceHandlerFactory sources.SourceHandlerFactory
	syncManager          pkgsync.Manager
	keyValueStore        storage.KeyValueStore
	statusPersistence    status.StatusPersistence
	telemetry            *telemetry.Telemetry

	// HTTP server options
	address         string
	middlewares     []func(http.Handler) http.Handler
	requestTimeout  time.Duration
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
}

func baseConfig(opts ...TranslationsAppOptions) (*translationsAppConfig, error) {
	cfg := &translationsAppConfig{
		requestTimeout:  defaultRequestTimeout,
		readTimeout:     defaultReadTimeout,
		writeTimeout:    defaultWriteTimeout,
		idleTimeout:     defaultIdleTimeout,
		shutdownTimeout: defaultShutdownTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// NewTranslationsApp builds the application from the given options
func NewTranslationsApp(
	ctx context.Context,
	opts ...TranslationsAppOptions,
) (*TranslationsApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.address == "" && cfg.config.Server.Address != "" {
		if err := validateAddress(cfg.config.Server.Address); err != nil {
			return nil, fmt.Errorf("invalid server address: %w", err)
		}
		cfg.address = cfg.config.Server.Address
	}

	if cfg.telemetry == nil {
		telemetryConfig := cfg.config.Telemetry
		if telemetryConfig.ServiceVersion == "" {
			telemetryConfig.ServiceVersion = versions.GetVersionInfo().Version
		}
		cfg.telemetry, err = telemetry.New(ctx, telemetry.WithTelemetryConfig(&telemetryConfig))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	}

	if cfg.keyValueStore == nil {
		cfg.keyValueStore = storage.NewFileStore(cfg.config.Storage.Path)
	}
	translationsStorage := storage.NewTranslationsStorage(cfg.keyValueStore)

	var watchPath string
	var trigger chan struct{}
	fileSource := cfg.config.Source.Type == config.SourceTypeFile && cfg.config.Source.File != nil
	if fileSource && cfg.config.SyncPolicy.WatchSourceFile {
		watchPath = cfg.config.Source.File.Path
		trigger = make(chan struct{}, 1)
	}

	syncCoordinator, err := buildSyncComponents(ctx, cfg, translationsStorage, trigger)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	var httpServer *http.Server
	if cfg.address != "" {
		httpServer, err = buildHTTPServer(ctx, cfg, translationsStorage, syncCoordinator)
		if err != nil {
			return nil, fmt.Errorf("failed to build HTTP server: %w", err)
		}
	}

	return &TranslationsApp{
		config: cfg.config,
		components: &AppComponents{
			SyncCoordinator:     syncCoordinator,
			TranslationsStorage: translationsStorage,
			Telemetry:           cfg.telemetry,
		},
		httpServer:      httpServer,
		shutdownTimeout: cfg.shutdownTimeout,
		watchPath:       watchPath,
		watchTrigger:    trigger,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) TranslationsAppOptions {
	return func(cfg *translationsAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address, overriding the configured one
func WithAddress(addr string) TranslationsAppOptions {
	return func(cfg *translationsAppConfig) error {
		if err := validateAddress(addr); err != nil {
			return err
		}
		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) TranslationsAppOptions {
	return func(cfg *translationsAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithSourceHandlerFactory allows injecting a custom source handler factory (for testing)
func WithSourceHandlerFactory(f sources.SourceHandlerFactory) TranslationsAppOptions {
	return func(cfg *translationsAppConfig) error {
		cfg.sourceHandlerFactory = f
		return nil
	}
}

// WithSyncManager allows injecting a custom sync manager (for testing)
func WithSyncManager(sm pkgsync.Manager) TranslationsAppOptions {
	return func(cfg *translationsAppConfig) error {
		cfg.syncManager = sm
		return nil
	}
}

// WithKeyValueStore allows injecting a custom snapshot store (for testing)
func WithKeyValueStore(store storage.KeyValueStore) TranslationsAppOptions {
	return func(cfg *translationsAppConfig) error {
		cfg.keyValueStore = store
		return nil
	}
}

// WithStatusPersistence allows injecting a custom status persistence (for testing)
func WithStatusPersistence(sp status.StatusPersistence) TranslationsAppOptions {
	return func(cfg *translationsAppConfig) error {
		cfg.statusPersistence = sp
		return nil
	}
}

// WithTelemetry sets already initialized telemetry providers
func WithTelemetry(t *telemetry.Telemetry) TranslationsAppOptions {
	return func(cfg *translationsAppConfig) error {
		cfg.telemetry = t
		return nil
	}
}

// WithShutdownTimeout bounds the graceful shutdown of the HTTP server
func WithShutdownTimeout(timeout time.Duration) TranslationsAppOptions {
	return func(cfg *translationsAppConfig) error {
		if timeout <= 0 {
			return fmt.Errorf("shutdown timeout must be positive")
		}
		cfg.shutdownTimeout = timeout
		return nil
	}
}

// validateAddress accepts host:port listen addresses. An empty host listens
// on every interface.
func validateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("address is not a valid host:port: %w", err)
	}
	if port == "" {
		return fmt.Errorf("address is not a valid port: %s", addr)
	}
	switch host {
	case "localhost":
		host = "127.0.0.1"
	case "":
		host = "0.0.0.0"
	}

	if _, err := netip.ParseAddrPort(net.JoinHostPort(host, port)); err != nil {
		return fmt.Errorf("address is not a valid port: %w", err)
	}
	return nil
}

// buildSyncComponents builds the sync manager and the coordinator
func buildSyncComponents(
	ctx context.Context,
	b *translationsAppConfig,
	translationsStorage storage.TranslationsStorage,
	trigger <-chan struct{},
) (coordinator.Coordinator, error) {
	logger := logr.FromContextOrDiscard(ctx)
	logger.V(1).Info("Initializing sync components")

	if b.sourceHandlerFactory == nil {
		b.sourceHandlerFactory = sources.NewSourceHandlerFactory()
	}

	if b.syncManager == nil {
		b.syncManager = pkgsync.NewDefaultSyncManager(
			b.sourceHandlerFactory,
			translationsStorage,
			pkgsync.WithTracerProvider(b.telemetry.TracerProvider()),
		)
	}

	if b.statusPersistence == nil {
		b.statusPersistence = status.NewFileStatusPersistence(b.config.Storage.StatusPath)
	}

	var coordOpts []coordinator.Option
	syncMetrics, err := telemetry.NewSyncMetrics(b.telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}
	if syncMetrics != nil {
		coordOpts = append(coordOpts, coordinator.WithSyncMetrics(syncMetrics))
		logger.V(1).Info("Sync metrics enabled")
	}
	if trigger != nil {
		coordOpts = append(coordOpts, coordinator.WithTrigger(trigger))
	}

	syncCoordinator := coordinator.New(b.syncManager, b.statusPersistence, b.config, coordOpts...)
	logger.V(1).Info("Sync components initialized successfully")

	return syncCoordinator, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	ctx context.Context,
	b *translationsAppConfig,
	translationsStorage storage.TranslationsStorage,
	statusProvider coordinator.Coordinator,
) (*http.Server, error) {
	logger := logr.FromContextOrDiscard(ctx)
	logger.V(1).Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Metrics and tracing wrap everything so that every request is observed
	metricsMiddleware, err := telemetry.MetricsMiddleware(b.telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
	}
	middlewares := append([]func(http.Handler) http.Handler{
		telemetry.TracingMiddleware(b.telemetry.TracerProvider()),
		metricsMiddleware,
	}, b.middlewares...)

	router := api.NewServer(translationsStorage, statusProvider,
		api.WithMiddlewares(middlewares...),
		api.WithMetricsHandler(b.telemetry.MetricsHandler()),
	)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	logger.V(1).Info("HTTP server initialized", "address", b.address)
	return server, nil
}
