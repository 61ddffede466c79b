package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"github.com/stacklok/translations-sync/internal/config"
	"github.com/stacklok/translations-sync/internal/status"
	pkgsync "github.com/stacklok/translations-sync/internal/sync"
	"github.com/stacklok/translations-sync/internal/telemetry"
)

// ErrAlreadyStarted is returned by Start when the coordinator has been started before
var ErrAlreadyStarted = errors.New("sync coordinator already started")

// Coordinator manages background synchronization scheduling and execution
type Coordinator interface {
	// Start runs one sync cycle immediately and then one per interval.
	// Blocks until the context is cancelled or a cycle fails.
	Start(ctx context.Context) error

	// RunOnce runs a single sync cycle and records its status
	RunOnce(ctx context.Context) error

	// Stop gracefully stops the coordinator loop
	Stop() error

	// GetStatus returns a copy of the current sync status
	GetStatus() *status.SyncStatus
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	manager pkgsync.Manager
	config  *config.Config

	statusPersistence status.StatusPersistence

	// Lifecycle management, Start may run only once
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
	started    atomic.Bool

	// Cached status, guarded by statusMu. The persisted status is restored
	// once, before the first cycle.
	statusMu   sync.RWMutex
	syncStatus *status.SyncStatus
	statusOnce sync.Once

	// Metrics
	syncMetrics *telemetry.SyncMetrics

	// trigger runs an extra cycle on every signal, nil disables it
	trigger <-chan struct{}
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithSyncMetrics sets the sync metrics for the coordinator
func WithSyncMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(c *defaultCoordinator) {
		c.syncMetrics = metrics
	}
}

// WithTrigger runs an additional cycle whenever trigger receives a signal,
// e.g. when a watched source file changes
func WithTrigger(trigger <-chan struct{}) Option {
	return func(c *defaultCoordinator) {
		c.trigger = trigger
	}
}

// New creates a new coordinator with injected dependencies
func New(
	manager pkgsync.Manager,
	statusPersistence status.StatusPersistence,
	cfg *config.Config,
	opts ...Option,
) Coordinator {
	c := &defaultCoordinator{
		manager:           manager,
		statusPersistence: statusPersistence,
		config:            cfg,
		done:              make(chan struct{}),
		syncStatus: &status.SyncStatus{
			Phase:        status.SyncPhaseComplete,
			SyncSchedule: cfg.SyncPolicy.Interval,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start begins background sync coordination
func (c *defaultCoordinator) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	logger := logr.FromContextOrDiscard(ctx)
	interval := c.config.SyncPolicy.GetInterval()

	logger.Info("Starting background sync coordinator",
		"source", c.config.Source.Type,
		"interval", interval.String())

	coordCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelFunc = cancel
	c.mu.Unlock()
	defer func() {
		cancel()
		close(c.done)
		logger.Info("Background sync coordinator shutting down")
	}()

	if err := c.RunOnce(coordCtx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.RunOnce(coordCtx); err != nil {
				return err
			}
		case <-c.trigger:
			logger.V(1).Info("Sync triggered by source change")
			if err := c.RunOnce(coordCtx); err != nil {
				return err
			}
		case <-coordCtx.Done():
			logger.Info("Sync coordinator stopping")
			return nil
		}
	}
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	c.mu.Lock()
	cancel := c.cancelFunc
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-c.done
	}
	return nil
}

// GetStatus returns a copy of the current sync status
func (c *defaultCoordinator) GetStatus() *status.SyncStatus {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.syncStatus.Clone()
}

// loadStatus restores the status persisted by a previous run
func (c *defaultCoordinator) loadStatus(ctx context.Context) {
	logger := logr.FromContextOrDiscard(ctx)

	loaded, err := c.statusPersistence.LoadStatus(ctx)
	if err != nil {
		logger.Info("Failed to load sync status, starting fresh", "error", err.Error())
		return
	}

	c.withStatus(func(syncStatus *status.SyncStatus) {
		syncStatus.LastSyncTime = loaded.LastSyncTime
		syncStatus.LastChangeTime = loaded.LastChangeTime
		syncStatus.LastSyncHash = loaded.LastSyncHash
		syncStatus.LocaleCount = loaded.LocaleCount
		syncStatus.KeyCount = loaded.KeyCount
	})
}

// withStatus runs fn with exclusive access to the cached status
func (c *defaultCoordinator) withStatus(fn func(syncStatus *status.SyncStatus)) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	fn(c.syncStatus)
}
