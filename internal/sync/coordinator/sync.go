package coordinator

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/stacklok/translations-sync/internal/status"
	pkgsync "github.com/stacklok/translations-sync/internal/sync"
)

// UpToDateMessage is the status message of a cycle that found nothing to store
const UpToDateMessage = "Translations are up to date"

// RunOnce executes one sync cycle and updates the status accordingly
func (c *defaultCoordinator) RunOnce(ctx context.Context) error {
	logger := logr.FromContextOrDiscard(ctx)
	c.statusOnce.Do(func() { c.loadStatus(ctx) })
	startTime := time.Now()

	// Persist the "Syncing" state immediately so it's visible
	var attemptCount int
	c.withStatus(func(syncStatus *status.SyncStatus) {
		syncStatus.Phase = status.SyncPhaseSyncing
		syncStatus.Message = "Sync in progress"
		syncStatus.LastAttempt = &startTime
		syncStatus.AttemptCount++
		attemptCount = syncStatus.AttemptCount

		if err := c.statusPersistence.SaveStatus(ctx, syncStatus); err != nil {
			logger.Info("Failed to persist syncing status", "error", err.Error())
		}
	})

	logger.V(1).Info("Starting sync operation", "attempt", attemptCount)

	result, syncErr := c.manager.PerformSync(ctx, c.config)
	duration := time.Since(startTime)

	c.withStatus(func(syncStatus *status.SyncStatus) {
		if syncErr != nil {
			applyFailure(syncStatus, syncErr)
		} else {
			applyResult(syncStatus, result, time.Now())
		}

		if err := c.statusPersistence.SaveStatus(ctx, syncStatus); err != nil {
			logger.Error(err, "Failed to persist final sync status")
		}
	})

	source := c.config.Source.Type
	if syncErr != nil {
		logger.Error(syncErr, "Sync failed", "stage", syncErr.Stage, "attempt", attemptCount)
		c.syncMetrics.RecordSyncDuration(ctx, source, duration, false)
		return syncErr
	}

	c.syncMetrics.RecordSyncDuration(ctx, source, duration, true)
	c.syncMetrics.RecordKeysTotal(ctx, source, int64(result.KeyCount))
	if result.Changed {
		c.syncMetrics.RecordChange(ctx, source, result.Reason)
	}

	hashPreview := result.Hash
	if len(hashPreview) > 8 {
		hashPreview = hashPreview[:8]
	}
	logger.V(1).Info("Sync completed",
		"changed", result.Changed,
		"reason", result.Reason,
		"keys", result.KeyCount,
		"hash", hashPreview,
		"duration", duration.String())

	return nil
}

func applyFailure(syncStatus *status.SyncStatus, syncErr *pkgsync.Error) {
	syncStatus.Phase = status.SyncPhaseFailed
	syncStatus.Message = syncErr.Message
}

func applyResult(syncStatus *status.SyncStatus, result *pkgsync.Result, now time.Time) {
	syncStatus.Phase = status.SyncPhaseComplete
	syncStatus.Message = UpToDateMessage
	syncStatus.LastSyncTime = &now
	syncStatus.LastSyncHash = result.Hash
	syncStatus.LocaleCount = result.LocaleCount
	syncStatus.KeyCount = result.KeyCount
	syncStatus.AttemptCount = 0
	if result.Changed {
		syncStatus.Message = pkgsync.RefreshedMessage
		syncStatus.LastChangeTime = &now
	}
}
