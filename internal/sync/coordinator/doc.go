// Package coordinator schedules translation sync cycles.
//
// It sits on top of sync.Manager and handles:
//
//   - an initial cycle on startup followed by one cycle per SYNC_INTERVAL
//   - status transitions (Complete, Syncing, Complete or Failed) and their persistence
//   - sync metrics
//   - graceful shutdown
//
// Cycles run sequentially on the goroutine that called Start, so they never
// overlap. The first failed cycle ends the loop and Start returns its error;
// restarting the process is left to the supervisor.
//
// # Usage Example
//
//	syncManager := sync.NewDefaultSyncManager(factory, translationsStorage)
//	persistence := status.NewFileStatusPersistence(cfg.Storage.StatusPath)
//	coord := coordinator.New(syncManager, persistence, cfg)
//
//	if err := coord.Start(ctx); err != nil {
//	    // log and exit 1
//	}
package coordinator
