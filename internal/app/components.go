package app

import (
	"github.com/stacklok/translations-sync/internal/storage"
	"github.com/stacklok/translations-sync/internal/sync/coordinator"
	"github.com/stacklok/translations-sync/internal/telemetry"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// SyncCoordinator runs the periodic sync cycles
	SyncCoordinator coordinator.Coordinator

	// TranslationsStorage holds the synced snapshot
	TranslationsStorage storage.TranslationsStorage

	// Telemetry owns the tracer and meter providers
	Telemetry *telemetry.Telemetry
}
