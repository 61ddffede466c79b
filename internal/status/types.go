package status

import "time"

// SyncPhase represents the current phase of a synchronization cycle
type SyncPhase string

const (
	// SyncPhaseSyncing means a cycle is in progress
	SyncPhaseSyncing SyncPhase = "Syncing"

	// SyncPhaseComplete means the last cycle completed
	SyncPhaseComplete SyncPhase = "Complete"

	// SyncPhaseFailed means the last cycle failed
	SyncPhaseFailed SyncPhase = "Failed"
)

// SyncStatus represents the state of translations synchronization
type SyncStatus struct {
	// Phase represents the current synchronization phase
	Phase SyncPhase `json:"phase"`

	// Message provides additional information about the sync status
	Message string `json:"message,omitempty"`

	// LastAttempt is the timestamp of the last sync attempt
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// AttemptCount is the number of sync attempts since last success
	AttemptCount int `json:"attemptCount,omitempty"`

	// LastSyncTime is the timestamp of the last successful cycle
	LastSyncTime *time.Time `json:"lastSyncTime,omitempty"`

	// LastChangeTime is the timestamp of the last cycle that rewrote the snapshot
	LastChangeTime *time.Time `json:"lastChangeTime,omitempty"`

	// LastSyncHash is the hash of the last stored content
	LastSyncHash string `json:"lastSyncHash,omitempty"`

	// LocaleCount is the number of locales in the stored content
	LocaleCount int `json:"localeCount,omitempty"`

	// KeyCount is the number of translation values in the stored content
	KeyCount int `json:"keyCount,omitempty"`

	// SyncSchedule is the configured sync interval (e.g. "5m")
	SyncSchedule string `json:"syncSchedule,omitempty"`
}

// Clone returns a deep copy of the status
func (s *SyncStatus) Clone() *SyncStatus {
	if s == nil {
		return nil
	}
	out := *s
	out.LastAttempt = cloneTime(s.LastAttempt)
	out.LastSyncTime = cloneTime(s.LastSyncTime)
	out.LastChangeTime = cloneTime(s.LastChangeTime)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
