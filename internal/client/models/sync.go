package models

import "time"

// SyncStatus tracks whether a local record has reached the server.
type SyncStatus string

const (
	SyncPending  SyncStatus = "pending"
	SyncSyncing  SyncStatus = "syncing"
	SyncSynced   SyncStatus = "synced"
	SyncFailed   SyncStatus = "failed"
	SyncConflict SyncStatus = "conflict"
)

// NeedsSync reports whether a record in this state should be retried.
func (s SyncStatus) NeedsSync() bool {
	return s == SyncPending || s == SyncFailed
}

// SyncState is the bookkeeping row kept per dream.
type SyncState struct {
	Status    SyncStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SyncEvent is published whenever a dream's sync state changes. Status is
// empty when the dream was removed, and DreamID is empty after a bulk
// import or clear.
type SyncEvent struct {
	DreamID string
	Status  SyncStatus
	Error   string
	// Pending is the number of dreams still waiting for sync after this change.
	Pending int
}

// SyncReport summarizes one pass over the pending set.
type SyncReport struct {
	Attempted int
	Synced    int
	Failed    map[string]string
}

// LocalExport is the backup document produced by the local store.
type LocalExport struct {
	Dreams       []Dream              `json:"dreams"`
	SyncStatuses map[string]SyncState `json:"syncStatuses"`
	ExportDate   time.Time            `json:"exportDate"`
	Version      string               `json:"version"`
}

// StorageUsage is the size in bytes of the serialized local data.
type StorageUsage struct {
	Dreams       int `json:"dreams"`
	SyncStatuses int `json:"syncStatuses"`
	Total        int `json:"total"`
}
