package domain

import "time"

// SyncType identifies one logical disclosure feed. Each sync type owns
// exactly one checkpoint row.
type SyncType string

const (
	SyncSenate   SyncType = "senate"
	SyncHouse    SyncType = "house"
	SyncInsiders SyncType = "insiders"
)

// CheckpointStatus is the lifecycle state of a sync checkpoint.
type CheckpointStatus string

const (
	CheckpointPending    CheckpointStatus = "pending"
	CheckpointInProgress CheckpointStatus = "in_progress"
	CheckpointCompleted  CheckpointStatus = "completed"
	CheckpointFailed     CheckpointStatus = "failed"
)

// SyncCheckpoint is the persisted progress marker for one sync type.
// Corresponds to the sync_checkpoints table in PostgreSQL.
//
// Lifecycle: created pending, moved to in_progress on the first write of a
// run, advanced incrementally, completed only after a full pass, failed on an
// unhandled error. A resumed run re-enters in_progress starting at
// LastProcessedIndex+1.
type SyncCheckpoint struct {
	SyncType           SyncType // unique key
	LastProcessedIndex int      // index of the last confirmed record, -1 if none
	TotalRecords       int
	CreatedCount       int
	UpdatedCount       int
	SkippedCount       int
	ErrorCount         int
	Status             CheckpointStatus
	StartedAt          time.Time
	UpdatedAt          time.Time
	CompletedAt        *time.Time // nil until completed
}

// Resumable reports whether a new run should continue from this checkpoint
// instead of starting at index 0.
func (c *SyncCheckpoint) Resumable() bool {
	return c.Status == CheckpointInProgress || c.Status == CheckpointFailed
}
