package postgres

import (
	"context"
	"fmt"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/storage"
)

// CheckpointStore is a PostgreSQL implementation of storage.CheckpointStore.
// One row per sync type, keyed by sync_type.
type CheckpointStore struct {
	pool *Pool
}

// NewCheckpointStore creates a new PostgreSQL checkpoint store.
func NewCheckpointStore(pool *Pool) *CheckpointStore {
	return &CheckpointStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CheckpointStore = (*CheckpointStore)(nil)

const checkpointColumns = `
	sync_type, last_processed_index, total_records, created_count, updated_count,
	skipped_count, error_count, status, started_at, updated_at, completed_at
`

// Load returns the checkpoint for a sync type, creating a pending one if
// none exists yet.
func (s *CheckpointStore) Load(ctx context.Context, syncType domain.SyncType) (*domain.SyncCheckpoint, error) {
	if syncType == "" {
		return nil, storage.ErrInvalidInput
	}

	// Seed the row on first use; a concurrent seed loses harmlessly.
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sync_checkpoints (sync_type, last_processed_index, status)
		VALUES ($1, -1, 'pending')
		ON CONFLICT (sync_type) DO NOTHING
	`, syncType)
	if err != nil {
		return nil, fmt.Errorf("seed checkpoint: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		SELECT `+checkpointColumns+`
		FROM sync_checkpoints
		WHERE sync_type = $1
	`, syncType)

	var cp domain.SyncCheckpoint
	err = row.Scan(&cp.SyncType, &cp.LastProcessedIndex, &cp.TotalRecords,
		&cp.CreatedCount, &cp.UpdatedCount, &cp.SkippedCount, &cp.ErrorCount,
		&cp.Status, &cp.StartedAt, &cp.UpdatedAt, &cp.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	return &cp, nil
}

// Advance moves the checkpoint to in_progress and records progress.
func (s *CheckpointStore) Advance(ctx context.Context, cp *domain.SyncCheckpoint) error {
	if cp == nil || cp.SyncType == "" {
		return storage.ErrInvalidInput
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE sync_checkpoints
		SET last_processed_index = $2,
		    total_records = $3,
		    created_count = $4,
		    updated_count = $5,
		    skipped_count = $6,
		    error_count = $7,
		    status = 'in_progress',
		    updated_at = NOW(),
		    completed_at = NULL
		WHERE sync_type = $1
	`, cp.SyncType, cp.LastProcessedIndex, cp.TotalRecords,
		cp.CreatedCount, cp.UpdatedCount, cp.SkippedCount, cp.ErrorCount)
	if err != nil {
		return fmt.Errorf("advance checkpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Complete marks the checkpoint completed and stamps completed_at.
func (s *CheckpointStore) Complete(ctx context.Context, syncType domain.SyncType) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sync_checkpoints
		SET status = 'completed',
		    updated_at = NOW(),
		    completed_at = NOW()
		WHERE sync_type = $1
	`, syncType)
	if err != nil {
		return fmt.Errorf("complete checkpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Fail marks the checkpoint failed, preserving last_processed_index for a
// future resume.
func (s *CheckpointStore) Fail(ctx context.Context, syncType domain.SyncType, reason string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sync_checkpoints
		SET status = 'failed',
		    failure_reason = $2,
		    updated_at = NOW()
		WHERE sync_type = $1
	`, syncType, reason)
	if err != nil {
		return fmt.Errorf("fail checkpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
