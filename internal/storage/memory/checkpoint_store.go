package memory

import (
	"context"
	"sync"
	"time"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/storage"
)

// CheckpointStore is an in-memory implementation of storage.CheckpointStore.
type CheckpointStore struct {
	mu   sync.Mutex
	data map[domain.SyncType]*domain.SyncCheckpoint
}

// NewCheckpointStore creates a new in-memory checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{
		data: make(map[domain.SyncType]*domain.SyncCheckpoint),
	}
}

// Load returns the checkpoint for a sync type, creating a pending one if
// none exists yet.
func (s *CheckpointStore) Load(_ context.Context, syncType domain.SyncType) (*domain.SyncCheckpoint, error) {
	if syncType == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cp, ok := s.data[syncType]; ok {
		found := *cp
		return &found, nil
	}

	now := time.Now().UTC()
	cp := &domain.SyncCheckpoint{
		SyncType:           syncType,
		LastProcessedIndex: -1,
		Status:             domain.CheckpointPending,
		StartedAt:          now,
		UpdatedAt:          now,
	}
	s.data[syncType] = cp

	out := *cp
	return &out, nil
}

// Advance moves the checkpoint to in_progress and records progress.
func (s *CheckpointStore) Advance(_ context.Context, cp *domain.SyncCheckpoint) error {
	if cp == nil || cp.SyncType == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.data[cp.SyncType]
	if !ok {
		return storage.ErrNotFound
	}

	stored.LastProcessedIndex = cp.LastProcessedIndex
	stored.TotalRecords = cp.TotalRecords
	stored.CreatedCount = cp.CreatedCount
	stored.UpdatedCount = cp.UpdatedCount
	stored.SkippedCount = cp.SkippedCount
	stored.ErrorCount = cp.ErrorCount
	stored.Status = domain.CheckpointInProgress
	stored.UpdatedAt = time.Now().UTC()
	stored.CompletedAt = nil
	return nil
}

// Complete marks the checkpoint completed and stamps CompletedAt.
func (s *CheckpointStore) Complete(_ context.Context, syncType domain.SyncType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.data[syncType]
	if !ok {
		return storage.ErrNotFound
	}

	now := time.Now().UTC()
	stored.Status = domain.CheckpointCompleted
	stored.UpdatedAt = now
	stored.CompletedAt = &now
	return nil
}

// Fail marks the checkpoint failed, preserving LastProcessedIndex.
func (s *CheckpointStore) Fail(_ context.Context, syncType domain.SyncType, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.data[syncType]
	if !ok {
		return storage.ErrNotFound
	}

	stored.Status = domain.CheckpointFailed
	stored.UpdatedAt = time.Now().UTC()
	return nil
}
