package memory

import (
	"context"
	"errors"
	"testing"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/storage"
)

func TestCheckpointStore_LoadSeedsPending(t *testing.T) {
	store := NewCheckpointStore()
	ctx := context.Background()

	cp, err := store.Load(ctx, domain.SyncSenate)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cp.Status != domain.CheckpointPending {
		t.Errorf("status = %s, want pending", cp.Status)
	}
	if cp.LastProcessedIndex != -1 {
		t.Errorf("LastProcessedIndex = %d, want -1", cp.LastProcessedIndex)
	}
	if cp.Resumable() {
		t.Error("pending checkpoint should not be resumable")
	}
}

func TestCheckpointStore_Lifecycle(t *testing.T) {
	store := NewCheckpointStore()
	ctx := context.Background()

	if _, err := store.Load(ctx, domain.SyncHouse); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	err := store.Advance(ctx, &domain.SyncCheckpoint{
		SyncType:           domain.SyncHouse,
		LastProcessedIndex: 149,
		TotalRecords:       400,
		CreatedCount:       120,
	})
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	cp, _ := store.Load(ctx, domain.SyncHouse)
	if cp.Status != domain.CheckpointInProgress {
		t.Errorf("status = %s, want in_progress", cp.Status)
	}
	if !cp.Resumable() {
		t.Error("in_progress checkpoint should be resumable")
	}
	if cp.LastProcessedIndex != 149 || cp.CreatedCount != 120 {
		t.Errorf("progress not recorded: %+v", cp)
	}

	if err := store.Complete(ctx, domain.SyncHouse); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	cp, _ = store.Load(ctx, domain.SyncHouse)
	if cp.Status != domain.CheckpointCompleted || cp.CompletedAt == nil {
		t.Errorf("completion not recorded: %+v", cp)
	}

	// Re-advancing clears completion for the next run.
	if err := store.Advance(ctx, &domain.SyncCheckpoint{SyncType: domain.SyncHouse, LastProcessedIndex: 5}); err != nil {
		t.Fatalf("Advance after complete failed: %v", err)
	}
	cp, _ = store.Load(ctx, domain.SyncHouse)
	if cp.CompletedAt != nil {
		t.Error("CompletedAt should be cleared on re-advance")
	}
}

func TestCheckpointStore_FailPreservesProgress(t *testing.T) {
	store := NewCheckpointStore()
	ctx := context.Background()

	if _, err := store.Load(ctx, domain.SyncInsiders); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := store.Advance(ctx, &domain.SyncCheckpoint{SyncType: domain.SyncInsiders, LastProcessedIndex: 75}); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if err := store.Fail(ctx, domain.SyncInsiders, "gateway timeout"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	cp, _ := store.Load(ctx, domain.SyncInsiders)
	if cp.Status != domain.CheckpointFailed {
		t.Errorf("status = %s, want failed", cp.Status)
	}
	if cp.LastProcessedIndex != 75 {
		t.Errorf("failure must preserve progress, got %d", cp.LastProcessedIndex)
	}
	if !cp.Resumable() {
		t.Error("failed checkpoint should be resumable")
	}
}

func TestCheckpointStore_UnknownSyncType(t *testing.T) {
	store := NewCheckpointStore()
	ctx := context.Background()

	if err := store.Advance(ctx, &domain.SyncCheckpoint{SyncType: "unknown"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Complete(ctx, "unknown"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Load(ctx, ""); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
