package memory

import (
	"context"
	"errors"
	"testing"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/storage"
)

func TestTraderStore_FindOrCreate(t *testing.T) {
	store := NewTraderStore()
	ctx := context.Background()

	created, err := store.FindOrCreate(ctx, &domain.Trader{
		DisplayName: "Jane Doe",
		Kind:        domain.KindSenate,
	})
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected an assigned ID")
	}

	again, err := store.FindOrCreate(ctx, &domain.Trader{
		DisplayName: "Jane Doe",
		Kind:        domain.KindSenate,
	})
	if err != nil {
		t.Fatalf("FindOrCreate (2) failed: %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("repeat resolution created a new trader: %d vs %d", again.ID, created.ID)
	}

	// Same name, different kind is a different trader.
	other, err := store.FindOrCreate(ctx, &domain.Trader{
		DisplayName: "Jane Doe",
		Kind:        domain.KindInsider,
	})
	if err != nil {
		t.Fatalf("FindOrCreate (3) failed: %v", err)
	}
	if other.ID == created.ID {
		t.Error("kind must be part of the trader identity")
	}
}

func TestTraderStore_GetByID(t *testing.T) {
	store := NewTraderStore()
	ctx := context.Background()

	created, err := store.FindOrCreate(ctx, &domain.Trader{
		DisplayName: "John Smith",
		Kind:        domain.KindHouse,
	})
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.DisplayName != "John Smith" {
		t.Errorf("DisplayName mismatch: %q", got.DisplayName)
	}

	if _, err := store.GetByID(ctx, 999); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTickerStore_FindOrCreate(t *testing.T) {
	store := NewTickerStore()
	ctx := context.Background()

	name := "Apple Inc"
	created, err := store.FindOrCreate(ctx, "AAPL", &name)
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}

	// The first-seen name sticks.
	other := "Apple Computer"
	again, err := store.FindOrCreate(ctx, "AAPL", &other)
	if err != nil {
		t.Fatalf("FindOrCreate (2) failed: %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("repeat resolution created a new ticker: %d vs %d", again.ID, created.ID)
	}
	if again.Name == nil || *again.Name != "Apple Inc" {
		t.Errorf("first-seen name should be kept, got %v", again.Name)
	}

	if _, err := store.FindOrCreate(ctx, "", nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := store.GetBySymbol(ctx, "NOPE"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
