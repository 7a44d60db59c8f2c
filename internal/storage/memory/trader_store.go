package memory

import (
	"context"
	"sync"
	"time"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/storage"
)

type traderKey struct {
	name string
	kind domain.TraderKind
}

// TraderStore is an in-memory implementation of storage.TraderStore.
type TraderStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*domain.Trader
	byKey  map[traderKey]int64
}

// NewTraderStore creates a new in-memory trader store.
func NewTraderStore() *TraderStore {
	return &TraderStore{
		nextID: 1,
		byID:   make(map[int64]*domain.Trader),
		byKey:  make(map[traderKey]int64),
	}
}

// FindOrCreate resolves a trader by (DisplayName, Kind), creating if absent.
func (s *TraderStore) FindOrCreate(_ context.Context, t *domain.Trader) (*domain.Trader, error) {
	if t == nil || t.DisplayName == "" || t.Kind == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := traderKey{name: t.DisplayName, kind: t.Kind}
	if id, ok := s.byKey[key]; ok {
		found := *s.byID[id]
		return &found, nil
	}

	created := *t
	created.ID = s.nextID
	created.CreatedAt = time.Now().UTC()
	s.nextID++

	s.byID[created.ID] = &created
	s.byKey[key] = created.ID

	out := created
	return &out, nil
}

// GetByID retrieves a trader by ID. Returns ErrNotFound if not exists.
func (s *TraderStore) GetByID(_ context.Context, id int64) (*domain.Trader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	found := *t
	return &found, nil
}
