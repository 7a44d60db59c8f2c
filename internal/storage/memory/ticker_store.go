package memory

import (
	"context"
	"sync"
	"time"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/storage"
)

// TickerStore is an in-memory implementation of storage.TickerStore.
type TickerStore struct {
	mu       sync.RWMutex
	nextID   int64
	bySymbol map[string]*domain.Ticker
}

// NewTickerStore creates a new in-memory ticker store.
func NewTickerStore() *TickerStore {
	return &TickerStore{
		nextID:   1,
		bySymbol: make(map[string]*domain.Ticker),
	}
}

// FindOrCreate resolves a ticker by symbol, creating if absent.
func (s *TickerStore) FindOrCreate(_ context.Context, symbol string, name *string) (*domain.Ticker, error) {
	if symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.bySymbol[symbol]; ok {
		found := *t
		return &found, nil
	}

	created := domain.Ticker{
		ID:        s.nextID,
		Symbol:    symbol,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.bySymbol[symbol] = &created

	out := created
	return &out, nil
}

// GetBySymbol retrieves a ticker by symbol. Returns ErrNotFound if not exists.
func (s *TickerStore) GetBySymbol(_ context.Context, symbol string) (*domain.Ticker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.bySymbol[symbol]
	if !ok {
		return nil, storage.ErrNotFound
	}
	found := *t
	return &found, nil
}
