package memory

import (
	"context"
	"sync"

	"disclosure-sync/internal/domain"
)

// TradeActivityStore is an in-memory implementation of
// storage.TradeActivityStore, mainly for tests and -use-memory runs.
type TradeActivityStore struct {
	mu   sync.Mutex
	rows []*domain.TradeActivity
}

// NewTradeActivityStore creates a new in-memory activity store.
func NewTradeActivityStore() *TradeActivityStore {
	return &TradeActivityStore{}
}

// InsertBulk appends a batch of activity rows.
func (s *TradeActivityStore) InsertBulk(_ context.Context, activities []*domain.TradeActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range activities {
		row := *a
		s.rows = append(s.rows, &row)
	}
	return nil
}

// All returns a copy of every stored row, in insertion order.
func (s *TradeActivityStore) All() []*domain.TradeActivity {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.TradeActivity, len(s.rows))
	for i, r := range s.rows {
		row := *r
		out[i] = &row
	}
	return out
}
