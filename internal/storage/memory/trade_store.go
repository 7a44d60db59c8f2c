package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/storage"
)

// identityString flattens the identity key for map lookup. Dates compare at
// day precision, matching the unique index in PostgreSQL.
func identityString(k domain.IdentityKey) string {
	return fmt.Sprintf("%s|%d|%s|%s|%s",
		k.TraderType, k.TraderID, k.Symbol,
		k.TransactionDate.Format("2006-01-02"), k.TransactionType)
}

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu         sync.RWMutex
	nextID     int64
	byID       map[int64]*domain.Trade
	byIdentity map[string]int64
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		nextID:     1,
		byID:       make(map[int64]*domain.Trade),
		byIdentity: make(map[string]int64),
	}
}

// FindByIdentity retrieves the trade matching the identity key.
func (s *TradeStore) FindByIdentity(_ context.Context, key domain.IdentityKey) (*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byIdentity[identityString(key)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	found := *s.byID[id]
	return &found, nil
}

// Insert adds a new trade. Returns ErrDuplicateKey if the identity exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.Trade) (*domain.Trade, error) {
	if t == nil || t.Symbol == "" || t.TraderID == 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := identityString(t.Identity())
	if _, exists := s.byIdentity[key]; exists {
		return nil, storage.ErrDuplicateKey
	}

	now := time.Now().UTC()
	created := *t
	created.ID = s.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	s.nextID++

	s.byID[created.ID] = &created
	s.byIdentity[key] = created.ID

	out := created
	return &out, nil
}

// Update replaces the mutable fields of an existing trade in place.
func (s *TradeStore) Update(_ context.Context, id int64, t *domain.Trade) (*domain.Trade, error) {
	if t == nil {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	updated := *existing
	updated.AmountRange = t.AmountRange
	updated.EstimatedValue = t.EstimatedValue
	updated.FilingDate = t.FilingDate
	updated.RawPayload = t.RawPayload
	updated.UpdatedAt = time.Now().UTC()

	s.byID[id] = &updated

	out := updated
	return &out, nil
}

// CountByTraderType returns the number of stored trades per trader type.
func (s *TradeStore) CountByTraderType(_ context.Context, traderType domain.TraderType) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, t := range s.byID {
		if t.TraderType == traderType {
			n++
		}
	}
	return n, nil
}
