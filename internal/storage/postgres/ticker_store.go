package postgres

import (
	"context"
	"fmt"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/storage"
)

// TickerStore is a PostgreSQL implementation of storage.TickerStore.
type TickerStore struct {
	pool *Pool
}

// NewTickerStore creates a new PostgreSQL ticker store.
func NewTickerStore(pool *Pool) *TickerStore {
	return &TickerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TickerStore = (*TickerStore)(nil)

// FindOrCreate resolves a ticker by symbol, creating it if absent.
func (s *TickerStore) FindOrCreate(ctx context.Context, symbol string, name *string) (*domain.Ticker, error) {
	if symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO tickers (symbol, name)
		VALUES ($1, $2)
		ON CONFLICT (symbol) DO NOTHING
		RETURNING id, symbol, name, created_at
	`, symbol, name)

	var created domain.Ticker
	err := row.Scan(&created.ID, &created.Symbol, &created.Name, &created.CreatedAt)
	if err == nil {
		return &created, nil
	}
	if !isNotFoundError(err) {
		return nil, fmt.Errorf("insert ticker: %w", err)
	}

	return s.GetBySymbol(ctx, symbol)
}

// GetBySymbol retrieves a ticker by symbol. Returns ErrNotFound if not exists.
func (s *TickerStore) GetBySymbol(ctx context.Context, symbol string) (*domain.Ticker, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, symbol, name, created_at
		FROM tickers
		WHERE symbol = $1
	`, symbol)

	var t domain.Ticker
	err := row.Scan(&t.ID, &t.Symbol, &t.Name, &t.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	return &t, nil
}
