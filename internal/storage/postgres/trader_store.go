package postgres

import (
	"context"
	"fmt"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/storage"
)

// TraderStore is a PostgreSQL implementation of storage.TraderStore.
type TraderStore struct {
	pool *Pool
}

// NewTraderStore creates a new PostgreSQL trader store.
func NewTraderStore(pool *Pool) *TraderStore {
	return &TraderStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TraderStore = (*TraderStore)(nil)

// FindOrCreate resolves a trader by (display_name, kind), creating it if
// absent. ON CONFLICT DO NOTHING plus a re-read makes repeat calls return
// the same row even when two writers race.
func (s *TraderStore) FindOrCreate(ctx context.Context, t *domain.Trader) (*domain.Trader, error) {
	if t == nil || t.DisplayName == "" || t.Kind == "" {
		return nil, storage.ErrInvalidInput
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO traders (display_name, kind, state_code, district)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (display_name, kind) DO NOTHING
		RETURNING id, display_name, kind, state_code, district, created_at
	`, t.DisplayName, t.Kind, t.StateCode, t.District)

	var created domain.Trader
	err := row.Scan(&created.ID, &created.DisplayName, &created.Kind,
		&created.StateCode, &created.District, &created.CreatedAt)
	if err == nil {
		return &created, nil
	}
	if !isNotFoundError(err) {
		return nil, fmt.Errorf("insert trader: %w", err)
	}

	// Conflict: the trader already exists, read it back.
	row = s.pool.QueryRow(ctx, `
		SELECT id, display_name, kind, state_code, district, created_at
		FROM traders
		WHERE display_name = $1 AND kind = $2
	`, t.DisplayName, t.Kind)

	var found domain.Trader
	err = row.Scan(&found.ID, &found.DisplayName, &found.Kind,
		&found.StateCode, &found.District, &found.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("select trader: %w", err)
	}

	return &found, nil
}

// GetByID retrieves a trader by ID. Returns ErrNotFound if not exists.
func (s *TraderStore) GetByID(ctx context.Context, id int64) (*domain.Trader, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, display_name, kind, state_code, district, created_at
		FROM traders
		WHERE id = $1
	`, id)

	var t domain.Trader
	err := row.Scan(&t.ID, &t.DisplayName, &t.Kind, &t.StateCode, &t.District, &t.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	return &t, nil
}
