package postgres

import (
	"context"
	"fmt"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/storage"
)

// TradeStore is a PostgreSQL implementation of storage.TradeStore.
// The trades table carries a unique index over the identity key
// (trader_type, trader_id, symbol, transaction_date, transaction_type);
// that index is the sole invariant preventing duplicate ingestion.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new PostgreSQL trade store.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	id, trader_type, trader_id, symbol, transaction_date, transaction_type,
	amount_range, estimated_value, filing_date, raw_payload, created_at, updated_at
`

// FindByIdentity retrieves the trade matching the identity key.
func (s *TradeStore) FindByIdentity(ctx context.Context, key domain.IdentityKey) (*domain.Trade, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE trader_type = $1
		  AND trader_id = $2
		  AND symbol = $3
		  AND transaction_date = $4
		  AND transaction_type = $5
	`, key.TraderType, key.TraderID, key.Symbol, key.TransactionDate, key.TransactionType)

	var t domain.Trade
	err := row.Scan(&t.ID, &t.TraderType, &t.TraderID, &t.Symbol, &t.TransactionDate,
		&t.TransactionType, &t.AmountRange, &t.EstimatedValue, &t.FilingDate,
		&t.RawPayload, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	return &t, nil
}

// Insert adds a new trade. Returns ErrDuplicateKey if the identity exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) (*domain.Trade, error) {
	if t == nil || t.Symbol == "" || t.TraderID == 0 {
		return nil, storage.ErrInvalidInput
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO trades (
			trader_type, trader_id, symbol, transaction_date, transaction_type,
			amount_range, estimated_value, filing_date, raw_payload
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+tradeColumns+`
	`, t.TraderType, t.TraderID, t.Symbol, t.TransactionDate, t.TransactionType,
		t.AmountRange, t.EstimatedValue, t.FilingDate, t.RawPayload)

	var created domain.Trade
	err := row.Scan(&created.ID, &created.TraderType, &created.TraderID, &created.Symbol,
		&created.TransactionDate, &created.TransactionType, &created.AmountRange,
		&created.EstimatedValue, &created.FilingDate, &created.RawPayload,
		&created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, storage.ErrDuplicateKey
		}
		return nil, fmt.Errorf("insert trade: %w", err)
	}

	return &created, nil
}

// Update replaces the mutable fields of an existing trade in place. The
// identity key columns are never touched.
func (s *TradeStore) Update(ctx context.Context, id int64, t *domain.Trade) (*domain.Trade, error) {
	if t == nil {
		return nil, storage.ErrInvalidInput
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE trades
		SET amount_range = $2,
		    estimated_value = $3,
		    filing_date = $4,
		    raw_payload = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+tradeColumns+`
	`, id, t.AmountRange, t.EstimatedValue, t.FilingDate, t.RawPayload)

	var updated domain.Trade
	err := row.Scan(&updated.ID, &updated.TraderType, &updated.TraderID, &updated.Symbol,
		&updated.TransactionDate, &updated.TransactionType, &updated.AmountRange,
		&updated.EstimatedValue, &updated.FilingDate, &updated.RawPayload,
		&updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("update trade: %w", err)
	}

	return &updated, nil
}

// CountByTraderType returns the number of stored trades per trader type.
func (s *TradeStore) CountByTraderType(ctx context.Context, traderType domain.TraderType) (int, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM trades WHERE trader_type = $1
	`, traderType)

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
