package clickhouse

import (
	"context"
	"fmt"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/storage"
)

// TradeActivityStore implements storage.TradeActivityStore using ClickHouse.
// The trade_activity table is append-only analytics data; duplicates from a
// re-run are acceptable and collapsed at query time.
type TradeActivityStore struct {
	conn *Conn
}

// NewTradeActivityStore creates a new TradeActivityStore.
func NewTradeActivityStore(conn *Conn) *TradeActivityStore {
	return &TradeActivityStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeActivityStore = (*TradeActivityStore)(nil)

// InsertBulk appends a batch of activity rows.
func (s *TradeActivityStore) InsertBulk(ctx context.Context, activities []*domain.TradeActivity) error {
	if len(activities) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_activity (
			sync_type, action, trader_name, symbol,
			transaction_type, transaction_date, estimated_value, recorded_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, a := range activities {
		err = batch.Append(
			string(a.SyncType),
			string(a.Action),
			a.TraderName,
			a.Symbol,
			string(a.TransactionType),
			a.TransactionDate,
			a.EstimatedValue,
			a.RecordedAt,
		)
		if err != nil {
			return fmt.Errorf("append activity row: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// CountByAction returns the number of activity rows per action, for
// reporting and tests.
func (s *TradeActivityStore) CountByAction(ctx context.Context, action domain.ReconcileAction) (uint64, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT count() FROM trade_activity WHERE action = ?
	`, string(action))

	var n uint64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
