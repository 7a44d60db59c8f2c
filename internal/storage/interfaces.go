package storage

import (
	"context"

	"disclosure-sync/internal/domain"
)

// TraderStore provides access to traders storage.
type TraderStore interface {
	// FindOrCreate resolves a trader by natural key (DisplayName, Kind),
	// creating it if absent. Repeat calls with the same key return the same
	// trader and never create a duplicate.
	FindOrCreate(ctx context.Context, t *domain.Trader) (*domain.Trader, error)

	// GetByID retrieves a trader by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id int64) (*domain.Trader, error)
}

// TickerStore provides access to tickers storage.
type TickerStore interface {
	// FindOrCreate resolves a ticker by symbol, creating it if absent.
	// Idempotent for a given symbol.
	FindOrCreate(ctx context.Context, symbol string, name *string) (*domain.Ticker, error)

	// GetBySymbol retrieves a ticker by symbol. Returns ErrNotFound if not exists.
	GetBySymbol(ctx context.Context, symbol string) (*domain.Ticker, error)
}

// TradeStore provides access to trades storage.
type TradeStore interface {
	// FindByIdentity retrieves the trade matching the identity key.
	// Returns ErrNotFound if no trade matches.
	FindByIdentity(ctx context.Context, key domain.IdentityKey) (*domain.Trade, error)

	// Insert adds a new trade. Returns ErrDuplicateKey if the identity key
	// already exists.
	Insert(ctx context.Context, t *domain.Trade) (*domain.Trade, error)

	// Update replaces the mutable fields of an existing trade in place.
	// The identity key never changes. Returns ErrNotFound if id is unknown.
	Update(ctx context.Context, id int64, t *domain.Trade) (*domain.Trade, error)

	// CountByTraderType returns the number of stored trades per trader type.
	CountByTraderType(ctx context.Context, traderType domain.TraderType) (int, error)
}

// CheckpointStore provides access to sync_checkpoints storage.
// Each sync type owns exactly one row, written by one syncer at a time.
type CheckpointStore interface {
	// Load returns the checkpoint for a sync type, creating a pending one
	// if none exists yet.
	Load(ctx context.Context, syncType domain.SyncType) (*domain.SyncCheckpoint, error)

	// Advance moves the checkpoint to in_progress and records progress.
	Advance(ctx context.Context, cp *domain.SyncCheckpoint) error

	// Complete marks the checkpoint completed and stamps CompletedAt.
	Complete(ctx context.Context, syncType domain.SyncType) error

	// Fail marks the checkpoint failed, preserving LastProcessedIndex for a
	// future resume.
	Fail(ctx context.Context, syncType domain.SyncType, reason string) error
}

// TradeActivityStore is the append-only analytics sink of reconciliation
// outcomes.
type TradeActivityStore interface {
	// InsertBulk appends a batch of activity rows.
	InsertBulk(ctx context.Context, activities []*domain.TradeActivity) error
}
