package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/storage"
)

// seedTrader satisfies the trades.trader_id foreign key.
func seedTrader(t *testing.T, pool *Pool, name string, kind domain.TraderKind) *domain.Trader {
	t.Helper()
	trader, err := NewTraderStore(pool).FindOrCreate(context.Background(), &domain.Trader{
		DisplayName: name,
		Kind:        kind,
	})
	require.NoError(t, err)
	return trader
}

func testTrade(traderID int64) *domain.Trade {
	return &domain.Trade{
		TraderType:      domain.TraderCongressional,
		TraderID:        traderID,
		Symbol:          "AAPL",
		TransactionDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		TransactionType: domain.TransactionBuy,
		AmountRange:     "$1,001 - $15,000",
		EstimatedValue:  ptr(8000.5),
		RawPayload:      []byte(`{"symbol":"AAPL"}`),
	}
}

func TestTradeStore_InsertAndFindByIdentity(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()
	trader := seedTrader(t, pool, "Jane Doe", domain.KindSenate)

	created, err := store.Insert(ctx, testTrade(trader.ID))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "$1,001 - $15,000", created.AmountRange)
	require.NotNil(t, created.EstimatedValue)
	assert.Equal(t, 8000.5, *created.EstimatedValue)
	assert.NotZero(t, created.CreatedAt)

	found, err := store.FindByIdentity(ctx, created.Identity())
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.JSONEq(t, `{"symbol":"AAPL"}`, string(found.RawPayload))

	// A different transaction date is a different identity.
	other := created.Identity()
	other.TransactionDate = time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	_, err = store.FindByIdentity(ctx, other)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestTradeStore_IdentityUniqueIndex(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()
	trader := seedTrader(t, pool, "Jane Doe", domain.KindSenate)

	_, err := store.Insert(ctx, testTrade(trader.ID))
	require.NoError(t, err)

	// Same identity, different amount: the unique index must reject it.
	dup := testTrade(trader.ID)
	dup.AmountRange = "$15,001 - $50,000"
	_, err = store.Insert(ctx, dup)
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey))
}

func TestTradeStore_UpdateMutableFieldsOnly(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()
	trader := seedTrader(t, pool, "Jane Doe", domain.KindSenate)

	created, err := store.Insert(ctx, testTrade(trader.ID))
	require.NoError(t, err)

	amended := testTrade(trader.ID)
	amended.AmountRange = "$15,001 - $50,000"
	amended.EstimatedValue = ptr(32500.5)
	amended.FilingDate = ptr(time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))

	updated, err := store.Update(ctx, created.ID, amended)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "$15,001 - $50,000", updated.AmountRange)
	require.NotNil(t, updated.FilingDate)

	// Identity columns survive the update.
	assert.Equal(t, created.Symbol, updated.Symbol)
	assert.Equal(t, created.TraderID, updated.TraderID)
	assert.True(t, created.TransactionDate.Equal(updated.TransactionDate))

	_, err = store.Update(ctx, 999999, amended)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestTradeStore_CountByTraderType(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()
	congress := seedTrader(t, pool, "Jane Doe", domain.KindSenate)
	insider := seedTrader(t, pool, "HUANG JEN HSUN", domain.KindInsider)

	_, err := store.Insert(ctx, testTrade(congress.ID))
	require.NoError(t, err)

	corporate := testTrade(insider.ID)
	corporate.TraderType = domain.TraderCorporate
	corporate.Symbol = "NVDA"
	_, err = store.Insert(ctx, corporate)
	require.NoError(t, err)

	n, err := store.CountByTraderType(ctx, domain.TraderCongressional)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.CountByTraderType(ctx, domain.TraderCorporate)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
