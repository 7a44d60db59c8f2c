// Package reconcile applies canonical trades against storage without ever
// duplicating a record: create if absent, skip or update in place if present.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/normalize"
	"disclosure-sync/internal/storage"
)

// Outcome is the result of reconciling one record.
type Outcome struct {
	Action domain.ReconcileAction
	Trader *domain.Trader
	Trade  *domain.Trade
}

// Engine decides create/update/skip per canonical trade.
type Engine struct {
	traders storage.TraderStore
	tickers storage.TickerStore
	trades  storage.TradeStore
	logger  *log.Logger
}

// Options contains configuration for creating an Engine.
type Options struct {
	Traders storage.TraderStore
	Tickers storage.TickerStore
	Trades  storage.TradeStore
	Logger  *log.Logger
}

// New creates a new reconciliation engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		traders: opts.Traders,
		tickers: opts.Tickers,
		trades:  opts.Trades,
		logger:  logger,
	}
}

// Reconcile resolves the record's trader and ticker identities, then applies
// the decision table:
//
//	absent            -> create
//	present, !force   -> skip
//	present, force    -> update in place (identity key unchanged)
//
// Errors are returned to the caller for per-record accounting and never
// leave partial identity state behind: find-or-create is idempotent, so a
// retried record resolves to the same identities.
func (e *Engine) Reconcile(ctx context.Context, c *normalize.Canonical, forceUpdate bool) (*Outcome, error) {
	trader, err := e.traders.FindOrCreate(ctx, &c.Trader)
	if err != nil {
		return nil, fmt.Errorf("resolve trader %q: %w", c.Trader.DisplayName, err)
	}

	if _, err := e.tickers.FindOrCreate(ctx, c.Trade.Symbol, c.TickerName); err != nil {
		return nil, fmt.Errorf("resolve ticker %q: %w", c.Trade.Symbol, err)
	}

	trade := c.Trade
	trade.TraderID = trader.ID

	existing, err := e.trades.FindByIdentity(ctx, trade.Identity())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		created, err := e.trades.Insert(ctx, &trade)
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Identity race with another writer. Not expected under the
			// single-flight guard, but must not corrupt state: re-read and
			// treat as a skip.
			e.logger.Printf("identity conflict on insert %s/%s, treating as existing", trade.Symbol, trade.TransactionDate.Format("2006-01-02"))
			raced, ferr := e.trades.FindByIdentity(ctx, trade.Identity())
			if ferr != nil {
				return nil, fmt.Errorf("re-read after conflict: %w", ferr)
			}
			return &Outcome{Action: domain.ActionSkipped, Trader: trader, Trade: raced}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("create trade: %w", err)
		}
		return &Outcome{Action: domain.ActionCreated, Trader: trader, Trade: created}, nil

	case err != nil:
		return nil, fmt.Errorf("find existing trade: %w", err)
	}

	if !forceUpdate {
		return &Outcome{Action: domain.ActionSkipped, Trader: trader, Trade: existing}, nil
	}

	updated, err := e.trades.Update(ctx, existing.ID, &trade)
	if err != nil {
		return nil, fmt.Errorf("update trade: %w", err)
	}
	return &Outcome{Action: domain.ActionUpdated, Trader: trader, Trade: updated}, nil
}
