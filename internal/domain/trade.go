package domain

import "time"

// TraderType distinguishes who filed the disclosure.
type TraderType string

const (
	TraderCongressional TraderType = "congressional"
	TraderCorporate     TraderType = "corporate"
)

// TransactionType is the normalized direction of a disclosed transaction.
type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
	// TransactionExchange is the catch-all for everything that is neither a
	// purchase nor a sale (exchanges, received, partial dispositions).
	TransactionExchange TransactionType = "exchange"
)

// Trade is the canonical representation of one disclosed transaction.
// Corresponds to the trades table in PostgreSQL.
type Trade struct {
	ID              int64           // BIGSERIAL primary key
	TraderType      TraderType      // congressional | corporate
	TraderID        int64           // FK to traders
	Symbol          string          // ticker symbol, FK to tickers
	TransactionDate time.Time       // date precision, UTC
	TransactionType TransactionType // buy | sell | exchange
	AmountRange     string          // free-text range as disclosed
	EstimatedValue  *float64        // midpoint of the range, nil if unparseable
	FilingDate      *time.Time      // disclosure/filing date (nullable)
	RawPayload      []byte          // original provider record (JSON, kept for audit)
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IdentityKey uniquely identifies one trade for deduplication.
// No two stored trades may share the same key.
type IdentityKey struct {
	TraderType      TraderType
	TraderID        int64
	Symbol          string
	TransactionDate time.Time
	TransactionType TransactionType
}

// Identity returns the trade's identity key.
func (t *Trade) Identity() IdentityKey {
	return IdentityKey{
		TraderType:      t.TraderType,
		TraderID:        t.TraderID,
		Symbol:          t.Symbol,
		TransactionDate: t.TransactionDate,
		TransactionType: t.TransactionType,
	}
}
