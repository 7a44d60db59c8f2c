package domain

import "time"

// TraderKind identifies the disclosure source a trader belongs to.
type TraderKind string

const (
	KindSenate  TraderKind = "senate"
	KindHouse   TraderKind = "house"
	KindInsider TraderKind = "insider"
)

// Trader is a person who filed disclosures: a member of Congress or a
// corporate insider. Natural key is (DisplayName, Kind); find-or-create
// against that key must never produce a second row.
type Trader struct {
	ID          int64      // BIGSERIAL primary key
	DisplayName string     // "First Last" for Congress, reported name for insiders
	Kind        TraderKind // senate | house | insider
	StateCode   *string    // two-letter state code (congressional only)
	District    *int       // House district number (House only)
	CreatedAt   time.Time
}

// Ticker is a traded instrument referenced by disclosures.
// Natural key is Symbol.
type Ticker struct {
	ID        int64   // BIGSERIAL primary key
	Symbol    string  // unique
	Name      *string // best-known name, nullable
	CreatedAt time.Time
}
