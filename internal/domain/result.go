package domain

import (
	"fmt"
	"time"
)

// ReconcileAction is the outcome of reconciling one canonical trade.
type ReconcileAction string

const (
	ActionCreated ReconcileAction = "created"
	ActionUpdated ReconcileAction = "updated"
	ActionSkipped ReconcileAction = "skipped"
)

// SyncError records one failed record with enough context to find it again.
type SyncError struct {
	Source  SyncType // which feed the record came from
	Index   int      // position within the fetched record set
	Message string
}

func (e SyncError) Error() string {
	return fmt.Sprintf("%s[%d]: %s", e.Source, e.Index, e.Message)
}

// SyncResult aggregates one orchestrator run. Ephemeral: returned to the
// caller, never persisted beyond the checkpoint's counts.
type SyncResult struct {
	Success        bool
	ProcessedCount int // records attempted (including failed ones)
	CreatedCount   int
	UpdatedCount   int
	SkippedCount   int
	PagesFailed    int
	Errors         []SyncError
	Duration       time.Duration
}

// Merge folds a per-source result into the aggregate.
func (r *SyncResult) Merge(other *SyncResult) {
	r.ProcessedCount += other.ProcessedCount
	r.CreatedCount += other.CreatedCount
	r.UpdatedCount += other.UpdatedCount
	r.SkippedCount += other.SkippedCount
	r.PagesFailed += other.PagesFailed
	r.Errors = append(r.Errors, other.Errors...)
	if !other.Success {
		r.Success = false
	}
}

// TradeActivity is one reconciliation outcome, appended to the analytics
// sink. Corresponds to the trade_activity table in ClickHouse.
type TradeActivity struct {
	SyncType        SyncType
	Action          ReconcileAction
	TraderName      string
	Symbol          string
	TransactionType TransactionType
	TransactionDate time.Time
	EstimatedValue  *float64
	RecordedAt      time.Time
}
