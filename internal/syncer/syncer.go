// Package syncer drives full sync runs: fetch each source, reconcile every
// record, keep the checkpoint current, and aggregate the results.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/fmp"
	"disclosure-sync/internal/ingestion"
	"disclosure-sync/internal/observability"
	"disclosure-sync/internal/reconcile"
	"disclosure-sync/internal/storage"
)

// ErrSyncInProgress is returned when Run is called while another run is
// still active. One orchestrator instance owns the checkpoints; concurrent
// runs would break that ownership.
var ErrSyncInProgress = errors.New("syncer: sync already in progress")

// DefaultBatchSize is the checkpoint write cadence in records.
const DefaultBatchSize = 100

// ProgressFunc is invoked synchronously once per processed record.
type ProgressFunc func(current, total int, sourceLabel string)

// RunOptions controls one sync run.
type RunOptions struct {
	ForceUpdate    bool // update existing records in place instead of skipping
	UseCheckpoints bool
	BatchSize      int // checkpoint write cadence, default 100
	Progress       ProgressFunc
}

// Syncer coordinates sources sequentially. Sources are never synced
// concurrently: the dispatcher's rate windows are global, so parallel
// sources would only contend for the same serialized queue.
type Syncer struct {
	sources     []ingestion.Source
	engine      *reconcile.Engine
	checkpoints storage.CheckpointStore
	activity    storage.TradeActivityStore
	logger      *log.Logger

	running atomic.Bool
	stop    atomic.Bool
}

// Options contains configuration for creating a Syncer.
type Options struct {
	Sources     []ingestion.Source
	Engine      *reconcile.Engine
	Checkpoints storage.CheckpointStore
	Activity    storage.TradeActivityStore // optional analytics sink
	Logger      *log.Logger
}

// New creates a new Syncer.
func New(opts Options) *Syncer {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Syncer{
		sources:     opts.Sources,
		engine:      opts.Engine,
		checkpoints: opts.Checkpoints,
		activity:    opts.Activity,
		logger:      logger,
	}
}

// ForceStop requests a cooperative stop. It is observed between records,
// never mid-network-call.
func (s *Syncer) ForceStop() {
	s.stop.Store(true)
}

// Run executes one full sync over all sources and returns the aggregate
// result. A second concurrent call returns ErrSyncInProgress.
func (s *Syncer) Run(ctx context.Context, opts RunOptions) (*domain.SyncResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)
	s.stop.Store(false)

	start := time.Now()
	agg := &domain.SyncResult{Success: true}

	for _, src := range s.sources {
		res, fetchErr := s.runSource(ctx, src, opts)
		agg.Merge(res)

		// A bad key fails every source the same way; stop the run here.
		var apiErr *fmp.APIError
		if errors.As(fetchErr, &apiErr) && apiErr.IsAuth() {
			s.logger.Printf("authentication failed, aborting run: %v", fetchErr)
			agg.Success = false
			break
		}

		if ctx.Err() != nil || s.stop.Load() {
			agg.Success = false
			break
		}
	}

	agg.Duration = time.Since(start)

	status := "success"
	if !agg.Success {
		status = "failure"
	}
	observability.RecordSyncRun(status)

	s.logger.Printf("sync complete: success=%v processed=%d created=%d updated=%d skipped=%d errors=%d in %v",
		agg.Success, agg.ProcessedCount, agg.CreatedCount, agg.UpdatedCount, agg.SkippedCount,
		len(agg.Errors), agg.Duration)

	return agg, nil
}

// runSource syncs one feed end to end. The second return is the fetch
// error, if any, so Run can classify it; it is already recorded in the
// result's Errors.
func (s *Syncer) runSource(ctx context.Context, src ingestion.Source, opts RunOptions) (*domain.SyncResult, error) {
	label := src.Label()
	syncType := src.SyncType()
	srcStart := time.Now()
	res := &domain.SyncResult{Success: true}

	batch, err := src.FetchAll(ctx)
	if batch != nil {
		res.PagesFailed = batch.Stats.PagesFailed
	}
	if err != nil {
		s.logger.Printf("%s: fetch failed: %v", label, err)
		res.Success = false
		res.Errors = append(res.Errors, domain.SyncError{
			Source:  syncType,
			Index:   -1,
			Message: fmt.Sprintf("fetch: %v", err),
		})
		s.failCheckpoint(ctx, syncType, opts, err.Error())
		return res, err
	}

	records := batch.Records
	total := len(records)
	s.logger.Printf("%s: fetched %d records over %d pages (%d failed)",
		label, total, batch.Stats.PagesFetched, batch.Stats.PagesFailed)

	// Resume from the checkpoint when the previous run did not complete.
	// Counts are carried forward so a resumed run reports the same final
	// aggregates as an uninterrupted one.
	startIndex := 0
	cp := &domain.SyncCheckpoint{SyncType: syncType, LastProcessedIndex: -1}
	if opts.UseCheckpoints && s.checkpoints != nil {
		loaded, err := s.checkpoints.Load(ctx, syncType)
		if err != nil {
			s.logger.Printf("%s: checkpoint load failed: %v", label, err)
			res.Success = false
			res.Errors = append(res.Errors, domain.SyncError{
				Source:  syncType,
				Index:   -1,
				Message: fmt.Sprintf("checkpoint load: %v", err),
			})
			return res, nil
		}
		if loaded.Resumable() {
			cp = loaded
			startIndex = loaded.LastProcessedIndex + 1
			if startIndex > total {
				// Source shrank between runs. Clamp instead of erroring.
				s.logger.Printf("%s: checkpoint index %d beyond %d fetched records, clamping",
					label, loaded.LastProcessedIndex, total)
				startIndex = total
			}
			res.ProcessedCount = startIndex
			res.CreatedCount = loaded.CreatedCount
			res.UpdatedCount = loaded.UpdatedCount
			res.SkippedCount = loaded.SkippedCount
			s.logger.Printf("%s: resuming from index %d", label, startIndex)
		}
	}
	cp.TotalRecords = total

	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}

	var activities []*domain.TradeActivity
	stopped := false

	for i := startIndex; i < total; i++ {
		if s.stop.Load() || ctx.Err() != nil {
			stopped = true
			break
		}

		rec := records[i]
		res.ProcessedCount++

		outcome, err := s.processRecord(ctx, rec, opts.ForceUpdate)
		if err != nil {
			res.Errors = append(res.Errors, domain.SyncError{
				Source:  syncType,
				Index:   i,
				Message: err.Error(),
			})
			cp.ErrorCount++
			observability.RecordRecordError(label)
		} else {
			switch outcome.Action {
			case domain.ActionCreated:
				res.CreatedCount++
				cp.CreatedCount = res.CreatedCount
			case domain.ActionUpdated:
				res.UpdatedCount++
				cp.UpdatedCount = res.UpdatedCount
			case domain.ActionSkipped:
				res.SkippedCount++
				cp.SkippedCount = res.SkippedCount
			}
			observability.RecordTradeAction(label, string(outcome.Action))

			if s.activity != nil {
				activities = append(activities, activityFor(syncType, outcome))
			}
		}

		cp.LastProcessedIndex = i

		if opts.Progress != nil {
			opts.Progress(i+1, total, label)
		}

		if opts.UseCheckpoints && s.checkpoints != nil && (i-startIndex+1)%batchSize == 0 {
			s.advanceCheckpoint(ctx, cp, label)
		}
	}

	s.flushActivity(ctx, label, activities)

	if opts.UseCheckpoints && s.checkpoints != nil {
		s.advanceCheckpoint(ctx, cp, label)
		if stopped {
			// Leave the checkpoint in_progress for a future resume.
			s.logger.Printf("%s: stopped at index %d of %d", label, cp.LastProcessedIndex, total)
		} else {
			if err := s.checkpoints.Complete(ctx, syncType); err != nil {
				s.logger.Printf("%s: checkpoint complete failed: %v", label, err)
			}
			observability.RecordCheckpointWrite(string(syncType))
		}
	}

	if stopped {
		res.Success = false
	}

	observability.RecordSourceSync(label, time.Since(srcStart).Seconds(), res.Success, time.Now().Unix())
	return res, nil
}

// processRecord normalizes and reconciles one record in isolation. One bad
// record must never abort a batch of thousands.
func (s *Syncer) processRecord(ctx context.Context, rec ingestion.Record, forceUpdate bool) (*reconcile.Outcome, error) {
	canonical, err := rec.Normalize()
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return s.engine.Reconcile(ctx, canonical, forceUpdate)
}

func (s *Syncer) advanceCheckpoint(ctx context.Context, cp *domain.SyncCheckpoint, label string) {
	if err := s.checkpoints.Advance(ctx, cp); err != nil {
		// A missed advance only widens the resume window; the run goes on.
		s.logger.Printf("%s: checkpoint advance failed: %v", label, err)
		return
	}
	observability.RecordCheckpointWrite(string(cp.SyncType))
}

func (s *Syncer) failCheckpoint(ctx context.Context, syncType domain.SyncType, opts RunOptions, reason string) {
	if !opts.UseCheckpoints || s.checkpoints == nil {
		return
	}
	if _, err := s.checkpoints.Load(ctx, syncType); err != nil {
		return
	}
	if err := s.checkpoints.Fail(ctx, syncType, reason); err != nil {
		s.logger.Printf("%s: checkpoint fail-mark failed: %v", syncType, err)
	}
}

func (s *Syncer) flushActivity(ctx context.Context, label string, activities []*domain.TradeActivity) {
	if s.activity == nil || len(activities) == 0 {
		return
	}
	if err := s.activity.InsertBulk(ctx, activities); err != nil {
		s.logger.Printf("%s: activity flush failed: %v", label, err)
	}
}

func activityFor(syncType domain.SyncType, outcome *reconcile.Outcome) *domain.TradeActivity {
	t := outcome.Trade
	return &domain.TradeActivity{
		SyncType:        syncType,
		Action:          outcome.Action,
		TraderName:      outcome.Trader.DisplayName,
		Symbol:          t.Symbol,
		TransactionType: t.TransactionType,
		TransactionDate: t.TransactionDate,
		EstimatedValue:  t.EstimatedValue,
		RecordedAt:      time.Now().UTC(),
	}
}
