// Package ingestion crawls the provider's paginated list endpoints and
// exposes each feed as a Source of normalizable records.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"

	"disclosure-sync/internal/fmp"
	"disclosure-sync/internal/observability"
)

// PagePolicy controls what a page-level fetch error does to the crawl.
type PagePolicy string

const (
	// PagePolicySkip logs the failed page and continues to the next page
	// index. Maximizes data captured per run but can under-fetch; failed
	// pages are always counted and surfaced in the stats.
	PagePolicySkip PagePolicy = "skip"

	// PagePolicyAbort stops the crawl at the first failed page.
	PagePolicyAbort PagePolicy = "abort"
)

// PageStats reports the outcome of one crawl.
type PageStats struct {
	PagesFetched int
	PagesFailed  int
}

// Default crawl configuration.
const (
	DefaultMaxPages = 20
	DefaultPageSize = fmp.MaxPageLimit
)

// Fetcher crawls one list endpoint page by page through the dispatcher.
type Fetcher struct {
	client   *fmp.Client
	maxPages int
	pageSize int
	policy   PagePolicy
	logger   *log.Logger
}

// FetcherOptions contains configuration for creating a Fetcher.
type FetcherOptions struct {
	Client   *fmp.Client
	MaxPages int
	PageSize int
	Policy   PagePolicy
	Logger   *log.Logger
}

// NewFetcher creates a new paged fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	maxPages := opts.MaxPages
	if maxPages == 0 {
		maxPages = DefaultMaxPages
	}

	pageSize := opts.PageSize
	if pageSize == 0 || pageSize > fmp.MaxPageLimit {
		pageSize = DefaultPageSize
	}

	policy := opts.Policy
	if policy == "" {
		policy = PagePolicySkip
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Fetcher{
		client:   opts.Client,
		maxPages: maxPages,
		pageSize: pageSize,
		policy:   policy,
		logger:   logger,
	}
}

// fetchCongressional crawls pages 1..maxPages of a congressional endpoint.
// Termination: an empty page means end of data; a short page is the final
// page. Records are returned in encounter order.
func (f *Fetcher) fetchCongressional(ctx context.Context, label string, fetch func(ctx context.Context, page, limit int) ([]fmp.CongressionalTrade, error)) ([]fmp.CongressionalTrade, PageStats, error) {
	var all []fmp.CongressionalTrade
	var stats PageStats

	for page := 1; page <= f.maxPages; page++ {
		records, err := fetch(ctx, page, f.pageSize)
		if err != nil {
			if fatal := f.pageError(ctx, label, page, err, &stats); fatal != nil {
				return all, stats, fatal
			}
			continue
		}

		stats.PagesFetched++
		observability.RecordPage(label, false)

		if len(records) == 0 {
			break
		}
		all = append(all, records...)
		if len(records) < f.pageSize {
			break
		}
	}

	return all, stats, nil
}

// fetchInsider is fetchCongressional for the insider endpoint's record type.
func (f *Fetcher) fetchInsider(ctx context.Context, label string) ([]fmp.InsiderTrade, PageStats, error) {
	var all []fmp.InsiderTrade
	var stats PageStats

	for page := 1; page <= f.maxPages; page++ {
		records, err := f.client.InsiderTrading(ctx, page, f.pageSize)
		if err != nil {
			if fatal := f.pageError(ctx, label, page, err, &stats); fatal != nil {
				return all, stats, fatal
			}
			continue
		}

		stats.PagesFetched++
		observability.RecordPage(label, false)

		if len(records) == 0 {
			break
		}
		all = append(all, records...)
		if len(records) < f.pageSize {
			break
		}
	}

	return all, stats, nil
}

// pageError applies the page policy to a failed page. A non-nil return is
// fatal for the crawl. Auth failures and context cancellation are always
// fatal: no later page can succeed.
func (f *Fetcher) pageError(ctx context.Context, label string, page int, err error, stats *PageStats) error {
	var apiErr *fmp.APIError
	if errors.As(err, &apiErr) && apiErr.IsAuth() {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	stats.PagesFailed++
	observability.RecordPage(label, true)
	f.logger.Printf("%s: page %d failed, %s: %v", label, page, f.policy, err)

	if f.policy == PagePolicyAbort {
		return fmt.Errorf("page %d: %w", page, err)
	}
	return nil
}
