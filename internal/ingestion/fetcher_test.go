package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"disclosure-sync/internal/fmp"
)

func testFetcher(maxPages, pageSize int, policy PagePolicy) *Fetcher {
	return NewFetcher(FetcherOptions{
		MaxPages: maxPages,
		PageSize: pageSize,
		Policy:   policy,
		Logger:   log.New(io.Discard, "", 0),
	})
}

// pagedFetch serves canned page sizes and counts calls.
func pagedFetch(t *testing.T, pageSizes []int, failPages map[int]error) (func(ctx context.Context, page, limit int) ([]fmp.CongressionalTrade, error), *int) {
	t.Helper()
	calls := new(int)
	fetch := func(ctx context.Context, page, limit int) ([]fmp.CongressionalTrade, error) {
		*calls++
		if err, ok := failPages[page]; ok {
			return nil, err
		}
		if page > len(pageSizes) {
			return nil, nil
		}
		n := pageSizes[page-1]
		records := make([]fmp.CongressionalTrade, n)
		for i := range records {
			records[i].Symbol = fmt.Sprintf("SYM%d_%d", page, i)
		}
		return records, nil
	}
	return fetch, calls
}

func TestFetcher_ShortPageEndsCrawl(t *testing.T) {
	f := testFetcher(20, 250, PagePolicySkip)
	fetch, calls := pagedFetch(t, []int{250, 250, 80}, nil)

	records, stats, err := f.fetchCongressional(context.Background(), "senate", fetch)
	if err != nil {
		t.Fatalf("fetchCongressional failed: %v", err)
	}

	if len(records) != 580 {
		t.Errorf("expected 580 records, got %d", len(records))
	}
	if *calls != 3 {
		t.Errorf("expected 3 page requests, got %d", *calls)
	}
	if stats.PagesFetched != 3 || stats.PagesFailed != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	// Encounter order is preserved across pages.
	if records[0].Symbol != "SYM1_0" || records[579].Symbol != "SYM3_79" {
		t.Errorf("records out of order: first=%s last=%s", records[0].Symbol, records[579].Symbol)
	}
}

func TestFetcher_EmptyFirstPage(t *testing.T) {
	f := testFetcher(20, 250, PagePolicySkip)
	fetch, calls := pagedFetch(t, nil, nil)

	records, stats, err := f.fetchCongressional(context.Background(), "senate", fetch)
	if err != nil {
		t.Fatalf("fetchCongressional failed: %v", err)
	}

	if len(records) != 0 {
		t.Errorf("expected 0 records, got %d", len(records))
	}
	if *calls != 1 {
		t.Errorf("expected 1 page request, got %d", *calls)
	}
	if stats.PagesFetched != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestFetcher_MaxPagesCeiling(t *testing.T) {
	f := testFetcher(3, 2, PagePolicySkip)
	// Every page is full; the ceiling must stop the crawl.
	fetch, calls := pagedFetch(t, []int{2, 2, 2, 2, 2}, nil)

	records, _, err := f.fetchCongressional(context.Background(), "senate", fetch)
	if err != nil {
		t.Fatalf("fetchCongressional failed: %v", err)
	}

	if *calls != 3 {
		t.Errorf("expected 3 page requests at the ceiling, got %d", *calls)
	}
	if len(records) != 6 {
		t.Errorf("expected 6 records, got %d", len(records))
	}
}

func TestFetcher_SkipPolicyContinuesPastFailedPage(t *testing.T) {
	f := testFetcher(20, 250, PagePolicySkip)
	fetch, _ := pagedFetch(t, []int{250, 250, 80}, map[int]error{
		2: errors.New("gateway timeout"),
	})

	records, stats, err := f.fetchCongressional(context.Background(), "senate", fetch)
	if err != nil {
		t.Fatalf("fetchCongressional failed: %v", err)
	}

	// Page 2 is lost but pages 1 and 3 survive.
	if len(records) != 330 {
		t.Errorf("expected 330 records, got %d", len(records))
	}
	if stats.PagesFailed != 1 {
		t.Errorf("expected 1 failed page, got %d", stats.PagesFailed)
	}
	if stats.PagesFetched != 2 {
		t.Errorf("expected 2 fetched pages, got %d", stats.PagesFetched)
	}
}

func TestFetcher_AbortPolicyStopsAtFailedPage(t *testing.T) {
	f := testFetcher(20, 250, PagePolicyAbort)
	fetch, calls := pagedFetch(t, []int{250, 250, 80}, map[int]error{
		2: errors.New("gateway timeout"),
	})

	records, stats, err := f.fetchCongressional(context.Background(), "senate", fetch)
	if err == nil {
		t.Fatal("expected abort error")
	}

	if *calls != 2 {
		t.Errorf("expected 2 page requests before abort, got %d", *calls)
	}
	if len(records) != 250 {
		t.Errorf("expected page 1 records to survive, got %d", len(records))
	}
	if stats.PagesFailed != 1 {
		t.Errorf("expected 1 failed page, got %d", stats.PagesFailed)
	}
}

func TestFetcher_AuthFailureIsFatal(t *testing.T) {
	// Skip policy never papers over a bad key.
	f := testFetcher(20, 250, PagePolicySkip)
	fetch, calls := pagedFetch(t, []int{250, 250}, map[int]error{
		1: &fmp.APIError{StatusCode: 401, Body: []byte("Invalid API KEY")},
	})

	_, _, err := f.fetchCongressional(context.Background(), "senate", fetch)
	if err == nil {
		t.Fatal("expected fatal auth error")
	}

	var apiErr *fmp.APIError
	if !errors.As(err, &apiErr) || !apiErr.IsAuth() {
		t.Errorf("expected wrapped auth APIError, got %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected crawl to stop at page 1, got %d calls", *calls)
	}
}

func TestFetcher_ContextCancellationIsFatal(t *testing.T) {
	f := testFetcher(20, 250, PagePolicySkip)

	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(fctx context.Context, page, limit int) ([]fmp.CongressionalTrade, error) {
		cancel()
		return nil, ctx.Err()
	}

	_, _, err := f.fetchCongressional(ctx, "senate", fetch)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
