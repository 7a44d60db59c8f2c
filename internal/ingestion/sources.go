package ingestion

import (
	"context"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/fmp"
	"disclosure-sync/internal/normalize"
)

// Record is one raw record paired with its normalization, so record-level
// parse failures surface inside the processing loop rather than during the
// crawl.
type Record interface {
	Normalize() (*normalize.Canonical, error)
}

// Batch is the result of one full crawl: records in encounter order plus
// page statistics.
type Batch struct {
	Records []Record
	Stats   PageStats
}

// Source is one logical disclosure feed.
type Source interface {
	Label() string
	SyncType() domain.SyncType
	FetchAll(ctx context.Context) (*Batch, error)
}

type congressionalRecord struct {
	raw  fmp.CongressionalTrade
	kind domain.TraderKind
}

func (r congressionalRecord) Normalize() (*normalize.Canonical, error) {
	return normalize.Congressional(r.raw, r.kind)
}

type insiderRecord struct {
	raw fmp.InsiderTrade
}

func (r insiderRecord) Normalize() (*normalize.Canonical, error) {
	return normalize.Insider(r.raw)
}

// SenateSource is the Senate disclosure feed.
type SenateSource struct {
	fetcher *Fetcher
}

// NewSenateSource creates a Senate source over a fetcher.
func NewSenateSource(f *Fetcher) *SenateSource { return &SenateSource{fetcher: f} }

func (s *SenateSource) Label() string             { return "senate" }
func (s *SenateSource) SyncType() domain.SyncType { return domain.SyncSenate }

func (s *SenateSource) FetchAll(ctx context.Context) (*Batch, error) {
	raws, stats, err := s.fetcher.fetchCongressional(ctx, s.Label(), s.fetcher.client.SenateLatest)
	if err != nil {
		return &Batch{Stats: stats}, err
	}

	records := make([]Record, len(raws))
	for i, raw := range raws {
		records[i] = congressionalRecord{raw: raw, kind: domain.KindSenate}
	}
	return &Batch{Records: records, Stats: stats}, nil
}

// HouseSource is the House disclosure feed.
type HouseSource struct {
	fetcher *Fetcher
}

// NewHouseSource creates a House source over a fetcher.
func NewHouseSource(f *Fetcher) *HouseSource { return &HouseSource{fetcher: f} }

func (s *HouseSource) Label() string             { return "house" }
func (s *HouseSource) SyncType() domain.SyncType { return domain.SyncHouse }

func (s *HouseSource) FetchAll(ctx context.Context) (*Batch, error) {
	raws, stats, err := s.fetcher.fetchCongressional(ctx, s.Label(), s.fetcher.client.HouseLatest)
	if err != nil {
		return &Batch{Stats: stats}, err
	}

	records := make([]Record, len(raws))
	for i, raw := range raws {
		records[i] = congressionalRecord{raw: raw, kind: domain.KindHouse}
	}
	return &Batch{Records: records, Stats: stats}, nil
}

// InsiderSource is the corporate insider disclosure feed.
type InsiderSource struct {
	fetcher *Fetcher
}

// NewInsiderSource creates an insider source over a fetcher.
func NewInsiderSource(f *Fetcher) *InsiderSource { return &InsiderSource{fetcher: f} }

func (s *InsiderSource) Label() string             { return "insiders" }
func (s *InsiderSource) SyncType() domain.SyncType { return domain.SyncInsiders }

func (s *InsiderSource) FetchAll(ctx context.Context) (*Batch, error) {
	raws, stats, err := s.fetcher.fetchInsider(ctx, s.Label())
	if err != nil {
		return &Batch{Stats: stats}, err
	}

	records := make([]Record, len(raws))
	for i, raw := range raws {
		records[i] = insiderRecord{raw: raw}
	}
	return &Batch{Records: records, Stats: stats}, nil
}
