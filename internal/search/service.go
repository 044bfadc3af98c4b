package search

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/flicksift/flicksift/internal/config"
	"github.com/flicksift/flicksift/internal/tmdb"
)

// revenueDetailLimit caps how many per-movie detail lookups one search may
// spend on revenue enrichment.
const revenueDetailLimit = 50

// MovieDetailer fetches detailed movie info; search results carry no
// revenue, so revenue sorting needs a detail lookup per movie.
type MovieDetailer interface {
	GetMovie(ctx context.Context, id int) (*tmdb.MovieDetails, error)
}

// Service is the entry point for searches: it owns the aggregator and
// translates API-level requests into aggregation calls.
type Service struct {
	aggregator *Aggregator
	detailer   MovieDetailer
	quickLimit int
	logger     zerolog.Logger
}

// Request describes one search from the API.
type Request struct {
	Query     string       `json:"query"`
	MediaType string       `json:"mediaType"`
	Slot      string       `json:"slot"`
	LoadAll   bool         `json:"loadAll"`
	Filters   FilterConfig `json:"filters"`
}

// NewService creates a search service.
func NewService(fetcher PageFetcher, cfg config.SearchConfig, logger zerolog.Logger) *Service {
	return &Service{
		aggregator: NewAggregator(fetcher, logger),
		quickLimit: cfg.QuickPageLimit,
		logger:     logger.With().Str("component", "search").Logger(),
	}
}

// SetDetailer enables revenue enrichment for revenue-sorted searches.
func (s *Service) SetDetailer(d MovieDetailer) {
	s.detailer = d
}

// Search runs one aggregation. The slot defaults to "default" so plain
// clients still get last-query-wins behavior without thinking about slots.
func (s *Service) Search(ctx context.Context, req Request) (*Result, error) {
	slot := req.Slot
	if slot == "" {
		slot = "default"
	}

	opts := Options{
		MaxPages: s.quickLimit,
		LoadAll:  req.LoadAll,
	}

	result, err := s.aggregator.Aggregate(ctx, slot, req.Query, req.MediaType, req.Filters, opts)
	if err != nil {
		return nil, err
	}

	if req.Filters.SortKey == SortRevenue && s.detailer != nil {
		s.enrichRevenue(ctx, result, req.Filters)
	}

	return result, nil
}

// enrichRevenue fills in revenue for the filtered movie items, then
// re-applies the filter pipeline so the revenue sort sees real numbers.
// Lookups are capped and failures skipped; an unenriched item just keeps
// revenue 0.
func (s *Service) enrichRevenue(ctx context.Context, result *Result, cfg FilterConfig) {
	revenues := make(map[int]int64)

	lookups := 0
	for _, item := range result.Filtered {
		if item.MediaType != tmdb.MediaTypeMovie || item.Revenue != 0 {
			continue
		}
		if lookups >= revenueDetailLimit {
			break
		}
		lookups++

		details, err := s.detailer.GetMovie(ctx, item.ID)
		if err != nil {
			s.logger.Debug().Err(err).Int("id", item.ID).Msg("Revenue lookup failed, keeping zero")
			continue
		}
		revenues[item.ID] = details.Revenue
	}

	if len(revenues) == 0 {
		return
	}

	for i := range result.Items {
		item := &result.Items[i]
		if rev, ok := revenues[item.ID]; ok && item.MediaType == tmdb.MediaTypeMovie {
			item.Revenue = rev
		}
	}
	result.Filtered = Apply(result.Items, cfg)
}
