package search

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/flicksift/flicksift/internal/tmdb"
)

// ErrSuperseded is returned when an aggregation was cancelled because a
// newer query took over its slot. It is a distinct non-error outcome: the
// caller must discard the result silently and never apply it to current
// state.
var ErrSuperseded = errors.New("aggregation superseded by a newer query")

const (
	// pageSize is the fixed TMDB page size. A page shorter than this is
	// the last page.
	pageSize = 20

	// hardPageCeiling is the upstream limit on page numbers. Requests
	// beyond it fail, so aggregation never crosses it, even in load-all
	// mode.
	hardPageCeiling = 500

	// defaultMaxPages bounds quick-mode aggregation.
	defaultMaxPages = 5
)

// PageFetcher fetches a single page of search results.
type PageFetcher interface {
	SearchPage(ctx context.Context, query, mediaType string, page int) (*tmdb.Page, error)
}

// Options controls one aggregation call.
type Options struct {
	// MaxPages caps the page index in quick mode; 0 means defaultMaxPages.
	MaxPages int
	// LoadAll ignores MaxPages and aggregates until exhaustion or the
	// hard ceiling.
	LoadAll bool
	// Resume continues a previous aggregation for the same query instead
	// of starting at page 1.
	Resume *Result
}

// Result is the outcome of an aggregation.
type Result struct {
	Items        []tmdb.ContentItem `json:"items"`
	Filtered     []tmdb.ContentItem `json:"filtered"`
	FinalPage    int                `json:"finalPage"`
	TotalResults int                `json:"totalResults"`
	Truncated    bool               `json:"truncated"`
	Complete     bool               `json:"complete"`
}

// session identifies one in-flight aggregation occupying a slot.
type session struct {
	cancel context.CancelFunc
}

// Aggregator drives sequential paged fetches and enforces last-query-wins
// per slot: starting a new aggregation cancels any in-flight one for the
// same slot, so a slow stale response can never overwrite newer state.
// Each call owns its own accumulator; the only shared state is the slot
// registry.
type Aggregator struct {
	fetcher PageFetcher
	logger  zerolog.Logger

	mu       sync.Mutex
	inflight map[string]*session
}

// NewAggregator creates a new aggregator on top of the given page fetcher.
func NewAggregator(fetcher PageFetcher, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		fetcher:  fetcher,
		logger:   logger.With().Str("component", "aggregator").Logger(),
		inflight: make(map[string]*session),
	}
}

// Aggregate fetches pages for query until exhaustion or a ceiling, then
// passes the accumulated items through the filter pipeline. It returns
// ErrSuperseded if a newer call took over the slot while this one ran.
// Upstream fetch failures mid-loop are absorbed: aggregation stops, the
// result is marked truncated, and whatever accumulated is returned.
func (a *Aggregator) Aggregate(ctx context.Context, slot, query, mediaType string, cfg FilterConfig, opts Options) (*Result, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	ctx, sess := a.takeSlot(ctx, slot)
	defer a.releaseSlot(slot, sess)

	var (
		items        []tmdb.ContentItem
		page         int
		totalResults int
		totalPages   int
		truncated    bool
		complete     bool
	)

	if opts.Resume != nil {
		items = append(items, opts.Resume.Items...)
		page = opts.Resume.FinalPage
		totalResults = opts.Resume.TotalResults
	}

	for {
		if ctx.Err() != nil {
			return nil, ErrSuperseded
		}

		next := page + 1
		if next > hardPageCeiling {
			truncated = true
			break
		}
		if !opts.LoadAll && next > maxPages {
			truncated = true
			break
		}

		p, err := a.fetcher.SearchPage(ctx, query, mediaType, next)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrSuperseded
			}
			a.logger.Warn().Err(err).
				Str("query", query).
				Int("page", next).
				Msg("Page fetch failed, returning partial results")
			truncated = true
			break
		}

		page = next
		if totalResults == 0 {
			totalResults = p.TotalResults
		}
		totalPages = p.TotalPages

		if len(p.Items) == 0 {
			complete = true
			break
		}

		items = append(items, p.Items...)

		if len(p.Items) < pageSize {
			complete = true
			break
		}
		if totalPages > 0 && page >= totalPages {
			complete = true
			break
		}
	}

	// A ceiling that happened to land on the last page is not truncation.
	if !complete && totalResults > 0 && len(items) >= totalResults {
		complete = true
		truncated = false
	}

	if ctx.Err() != nil {
		return nil, ErrSuperseded
	}

	result := &Result{
		Items:        items,
		Filtered:     Apply(items, cfg),
		FinalPage:    page,
		TotalResults: totalResults,
		Truncated:    truncated,
		Complete:     complete,
	}

	a.logger.Debug().
		Str("slot", slot).
		Str("query", query).
		Int("pages", page).
		Int("items", len(items)).
		Int("filtered", len(result.Filtered)).
		Bool("truncated", truncated).
		Bool("complete", complete).
		Msg("Aggregation finished")

	return result, nil
}

// takeSlot cancels any aggregation currently occupying the slot and
// registers a new session for it.
func (a *Aggregator) takeSlot(ctx context.Context, slot string) (context.Context, *session) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if prev, ok := a.inflight[slot]; ok {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	sess := &session{cancel: cancel}
	a.inflight[slot] = sess
	return ctx, sess
}

// releaseSlot removes the session from the registry if it still owns the
// slot, and releases its context either way.
func (a *Aggregator) releaseSlot(slot string, sess *session) {
	a.mu.Lock()
	if a.inflight[slot] == sess {
		delete(a.inflight, slot)
	}
	a.mu.Unlock()
	sess.cancel()
}
