package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/flicksift/flicksift/internal/tmdb"
)

// fakeFetcher serves a fixed number of results in 20-item pages. A query
// matching blockQuery parks the fetch until its context is cancelled,
// which lets tests exercise supersession deterministically.
type fakeFetcher struct {
	total      int
	failPages  map[int]error
	blockQuery string
	started    chan struct{} // closed when a blocked fetch begins
	fetches    int
}

func (f *fakeFetcher) SearchPage(ctx context.Context, query, mediaType string, page int) (*tmdb.Page, error) {
	if query == f.blockQuery {
		if f.started != nil {
			close(f.started)
			f.started = nil
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}

	f.fetches++

	if err, ok := f.failPages[page]; ok {
		return nil, err
	}

	totalPages := (f.total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	count := 0
	if start < f.total {
		count = f.total - start
		if count > pageSize {
			count = pageSize
		}
	}

	items := make([]tmdb.ContentItem, count)
	for i := range items {
		items[i] = tmdb.ContentItem{
			ID:          start + i + 1,
			MediaType:   tmdb.MediaTypeMovie,
			VoteAverage: 6,
		}
	}

	return &tmdb.Page{
		Items:        items,
		Page:         page,
		TotalPages:   totalPages,
		TotalResults: f.total,
	}, nil
}

func newTestAggregator(f *fakeFetcher) *Aggregator {
	return NewAggregator(f, zerolog.Nop())
}

func TestAggregate_Exhaustion(t *testing.T) {
	fetcher := &fakeFetcher{total: 45}
	agg := newTestAggregator(fetcher)

	result, err := agg.Aggregate(context.Background(), "s1", "dune", tmdb.MediaTypeMovie, FilterConfig{}, Options{LoadAll: true})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if fetcher.fetches != 3 {
		t.Errorf("fetched %d pages, want 3", fetcher.fetches)
	}
	if len(result.Items) != 45 {
		t.Errorf("accumulated %d items, want 45", len(result.Items))
	}
	if !result.Complete {
		t.Error("Complete = false, want true")
	}
	if result.Truncated {
		t.Error("Truncated = true, want false")
	}
	if result.FinalPage != 3 {
		t.Errorf("FinalPage = %d, want 3", result.FinalPage)
	}
}

func TestAggregate_QuickCeiling(t *testing.T) {
	fetcher := &fakeFetcher{total: 100}
	agg := newTestAggregator(fetcher)

	result, err := agg.Aggregate(context.Background(), "s1", "dune", tmdb.MediaTypeMovie, FilterConfig{}, Options{MaxPages: 2})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if len(result.Items) != 40 {
		t.Errorf("accumulated %d items, want 40", len(result.Items))
	}
	if !result.Truncated {
		t.Error("Truncated = false, want true")
	}
	if result.Complete {
		t.Error("Complete = true, want false")
	}
	if result.TotalResults != 100 {
		t.Errorf("TotalResults = %d, want 100", result.TotalResults)
	}
}

func TestAggregate_CeilingOnLastPageIsNotTruncation(t *testing.T) {
	fetcher := &fakeFetcher{total: 40}
	agg := newTestAggregator(fetcher)

	result, err := agg.Aggregate(context.Background(), "s1", "dune", tmdb.MediaTypeMovie, FilterConfig{}, Options{MaxPages: 2})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if len(result.Items) != 40 {
		t.Errorf("accumulated %d items, want 40", len(result.Items))
	}
	if result.Truncated {
		t.Error("Truncated = true, want false: everything was fetched")
	}
	if !result.Complete {
		t.Error("Complete = false, want true")
	}
}

func TestAggregate_Supersession(t *testing.T) {
	started := make(chan struct{})
	fetcher := &fakeFetcher{total: 40, blockQuery: "slow", started: started}
	agg := newTestAggregator(fetcher)

	type outcome struct {
		result *Result
		err    error
	}
	first := make(chan outcome, 1)

	go func() {
		r, err := agg.Aggregate(context.Background(), "s1", "slow", tmdb.MediaTypeMovie, FilterConfig{}, Options{})
		first <- outcome{r, err}
	}()

	// Wait for the first aggregation to be in flight before superseding it.
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first aggregation never started")
	}

	result, err := agg.Aggregate(context.Background(), "s1", "fast", tmdb.MediaTypeMovie, FilterConfig{}, Options{LoadAll: true})
	if err != nil {
		t.Fatalf("second Aggregate() error = %v", err)
	}
	if len(result.Items) != 40 {
		t.Errorf("second aggregation got %d items, want 40", len(result.Items))
	}

	select {
	case got := <-first:
		if !errors.Is(got.err, ErrSuperseded) {
			t.Errorf("first Aggregate() error = %v, want ErrSuperseded", got.err)
		}
		if got.result != nil {
			t.Errorf("superseded aggregation returned a result: %+v", got.result)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first aggregation never resolved")
	}
}

func TestAggregate_DifferentSlotsDoNotInterfere(t *testing.T) {
	fetcher := &fakeFetcher{total: 20}
	agg := newTestAggregator(fetcher)

	if _, err := agg.Aggregate(context.Background(), "a", "dune", tmdb.MediaTypeMovie, FilterConfig{}, Options{}); err != nil {
		t.Fatalf("slot a error = %v", err)
	}
	if _, err := agg.Aggregate(context.Background(), "b", "dune", tmdb.MediaTypeMovie, FilterConfig{}, Options{}); err != nil {
		t.Fatalf("slot b error = %v", err)
	}
}

func TestAggregate_FetchFailureAbsorbed(t *testing.T) {
	fetcher := &fakeFetcher{
		total:     100,
		failPages: map[int]error{3: errors.New("upstream 502")},
	}
	agg := newTestAggregator(fetcher)

	result, err := agg.Aggregate(context.Background(), "s1", "dune", tmdb.MediaTypeMovie, FilterConfig{}, Options{LoadAll: true})
	if err != nil {
		t.Fatalf("Aggregate() error = %v, failures should be absorbed", err)
	}

	if len(result.Items) != 40 {
		t.Errorf("accumulated %d items, want 40 from the pages before the failure", len(result.Items))
	}
	if !result.Truncated {
		t.Error("Truncated = false, want true after absorbed failure")
	}
	if result.Complete {
		t.Error("Complete = true, want false")
	}
}

func TestAggregate_FirstPageFailure(t *testing.T) {
	fetcher := &fakeFetcher{
		total:     100,
		failPages: map[int]error{1: errors.New("upstream down")},
	}
	agg := newTestAggregator(fetcher)

	result, err := agg.Aggregate(context.Background(), "s1", "dune", tmdb.MediaTypeMovie, FilterConfig{}, Options{})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("accumulated %d items, want 0", len(result.Items))
	}
	if !result.Truncated {
		t.Error("Truncated = false, want true")
	}
}

func TestAggregate_HardCeiling(t *testing.T) {
	fetcher := &fakeFetcher{total: 20000}
	agg := newTestAggregator(fetcher)

	// Resume from the hard ceiling: even load-all must not fetch page 501.
	resume := &Result{FinalPage: hardPageCeiling, TotalResults: 20000}
	result, err := agg.Aggregate(context.Background(), "s1", "dune", tmdb.MediaTypeMovie, FilterConfig{}, Options{LoadAll: true, Resume: resume})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if fetcher.fetches != 0 {
		t.Errorf("fetched %d pages beyond the hard ceiling, want 0", fetcher.fetches)
	}
	if !result.Truncated {
		t.Error("Truncated = false, want true at hard ceiling")
	}
}

func TestAggregate_ResumeContinuesFromPriorPage(t *testing.T) {
	fetcher := &fakeFetcher{total: 200}
	agg := newTestAggregator(fetcher)

	quick, err := agg.Aggregate(context.Background(), "s1", "dune", tmdb.MediaTypeMovie, FilterConfig{}, Options{MaxPages: 5})
	if err != nil {
		t.Fatalf("quick Aggregate() error = %v", err)
	}
	if len(quick.Items) != 100 || !quick.Truncated {
		t.Fatalf("quick mode got %d items truncated=%v, want 100 truncated", len(quick.Items), quick.Truncated)
	}

	full, err := agg.Aggregate(context.Background(), "s1", "dune", tmdb.MediaTypeMovie, FilterConfig{}, Options{LoadAll: true, Resume: quick})
	if err != nil {
		t.Fatalf("load-all Aggregate() error = %v", err)
	}

	if len(full.Items) != 200 {
		t.Errorf("resumed aggregation got %d items, want 200", len(full.Items))
	}
	if fetcher.fetches != 10 {
		t.Errorf("fetched %d pages total, want 10 (5 quick + 5 resumed)", fetcher.fetches)
	}
	if !full.Complete || full.Truncated {
		t.Errorf("resumed result complete=%v truncated=%v, want complete", full.Complete, full.Truncated)
	}
	if full.Items[0].ID != 1 || full.Items[199].ID != 200 {
		t.Errorf("resumed items out of order: first=%d last=%d", full.Items[0].ID, full.Items[199].ID)
	}
}

func TestAggregate_FilterAppliedToResult(t *testing.T) {
	fetcher := &fakeFetcher{total: 20}
	agg := newTestAggregator(fetcher)

	cfg := FilterConfig{RatingBucket: "7.0+"}
	result, err := agg.Aggregate(context.Background(), "s1", "dune", tmdb.MediaTypeMovie, cfg, Options{})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	// Fake items all carry rating 6, so everything is filtered out while
	// the raw accumulation is untouched.
	if len(result.Items) != 20 {
		t.Errorf("Items = %d, want 20", len(result.Items))
	}
	if len(result.Filtered) != 0 {
		t.Errorf("Filtered = %d, want 0", len(result.Filtered))
	}
}
