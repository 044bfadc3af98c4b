package search

import (
	"reflect"
	"testing"

	"github.com/flicksift/flicksift/internal/tmdb"
)

func TestApply_ContentType(t *testing.T) {
	items := []tmdb.ContentItem{
		{ID: 1, MediaType: tmdb.MediaTypeMovie},
		{ID: 2, MediaType: tmdb.MediaTypeTV},
		{ID: 3, MediaType: tmdb.MediaTypeMovie},
	}

	tests := []struct {
		name        string
		contentType string
		wantIDs     []int
	}{
		{"all", "all", []int{1, 2, 3}},
		{"empty means all", "", []int{1, 2, 3}},
		{"movies only", "movie", []int{1, 3}},
		{"tv only", "tv", []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(items, FilterConfig{ContentType: tt.contentType})
			if ids := itemIDs(got); !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("Apply() ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}

func TestApply_RatingFloorInclusive(t *testing.T) {
	items := []tmdb.ContentItem{
		{ID: 1, VoteAverage: 7.0},
		{ID: 2, VoteAverage: 6.99},
		{ID: 3, VoteAverage: 9.0},
		{ID: 4}, // missing rating defaults to 0
	}

	got := Apply(items, FilterConfig{RatingBucket: "7.0+"})
	if ids := itemIDs(got); !reflect.DeepEqual(ids, []int{1, 3}) {
		t.Errorf("7.0+ filter kept %v, want [1 3]", ids)
	}

	got = Apply(items, FilterConfig{RatingBucket: "9.0+"})
	if ids := itemIDs(got); !reflect.DeepEqual(ids, []int{3}) {
		t.Errorf("9.0+ filter kept %v, want [3]", ids)
	}
}

func TestApply_YearBucketBoundary(t *testing.T) {
	items := []tmdb.ContentItem{
		{ID: 1, ReleaseDate: "2020-01-01"},
		{ID: 2, ReleaseDate: "2019-12-31"},
		{ID: 3, ReleaseDate: "2029-06-15"},
	}

	got := Apply(items, FilterConfig{YearBucket: "2020s"})
	if ids := itemIDs(got); !reflect.DeepEqual(ids, []int{1, 3}) {
		t.Errorf("2020s bucket kept %v, want [1 3]", ids)
	}
}

func TestApply_UnparsableDatesPassYearFilter(t *testing.T) {
	items := []tmdb.ContentItem{
		{ID: 1, ReleaseDate: ""},
		{ID: 2, ReleaseDate: "soon"},
		{ID: 3, ReleaseDate: "1985-07-03"},
	}

	got := Apply(items, FilterConfig{YearBucket: "2010s"})
	if ids := itemIDs(got); !reflect.DeepEqual(ids, []int{1, 2}) {
		t.Errorf("year filter kept %v, want [1 2] (unparsable dates pass)", ids)
	}
}

func TestApply_SortVoteAverageStable(t *testing.T) {
	items := []tmdb.ContentItem{
		{ID: 1, VoteAverage: 5},
		{ID: 2, VoteAverage: 5},
		{ID: 3, VoteAverage: 9},
	}

	got := Apply(items, FilterConfig{SortKey: SortVoteAverage})
	if ids := itemIDs(got); !reflect.DeepEqual(ids, []int{3, 1, 2}) {
		t.Errorf("vote_average.desc order = %v, want [3 1 2]", ids)
	}
}

func TestApply_SortRevenueSinksTV(t *testing.T) {
	items := []tmdb.ContentItem{
		{ID: 1, MediaType: tmdb.MediaTypeTV},
		{ID: 2, MediaType: tmdb.MediaTypeMovie, Revenue: 100},
		{ID: 3, MediaType: tmdb.MediaTypeMovie, Revenue: 500},
		{ID: 4, MediaType: tmdb.MediaTypeTV},
	}

	got := Apply(items, FilterConfig{SortKey: SortRevenue})
	if ids := itemIDs(got); !reflect.DeepEqual(ids, []int{3, 2, 1, 4}) {
		t.Errorf("revenue.desc order = %v, want [3 2 1 4]", ids)
	}
}

func TestApply_DefaultSortKeepsInputOrder(t *testing.T) {
	items := []tmdb.ContentItem{
		{ID: 3, Popularity: 1},
		{ID: 1, Popularity: 9},
		{ID: 2, Popularity: 5},
	}

	got := Apply(items, FilterConfig{SortKey: SortPopularity})
	if ids := itemIDs(got); !reflect.DeepEqual(ids, []int{3, 1, 2}) {
		t.Errorf("popularity.desc should keep input order, got %v", ids)
	}
}

func TestApply_Idempotent(t *testing.T) {
	items := []tmdb.ContentItem{
		{ID: 1, MediaType: tmdb.MediaTypeMovie, VoteAverage: 8.1, ReleaseDate: "2015-02-02"},
		{ID: 2, MediaType: tmdb.MediaTypeTV, VoteAverage: 7.4, ReleaseDate: "2021-09-09"},
		{ID: 3, MediaType: tmdb.MediaTypeMovie, VoteAverage: 6.2, ReleaseDate: "2012-01-01"},
	}
	cfg := FilterConfig{ContentType: "all", RatingBucket: "7.0+", YearBucket: "2010s", SortKey: SortVoteAverage}

	first := Apply(items, cfg)
	second := Apply(items, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Apply() is not idempotent: %v vs %v", first, second)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	items := []tmdb.ContentItem{
		{ID: 2, VoteAverage: 1},
		{ID: 1, VoteAverage: 9},
	}
	snapshot := make([]tmdb.ContentItem, len(items))
	copy(snapshot, items)

	Apply(items, FilterConfig{SortKey: SortVoteAverage})
	if !reflect.DeepEqual(items, snapshot) {
		t.Errorf("Apply() mutated its input: %v", items)
	}
}

func itemIDs(items []tmdb.ContentItem) []int {
	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
