package search

import (
	"sort"
	"strconv"

	"github.com/flicksift/flicksift/internal/tmdb"
)

// FilterConfig selects which items survive filtering and how the result is
// ordered. A new config replaces the old one atomically; nothing mutates a
// config after construction.
type FilterConfig struct {
	ContentType  string `json:"contentType"`  // "all", "movie", "tv"
	RatingBucket string `json:"ratingBucket"` // "all", "7.0+", "8.0+", "9.0+"
	YearBucket   string `json:"yearBucket"`   // "all", "1990s", "2000s", "2010s", "2020s"
	SortKey      string `json:"sortKey"`      // "popularity.desc", "revenue.desc", "vote_average.desc"
}

// Sort key constants. popularity.desc is the upstream default order and is
// left untouched.
const (
	SortPopularity  = "popularity.desc"
	SortRevenue     = "revenue.desc"
	SortVoteAverage = "vote_average.desc"
)

// ratingFloors maps rating buckets to inclusive minimums.
var ratingFloors = map[string]float64{
	"7.0+": 7.0,
	"8.0+": 8.0,
	"9.0+": 9.0,
}

// yearRanges maps year buckets to inclusive decade ranges.
var yearRanges = map[string][2]int{
	"1990s": {1990, 1999},
	"2000s": {2000, 2009},
	"2010s": {2010, 2019},
	"2020s": {2020, 2029},
}

// Apply filters and sorts items according to cfg. It is a pure function:
// the input slice is never modified and repeated calls yield identical
// output. Defaulting is defensive throughout, so no input can make it fail.
func Apply(items []tmdb.ContentItem, cfg FilterConfig) []tmdb.ContentItem {
	out := make([]tmdb.ContentItem, 0, len(items))

	for _, item := range items {
		if !matchesContentType(item, cfg.ContentType) {
			continue
		}
		if !matchesRating(item, cfg.RatingBucket) {
			continue
		}
		if !matchesYear(item, cfg.YearBucket) {
			continue
		}
		out = append(out, item)
	}

	switch cfg.SortKey {
	case SortRevenue:
		// TV items carry no revenue, so they compare as 0 and sink.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Revenue > out[j].Revenue
		})
	case SortVoteAverage:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].VoteAverage > out[j].VoteAverage
		})
	}

	return out
}

func matchesContentType(item tmdb.ContentItem, contentType string) bool {
	if contentType == "" || contentType == tmdb.MediaTypeAll {
		return true
	}
	return item.MediaType == contentType
}

func matchesRating(item tmdb.ContentItem, bucket string) bool {
	floor, ok := ratingFloors[bucket]
	if !ok {
		return true
	}
	return item.VoteAverage >= floor
}

// matchesYear keeps items whose release year falls in the bucket's decade.
// Items with no parsable year pass every bucket: the filter narrows by
// decade when a decade is knowable, it does not punish sparse metadata.
func matchesYear(item tmdb.ContentItem, bucket string) bool {
	r, ok := yearRanges[bucket]
	if !ok {
		return true
	}

	year := releaseYear(item.ReleaseDate)
	if year == 0 {
		return true
	}
	return year >= r[0] && year <= r[1]
}

// releaseYear extracts the 4-digit year from a YYYY-MM-DD date string,
// returning 0 when absent or malformed.
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
