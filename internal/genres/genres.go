// Package genres maps the unified genre taxonomy to the TMDB per-media-type
// numeric genre codes. TMDB keeps separate, inconsistent code sets for movies
// and TV (e.g. movie "Action" is 28, TV only has "Action & Adventure" 10759),
// so one unified genre can translate to zero or more codes per media type.
package genres

import (
	"strconv"
	"strings"

	"github.com/flicksift/flicksift/internal/tmdb"
)

// UnifiedGenre is a static catalog entry. MovieIDs and TVIDs hold the TMDB
// numeric codes this genre translates to for each media type.
type UnifiedGenre struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MovieIDs []int  `json:"movieIds"`
	TVIDs    []int  `json:"tvIds"`
}

// CombineLogic selects how multiple genre codes combine in a query.
type CombineLogic string

const (
	CombineAnd CombineLogic = "AND"
	CombineOr  CombineLogic = "OR"
)

// catalog is read-only reference data; never mutated at runtime.
var catalog = []UnifiedGenre{
	{ID: "action", Name: "Action", MovieIDs: []int{28}, TVIDs: []int{10759}},
	{ID: "adventure", Name: "Adventure", MovieIDs: []int{12}, TVIDs: []int{10759}},
	{ID: "animation", Name: "Animation", MovieIDs: []int{16}, TVIDs: []int{16}},
	{ID: "comedy", Name: "Comedy", MovieIDs: []int{35}, TVIDs: []int{35}},
	{ID: "crime", Name: "Crime", MovieIDs: []int{80}, TVIDs: []int{80}},
	{ID: "documentary", Name: "Documentary", MovieIDs: []int{99}, TVIDs: []int{99}},
	{ID: "drama", Name: "Drama", MovieIDs: []int{18}, TVIDs: []int{18}},
	{ID: "family", Name: "Family", MovieIDs: []int{10751}, TVIDs: []int{10751, 10762}},
	{ID: "fantasy", Name: "Fantasy", MovieIDs: []int{14}, TVIDs: []int{10765}},
	{ID: "history", Name: "History", MovieIDs: []int{36}, TVIDs: []int{}},
	{ID: "horror", Name: "Horror", MovieIDs: []int{27}, TVIDs: []int{}},
	{ID: "music", Name: "Music", MovieIDs: []int{10402}, TVIDs: []int{}},
	{ID: "mystery", Name: "Mystery", MovieIDs: []int{9648}, TVIDs: []int{9648}},
	{ID: "romance", Name: "Romance", MovieIDs: []int{10749}, TVIDs: []int{}},
	{ID: "scifi", Name: "Science Fiction", MovieIDs: []int{878}, TVIDs: []int{10765}},
	{ID: "thriller", Name: "Thriller", MovieIDs: []int{53}, TVIDs: []int{}},
	{ID: "war", Name: "War", MovieIDs: []int{10752}, TVIDs: []int{10768}},
	{ID: "western", Name: "Western", MovieIDs: []int{37}, TVIDs: []int{37}},
}

// Catalog returns the full unified genre catalog.
func Catalog() []UnifiedGenre {
	out := make([]UnifiedGenre, len(catalog))
	copy(out, catalog)
	return out
}

// ToAPIGenres translates unified genre IDs into a deduplicated list of TMDB
// numeric codes for the given media type. Unknown unified IDs are silently
// skipped: stored criteria may reference genres removed from the catalog,
// and a degraded query beats a failed refresh.
func ToAPIGenres(unifiedIDs []string, mediaType string) []int {
	seen := make(map[int]struct{})
	out := make([]int, 0, len(unifiedIDs))

	for _, id := range unifiedIDs {
		entry, ok := lookup(id)
		if !ok {
			continue
		}
		for _, code := range codesFor(entry, mediaType) {
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			out = append(out, code)
		}
	}

	return out
}

// ToUnifiedGenres translates TMDB numeric codes back into unified genre IDs.
// Each code maps to the first catalog entry whose list contains it; codes
// with no catalog entry are skipped.
func ToUnifiedGenres(apiIDs []int, mediaType string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(apiIDs))

	for _, code := range apiIDs {
		for _, entry := range catalog {
			if !contains(codesFor(entry, mediaType), code) {
				continue
			}
			if _, dup := seen[entry.ID]; !dup {
				seen[entry.ID] = struct{}{}
				out = append(out, entry.ID)
			}
			break
		}
	}

	return out
}

// FormatGenreParam renders numeric genre codes into the TMDB with_genres
// query syntax: comma-separated for AND, pipe-separated for OR.
func FormatGenreParam(ids []int, logic CombineLogic) string {
	if len(ids) == 0 {
		return ""
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}

	sep := ","
	if logic == CombineOr {
		sep = "|"
	}
	return strings.Join(parts, sep)
}

func lookup(unifiedID string) (UnifiedGenre, bool) {
	for _, entry := range catalog {
		if entry.ID == unifiedID {
			return entry, true
		}
	}
	return UnifiedGenre{}, false
}

func codesFor(entry UnifiedGenre, mediaType string) []int {
	if mediaType == tmdb.MediaTypeTV {
		return entry.TVIDs
	}
	return entry.MovieIDs
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
