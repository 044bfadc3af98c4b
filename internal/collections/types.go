package collections

import (
	"time"

	"github.com/flicksift/flicksift/internal/genres"
)

// UpdateFrequency controls how often an auto-updating collection is
// checked for new content.
type UpdateFrequency string

const (
	FrequencyDaily  UpdateFrequency = "daily"
	FrequencyWeekly UpdateFrequency = "weekly"
	FrequencyNever  UpdateFrequency = "never"
)

// AdvancedFilters holds the optional numeric discovery thresholds of a
// collection. Cast and crew are numeric TMDB person IDs only; resolving
// names to IDs is out of scope.
type AdvancedFilters struct {
	YearFrom  int     `json:"yearFrom,omitempty"`
	YearTo    int     `json:"yearTo,omitempty"`
	MinRating float64 `json:"minRating,omitempty"`
	MinVotes  int     `json:"minVotes,omitempty"`
	CastIDs   []int   `json:"castIds,omitempty"`
	CrewIDs   []int   `json:"crewIds,omitempty"`
}

// IsZero reports whether no advanced filter is set.
func (f AdvancedFilters) IsZero() bool {
	return f.YearFrom == 0 && f.YearTo == 0 && f.MinRating == 0 &&
		f.MinVotes == 0 && len(f.CastIDs) == 0 && len(f.CrewIDs) == 0
}

// Collection is a named, user-owned list of content. It is either manually
// curated (ContentIDs only) or criteria-driven, in which case the
// auto-discovery job grows ContentIDs over time.
type Collection struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	AutoUpdate      bool                `json:"autoUpdate"`
	UpdateFrequency UpdateFrequency     `json:"updateFrequency"`
	MediaType       string              `json:"mediaType"` // "movie", "tv", "all"
	Genres          []string            `json:"genres"`    // unified genre IDs
	GenreLogic      genres.CombineLogic `json:"genreLogic"`
	Filters         AdvancedFilters     `json:"filters"`
	ContentIDs      []int               `json:"contentIds"`
	LastCheckedAt   *time.Time          `json:"lastCheckedAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// HasDiscoveryCriteria reports whether the collection carries anything the
// discovery endpoint can query on. A purely curated list has none.
func (c *Collection) HasDiscoveryCriteria() bool {
	return len(c.Genres) > 0 || !c.Filters.IsZero()
}

// logicFromString parses a stored combine-logic value, defaulting to AND.
func logicFromString(s string) genres.CombineLogic {
	if s == string(genres.CombineOr) {
		return genres.CombineOr
	}
	return genres.CombineAnd
}
