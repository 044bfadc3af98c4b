package collections

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/flicksift/flicksift/internal/genres"
	"github.com/flicksift/flicksift/internal/tmdb"
)

// DiscoveryClient fetches one page of discovery results.
type DiscoveryClient interface {
	Discover(ctx context.Context, mediaType string, p tmdb.DiscoverParams) ([]tmdb.ContentItem, error)
}

// Checker runs the auto-discovery job for a collection: it queries the
// discovery endpoint for content matching the collection's criteria that
// appeared since the last check, and returns the net-new content IDs.
type Checker struct {
	client   DiscoveryClient
	logger   zerolog.Logger
	lookback time.Duration
	now      func() time.Time
}

// NewChecker creates a discovery checker. lookbackDays is the release-date
// window used for a collection's first-ever check.
func NewChecker(client DiscoveryClient, lookbackDays int, logger zerolog.Logger) *Checker {
	if lookbackDays <= 0 {
		lookbackDays = 30
	}
	return &Checker{
		client:   client,
		logger:   logger.With().Str("component", "discovery").Logger(),
		lookback: time.Duration(lookbackDays) * 24 * time.Hour,
		now:      time.Now,
	}
}

// CheckForNewContent returns the IDs of newly discovered content for the
// collection, deduplicated across media types and against the IDs the
// collection already holds. It returns nil when the collection does not
// auto-update or has no discovery criteria. A fetch failure for one media
// type is logged and contributes zero items; it never aborts the check.
func (c *Checker) CheckForNewContent(ctx context.Context, col *Collection) []int {
	if !col.AutoUpdate {
		return nil
	}
	if !col.HasDiscoveryCriteria() {
		return nil
	}

	existing := make(map[int]struct{}, len(col.ContentIDs))
	for _, id := range col.ContentIDs {
		existing[id] = struct{}{}
	}

	var newIDs []int
	for _, mediaType := range c.mediaTypes(col) {
		// Discovery fetches exactly one page per media type: the job finds
		// what's new, it does not backfill.
		items, err := c.client.Discover(ctx, mediaType, c.buildParams(col, mediaType))
		if err != nil {
			c.logger.Warn().Err(err).
				Str("collection", col.ID).
				Str("mediaType", mediaType).
				Msg("Discovery fetch failed, treating as no new content")
			continue
		}

		for _, item := range items {
			if _, known := existing[item.ID]; known {
				continue
			}
			existing[item.ID] = struct{}{}
			newIDs = append(newIDs, item.ID)
		}
	}

	return newIDs
}

// Due reports whether the collection should be checked now, based on its
// update frequency and last check time. Never-checked collections are
// always due.
func (c *Checker) Due(col *Collection) bool {
	if !col.AutoUpdate || col.UpdateFrequency == FrequencyNever {
		return false
	}
	if col.LastCheckedAt == nil {
		return true
	}

	var interval time.Duration
	switch col.UpdateFrequency {
	case FrequencyWeekly:
		interval = 7 * 24 * time.Hour
	default:
		interval = 24 * time.Hour
	}

	return c.now().Sub(*col.LastCheckedAt) >= interval
}

func (c *Checker) mediaTypes(col *Collection) []string {
	switch col.MediaType {
	case tmdb.MediaTypeMovie:
		return []string{tmdb.MediaTypeMovie}
	case tmdb.MediaTypeTV:
		return []string{tmdb.MediaTypeTV}
	default:
		return []string{tmdb.MediaTypeMovie, tmdb.MediaTypeTV}
	}
}

// buildParams renders the collection's criteria into discovery query
// parameters for one media type.
func (c *Checker) buildParams(col *Collection, mediaType string) tmdb.DiscoverParams {
	p := tmdb.DiscoverParams{
		SortBy: "popularity.desc",
		Page:   1,
	}

	if len(col.Genres) > 0 {
		ids := genres.ToAPIGenres(col.Genres, mediaType)
		p.Genres = genres.FormatGenreParam(ids, col.GenreLogic)
	}

	since := c.now().Add(-c.lookback)
	if col.LastCheckedAt != nil {
		since = *col.LastCheckedAt
	}
	p.ReleaseDateGTE = since.Format("2006-01-02")

	// A year range narrows the window further; the new-since bound still
	// holds.
	if col.Filters.YearFrom > 0 {
		yearStart := fmt.Sprintf("%04d-01-01", col.Filters.YearFrom)
		if yearStart > p.ReleaseDateGTE {
			p.ReleaseDateGTE = yearStart
		}
	}
	if col.Filters.YearTo > 0 {
		p.ReleaseDateLTE = fmt.Sprintf("%04d-12-31", col.Filters.YearTo)
	}

	p.VoteAverageGTE = col.Filters.MinRating
	p.VoteCountGTE = col.Filters.MinVotes
	p.WithCast = joinIDs(col.Filters.CastIDs)
	p.WithCrew = joinIDs(col.Filters.CrewIDs)

	return p
}

func joinIDs(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}
