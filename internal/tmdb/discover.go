package tmdb

import (
	"net/url"
	"strconv"
)

// DiscoverParams holds query parameters for the TMDB discover endpoints.
// Zero values are omitted from the request.
type DiscoverParams struct {
	Genres         string // formatted genre ID list: "28,12" (AND) or "28|12" (OR)
	ReleaseDateGTE string // YYYY-MM-DD inclusive lower bound
	ReleaseDateLTE string // YYYY-MM-DD inclusive upper bound
	VoteAverageGTE float64
	VoteCountGTE   int
	WithCast       string // comma-separated numeric person IDs, movies only
	WithCrew       string // comma-separated numeric person IDs, movies only
	SortBy         string
	Page           int
}

// Values renders the params as URL query values. Date parameter names
// differ between the movie and TV discover endpoints.
func (p DiscoverParams) Values(mediaType string) url.Values {
	v := url.Values{}
	v.Set("include_adult", "false")

	dateGTE := "primary_release_date.gte"
	dateLTE := "primary_release_date.lte"
	if mediaType == MediaTypeTV {
		dateGTE = "first_air_date.gte"
		dateLTE = "first_air_date.lte"
	}

	if p.Genres != "" {
		v.Set("with_genres", p.Genres)
	}
	if p.ReleaseDateGTE != "" {
		v.Set(dateGTE, p.ReleaseDateGTE)
	}
	if p.ReleaseDateLTE != "" {
		v.Set(dateLTE, p.ReleaseDateLTE)
	}
	if p.VoteAverageGTE > 0 {
		v.Set("vote_average.gte", strconv.FormatFloat(p.VoteAverageGTE, 'f', -1, 64))
	}
	if p.VoteCountGTE > 0 {
		v.Set("vote_count.gte", strconv.Itoa(p.VoteCountGTE))
	}
	if mediaType != MediaTypeTV {
		if p.WithCast != "" {
			v.Set("with_cast", p.WithCast)
		}
		if p.WithCrew != "" {
			v.Set("with_crew", p.WithCrew)
		}
	}
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = "popularity.desc"
	}
	v.Set("sort_by", sortBy)

	page := p.Page
	if page <= 0 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))

	return v
}
