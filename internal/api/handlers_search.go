package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flicksift/flicksift/internal/search"
	"github.com/flicksift/flicksift/internal/tmdb"
)

// doSearch runs a paged, filtered search.
// GET /api/v1/search?q=...&type=movie&rating=7.0%2B&years=2010s&sort=popularity.desc&loadAll=true&slot=main
func (s *Server) doSearch(c echo.Context) error {
	ctx := c.Request().Context()

	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "q is required"})
	}

	mediaType := c.QueryParam("type")
	switch mediaType {
	case "", tmdb.MediaTypeAll, tmdb.MediaTypeMovie, tmdb.MediaTypeTV:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "type must be all, movie, or tv"})
	}

	req := search.Request{
		Query:     query,
		MediaType: mediaType,
		Slot:      c.QueryParam("slot"),
		LoadAll:   c.QueryParam("loadAll") == "true",
		Filters: search.FilterConfig{
			ContentType:  c.QueryParam("type"),
			RatingBucket: c.QueryParam("rating"),
			YearBucket:   c.QueryParam("years"),
			SortKey:      c.QueryParam("sort"),
		},
	}

	result, err := s.searchService.Search(ctx, req)
	if err != nil {
		if errors.Is(err, search.ErrSuperseded) {
			// A newer query took the slot; this response must never be
			// rendered as current state.
			return c.JSON(http.StatusConflict, map[string]string{"error": "superseded by a newer search"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}
