package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flicksift/flicksift/internal/collections"
)

func (s *Server) listCollections(c echo.Context) error {
	ctx := c.Request().Context()

	cols, err := s.collectionsService.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if cols == nil {
		cols = []*collections.Collection{}
	}

	return c.JSON(http.StatusOK, cols)
}

func (s *Server) createCollection(c echo.Context) error {
	ctx := c.Request().Context()

	var col collections.Collection
	if err := c.Bind(&col); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if col.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	if err := s.collectionsService.Create(ctx, &col); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, col)
}

func (s *Server) getCollection(c echo.Context) error {
	ctx := c.Request().Context()

	col, err := s.collectionsService.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "collection not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, col)
}

func (s *Server) updateCollection(c echo.Context) error {
	ctx := c.Request().Context()

	var col collections.Collection
	if err := c.Bind(&col); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	col.ID = c.Param("id")

	if err := s.collectionsService.Update(ctx, &col); err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "collection not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, col)
}

func (s *Server) deleteCollection(c echo.Context) error {
	ctx := c.Request().Context()

	if err := s.collectionsService.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "collection not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}

// refreshCollection runs the discovery check for one collection immediately.
func (s *Server) refreshCollection(c echo.Context) error {
	ctx := c.Request().Context()

	newIDs, err := s.collectionsService.Refresh(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "collection not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if newIDs == nil {
		newIDs = []int{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"newItems": len(newIDs),
		"newIds":   newIDs,
	})
}
