package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/flicksift/flicksift/internal/config"
)

var (
	ErrAPIKeyMissing = errors.New("TMDB API key is not configured")
	ErrNotFound      = errors.New("content not found")
	ErrAPIError      = errors.New("TMDB API error")
	ErrRateLimited   = errors.New("TMDB API rate limited")
)

// Client is a TMDB API client.
type Client struct {
	httpClient *http.Client
	config     config.TMDBConfig
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "tmdb").Logger(),
	}
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Test verifies connectivity to the TMDB API by making a configuration request.
func (c *Client) Test(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/configuration", c.config.BaseURL)
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)

	var result struct {
		Images struct {
			BaseURL string `json:"base_url"`
		} `json:"images"`
	}

	return c.doRequest(ctx, endpoint, params, &result)
}

// SearchPage fetches a single page of search results for the given query.
// mediaType selects the endpoint: "movie", "tv", or "all" (multi-search,
// with person entries dropped).
func (c *Client) SearchPage(ctx context.Context, query, mediaType string, page int) (*Page, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	var endpoint string
	switch mediaType {
	case MediaTypeMovie:
		endpoint = fmt.Sprintf("%s/search/movie", c.config.BaseURL)
	case MediaTypeTV:
		endpoint = fmt.Sprintf("%s/search/tv", c.config.BaseURL)
	default:
		endpoint = fmt.Sprintf("%s/search/multi", c.config.BaseURL)
	}

	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("page", strconv.Itoa(page))

	var response SearchResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}

	items := make([]ContentItem, 0, len(response.Results))
	for _, r := range response.Results {
		item, ok := normalizeResult(r, mediaType)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	c.logger.Debug().
		Str("query", query).
		Str("mediaType", mediaType).
		Int("page", page).
		Int("results", len(items)).
		Int("totalResults", response.TotalResults).
		Msg("Search page fetched")

	return &Page{
		Items:        items,
		Page:         response.Page,
		TotalPages:   response.TotalPages,
		TotalResults: response.TotalResults,
	}, nil
}

// Discover fetches one page of discovery results for the given media type.
func (c *Client) Discover(ctx context.Context, mediaType string, p DiscoverParams) ([]ContentItem, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	var endpoint string
	switch mediaType {
	case MediaTypeTV:
		endpoint = fmt.Sprintf("%s/discover/tv", c.config.BaseURL)
	default:
		endpoint = fmt.Sprintf("%s/discover/movie", c.config.BaseURL)
	}

	params := p.Values(mediaType)
	params.Set("api_key", c.config.APIKey)

	var response DiscoverResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}

	items := make([]ContentItem, 0, len(response.Results))
	for _, r := range response.Results {
		item, ok := normalizeResult(r, mediaType)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	c.logger.Debug().
		Str("mediaType", mediaType).
		Int("results", len(items)).
		Msg("Discover page fetched")

	return items, nil
}

// GetMovie gets detailed movie info by TMDB ID.
func (c *Client) GetMovie(ctx context.Context, id int) (*MovieDetails, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/movie/%d", c.config.BaseURL, id)
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)

	var details MovieDetails
	if err := c.doRequest(ctx, endpoint, params, &details); err != nil {
		return nil, err
	}

	return &details, nil
}

// doRequest performs an HTTP GET request and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			c.logger.Error().
				Int("status", resp.StatusCode).
				Str("message", errResp.StatusMessage).
				Msg("TMDB API error")
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: invalid API key", ErrAPIError)
		case http.StatusTooManyRequests:
			return ErrRateLimited
		default:
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// normalizeResult converts a raw search result to a ContentItem. The second
// return value is false for entries that are neither movie nor TV (multi
// search includes people).
func normalizeResult(r SearchResult, requested string) (ContentItem, bool) {
	mediaType := r.MediaType
	if mediaType == "" {
		// Single-type endpoints omit media_type; the request tells us.
		mediaType = requested
	}
	if mediaType != MediaTypeMovie && mediaType != MediaTypeTV {
		return ContentItem{}, false
	}

	item := ContentItem{
		ID:          r.ID,
		MediaType:   mediaType,
		Overview:    r.Overview,
		VoteAverage: r.VoteAverage,
		VoteCount:   r.VoteCount,
		Popularity:  r.Popularity,
		GenreIDs:    r.GenreIDs,
	}

	if mediaType == MediaTypeTV {
		item.Title = r.Name
		item.ReleaseDate = r.FirstAirDate
	} else {
		item.Title = r.Title
		item.ReleaseDate = r.ReleaseDate
	}

	if r.PosterPath != nil {
		item.PosterPath = *r.PosterPath
	}
	if r.BackdropPath != nil {
		item.BackdropPath = *r.BackdropPath
	}

	return item, true
}
