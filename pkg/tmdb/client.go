// Package tmdb provides the remote metadata service client used to enrich
// catalogue titles with budget, revenue and rating data, together with the
// cooperative rate limiter that keeps the pipeline inside the service's
// call quota.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrMissingRateReset reports a response without a usable X-RateLimit-Reset
// header. There is no fallback wait policy, so callers must treat this as
// fatal for the batch rather than guess a wait time.
var ErrMissingRateReset = errors.New("tmdb response missing X-RateLimit-Reset header")

// Result represents a single TMDB search candidate. The raw fields are kept
// as returned so the candidate cache can persist them unmodified.
type Result struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// Detail is the full movie record fetched for a resolved match.
type Detail struct {
	Budget      int64   `json:"budget"`
	Revenue     int64   `json:"revenue"`
	VoteAverage float64 `json:"vote_average"`
	IMDBID      string  `json:"imdb_id"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// API defines the remote operations the enrichment stages depend on. Both
// calls return the service's advertised quota-reset epoch alongside the
// payload so the caller can feed the rate limiter.
type API interface {
	SearchMovie(ctx context.Context, query string) ([]Result, int64, error)
	MovieDetails(ctx context.Context, movieID int64) (*Detail, int64, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL string, logger *zap.Logger, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.Named("tmdb-client"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchMovie queries the service for candidates matching the title. A body
// with an unexpected shape yields zero candidates rather than an error; the
// quota-reset header is required on every response, successful or empty.
func (c *Client) SearchMovie(ctx context.Context, query string) ([]Result, int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, errors.New("query must not be empty")
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)

	body, reset, err := c.get(ctx, c.baseURL+"/search/movie", params)
	if err != nil {
		return nil, 0, err
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("Malformed search response, treating as zero candidates",
			zap.String("query", query),
			zap.Error(err))
		return nil, reset, nil
	}
	return payload.Results, reset, nil
}

// MovieDetails fetches the full record for a TMDB id. A malformed body
// yields a nil detail rather than an error.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*Detail, int64, error) {
	if movieID <= 0 {
		return nil, 0, errors.New("movie id must be positive")
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)

	body, reset, err := c.get(ctx, fmt.Sprintf("%s/movie/%d", c.baseURL, movieID), params)
	if err != nil {
		return nil, 0, err
	}

	var payload Detail
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("Malformed detail response",
			zap.Int64("movie_id", movieID),
			zap.Error(err))
		return nil, reset, nil
	}
	return &payload, reset, nil
}

func (c *Client) get(ctx context.Context, rawURL string, params url.Values) ([]byte, int64, error) {
	endpoint, err := url.Parse(rawURL)
	if err != nil {
		return nil, 0, fmt.Errorf("parse tmdb url: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, 0, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("tmdb returned %d (latency=%v)", resp.StatusCode, latency)
	}

	reset, err := parseRateReset(resp.Header)
	if err != nil {
		return nil, 0, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read tmdb response: %w", err)
	}
	return body, reset, nil
}

func parseRateReset(header http.Header) (int64, error) {
	value := header.Get("X-RateLimit-Reset")
	if value == "" {
		return 0, ErrMissingRateReset
	}
	reset, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable value %q", ErrMissingRateReset, value)
	}
	return reset, nil
}
