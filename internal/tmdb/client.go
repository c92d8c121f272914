package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shocklateboy92/bonarr/internal/identify"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

var (
	ErrNotFound      = errors.New("tmdb: not found")
	ErrMissingAPIKey = errors.New("tmdb: api key not configured")
)

// Cache stores raw TMDB responses keyed by request path.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// Client is a TMDB API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      Cache
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCache enables response caching.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// NewClient creates a new TMDB client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: slog.With("component", "tmdb"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Show represents a TV show from TMDB
type Show struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	FirstAirDate string `json:"first_air_date"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
}

// Year extracts the year from the first air date
func (s *Show) Year() int {
	if len(s.FirstAirDate) < 4 {
		return 0
	}
	var year int
	fmt.Sscanf(s.FirstAirDate[:4], "%d", &year)
	return year
}

// Season represents a TV season from TMDB
type Season struct {
	ID           int       `json:"id"`
	SeasonNumber int       `json:"season_number"`
	Name         string    `json:"name"`
	Episodes     []Episode `json:"episodes"`
}

// Episode represents a TV episode from TMDB
type Episode struct {
	ID            int    `json:"id"`
	EpisodeNumber int    `json:"episode_number"`
	SeasonNumber  int    `json:"season_number"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	AirDate       string `json:"air_date"`
}

// CoreEpisodes converts the season's episodes to the matcher's episode type,
// keeping TMDB order.
func (s *Season) CoreEpisodes() []identify.Episode {
	out := make([]identify.Episode, 0, len(s.Episodes))
	for _, e := range s.Episodes {
		season := e.SeasonNumber
		if season == 0 {
			season = s.SeasonNumber
		}
		out = append(out, identify.Episode{
			EpisodeNumber: e.EpisodeNumber,
			SeasonNumber:  season,
			Name:          e.Name,
			AirDate:       e.AirDate,
		})
	}
	return out
}

// ShowDetails represents detailed show info including seasons
type ShowDetails struct {
	Show
	Seasons []SeasonSummary `json:"seasons"`
}

// SeasonSummary is the per-season entry of ShowDetails.
type SeasonSummary struct {
	ID           int    `json:"id"`
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
}

// GetShow fetches TV show details by TMDB ID
func (c *Client) GetShow(ctx context.Context, id int) (*ShowDetails, error) {
	details := &ShowDetails{}
	if err := c.get(ctx, fmt.Sprintf("/tv/%d", id), nil, details); err != nil {
		return nil, err
	}
	return details, nil
}

// GetSeason fetches season details including episodes
func (c *Client) GetSeason(ctx context.Context, showID int, seasonNumber int) (*Season, error) {
	season := &Season{}
	if err := c.get(ctx, fmt.Sprintf("/tv/%d/season/%d", showID, seasonNumber), nil, season); err != nil {
		return nil, err
	}
	return season, nil
}

// SearchShows searches for TV shows by title
func (c *Client) SearchShows(ctx context.Context, query string) ([]Show, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")

	var result struct {
		Results []Show `json:"results"`
	}
	if err := c.get(ctx, "/search/tv", params, &result); err != nil {
		return nil, err
	}

	return result.Results, nil
}

// get performs a GET request and decodes the response. Successful responses
// are served from and written to the cache when one is configured.
func (c *Client) get(ctx context.Context, path string, params url.Values, v interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	cacheKey := path
	if len(params) > 0 {
		cacheKey += "?" + params.Encode()
	}

	if c.cache != nil {
		data, ok, err := c.cache.Get(cacheKey)
		if err != nil {
			c.log.Warn("Cache read failed", "key", cacheKey, "error", err)
		} else if ok {
			if err := json.Unmarshal(data, v); err == nil {
				return nil
			}
			c.log.Warn("Discarding undecodable cache entry", "key", cacheKey)
		}
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}

	q := u.Query()
	for k, vals := range params {
		for _, val := range vals {
			q.Add(k, val)
		}
	}
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(cacheKey, data); err != nil {
			c.log.Warn("Cache write failed", "key", cacheKey, "error", err)
		}
	}

	return nil
}
