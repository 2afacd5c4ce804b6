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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mediaarchive/internal/domain/ports"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	imageBaseURL    = "https://image.tmdb.org/t/p/"
	defaultLanguage = "tr-TR"
	cacheKeyPrefix  = "tmdb:"
	maxBodyBytes    = 2 << 20
)

var ErrNotFound = errors.New("tmdb: resource not found")

type Client struct {
	apiKey   string
	baseURL  string
	language string
	http     *http.Client
	cache    ports.Cache
	cacheTTL time.Duration
}

type Config struct {
	APIKey   string
	BaseURL  string
	Language string
	Client   *http.Client
	Cache    ports.Cache
	CacheTTL time.Duration
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = defaultLanguage
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 7 * 24 * time.Hour
	}
	return &Client{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		http:     httpClient,
		cache:    cfg.Cache,
		cacheTTL: cacheTTL,
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

func (c *Client) SearchMovie(ctx context.Context, query string, year int) ([]SearchResult, error) {
	params := url.Values{"query": {strings.TrimSpace(query)}}
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	var resp searchResponse
	if err := c.get(ctx, "/search/movie", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) SearchTV(ctx context.Context, query string, year int) ([]SearchResult, error) {
	params := url.Values{"query": {strings.TrimSpace(query)}}
	if year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(year))
	}
	var resp searchResponse
	if err := c.get(ctx, "/search/tv", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// FindByIMDb resolves an IMDb id to TMDB movie and tv results.
func (c *Client) FindByIMDb(ctx context.Context, imdbID string) (FindResult, error) {
	var resp FindResult
	err := c.get(ctx, "/find/"+url.PathEscape(imdbID), url.Values{"external_source": {"imdb_id"}}, &resp)
	return resp, err
}

func (c *Client) MovieDetails(ctx context.Context, id int) (*Details, error) {
	return c.details(ctx, "/movie/"+strconv.Itoa(id))
}

func (c *Client) TVDetails(ctx context.Context, id int) (*Details, error) {
	return c.details(ctx, "/tv/"+strconv.Itoa(id))
}

func (c *Client) details(ctx context.Context, path string) (*Details, error) {
	params := url.Values{
		"append_to_response":     {"external_ids,credits,images"},
		"include_image_language": {"en,null"},
	}
	var d Details
	if err := c.get(ctx, path, params, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) Episode(ctx context.Context, seriesID, season, episode int) (*EpisodeDetails, error) {
	path := fmt.Sprintf("/tv/%d/season/%d/episode/%d", seriesID, season, episode)
	var e EpisodeDetails
	if err := c.get(ctx, path, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// get performs a cached GET. The api key is never part of the cache key.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if !c.Enabled() {
		return errors.New("tmdb: api key not configured")
	}
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("language", c.language)
	cacheKey := cacheKeyPrefix + path + "?" + query.Encode()

	if c.cache != nil {
		if data, ok, err := c.cache.Get(ctx, cacheKey); err == nil && ok {
			if json.Unmarshal(data, out) == nil {
				return nil
			}
		}
	}

	query.Set("api_key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("tmdb HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return err
	}
	if c.cache != nil {
		_ = c.cache.Set(ctx, cacheKey, body, c.cacheTTL)
	}
	return nil
}
