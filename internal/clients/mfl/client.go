// Package mfl is the client for the MyFantasyLeague export API.
package mfl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/cache"
	"github.com/dynastyhq/gridiron/internal/clients"
)

// Client talks to the export endpoint. All requests identify themselves with
// the registered client agent string; the host silently throttles anonymous
// callers.
type Client struct {
	baseURL   string
	userAgent string
	year      string
	http      clients.HTTPDoer
	cache     *cache.Cache
	retry     clients.RetryConfig
	log       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPDoer overrides the HTTP client (for tests).
func WithHTTPDoer(doer clients.HTTPDoer) Option {
	return func(c *Client) { c.http = doer }
}

// WithCache enables response caching. Pass nil to disable.
func WithCache(respCache *cache.Cache) Option {
	return func(c *Client) { c.cache = respCache }
}

// NewClient creates an export API client for the given season year.
func NewClient(baseURL, userAgent, year string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		year:      year,
		http:      &http.Client{Timeout: 30 * time.Second},
		retry:     clients.DefaultRetryConfig(),
		log:       log.With().Str("client", "mfl").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// export issues a TYPE request against the export endpoint. Responses are
// cached per request type and parameters; on fetch failure a stale cached
// response is used when available (stale data > no data).
func (c *Client) export(ctx context.Context, requestType string, params url.Values) ([]byte, error) {
	query := url.Values{}
	for key, values := range params {
		for _, v := range values {
			query.Add(key, v)
		}
	}
	query.Set("TYPE", requestType)
	query.Set("JSON", "1")

	fullURL := fmt.Sprintf("%s/%s/export?%s", c.baseURL, c.year, query.Encode())
	cacheKey := "mfl:" + requestType + ":" + query.Encode()

	if c.cache != nil {
		if data, ok := c.cache.Get(cacheKey); ok {
			c.log.Debug().Str("type", requestType).Msg("Cache hit")
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("type", requestType).Str("url", fullURL).Msg("Fetching from MFL")

	body, err := clients.DoWithRetry(ctx, c.http, req, c.retry, c.log)
	if err != nil {
		if c.cache != nil {
			if stale, ok := c.cache.GetStale(cacheKey); ok {
				c.log.Warn().Err(err).Str("type", requestType).Msg("Fetch failed, using stale cached response")
				return stale, nil
			}
		}
		return nil, fmt.Errorf("MFL %s request failed: %w", requestType, err)
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, body)
	}
	return body, nil
}

// Players fetches the full player directory for the season.
func (c *Client) Players(ctx context.Context) ([]Player, error) {
	params := url.Values{}
	params.Set("DETAILS", "1")

	body, err := c.export(ctx, "players", params)
	if err != nil {
		return nil, err
	}

	var envelope playersEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse players response: %w", err)
	}
	if envelope.Error != "" {
		return nil, fmt.Errorf("MFL players error: %s", envelope.Error)
	}

	c.log.Info().Int("players", len(envelope.Players.Player)).Msg("Fetched player directory")
	return envelope.Players.Player, nil
}

// Rosters fetches every franchise's roster for the league.
func (c *Client) Rosters(ctx context.Context, leagueID string) ([]FranchiseRoster, error) {
	params := url.Values{}
	params.Set("L", leagueID)

	body, err := c.export(ctx, "rosters", params)
	if err != nil {
		return nil, err
	}

	var envelope rostersEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse rosters response: %w", err)
	}
	if envelope.Error != "" {
		return nil, fmt.Errorf("MFL rosters error: %s", envelope.Error)
	}

	return envelope.Rosters.Franchise, nil
}

// Standings fetches the league standings.
func (c *Client) Standings(ctx context.Context, leagueID string) ([]FranchiseStanding, error) {
	params := url.Values{}
	params.Set("L", leagueID)

	body, err := c.export(ctx, "leagueStandings", params)
	if err != nil {
		return nil, err
	}

	var envelope standingsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse standings response: %w", err)
	}
	if envelope.Error != "" {
		return nil, fmt.Errorf("MFL standings error: %s", envelope.Error)
	}

	return envelope.LeagueStandings.Franchise, nil
}

// League fetches the league configuration (franchise names, cap settings).
func (c *Client) League(ctx context.Context, leagueID string) (*League, error) {
	params := url.Values{}
	params.Set("L", leagueID)

	body, err := c.export(ctx, "league", params)
	if err != nil {
		return nil, err
	}

	var envelope leagueEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse league response: %w", err)
	}
	if envelope.Error != "" {
		return nil, fmt.Errorf("MFL league error: %s", envelope.Error)
	}

	return &envelope.League, nil
}
