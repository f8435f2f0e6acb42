// Package sleeper is the client for the unauthenticated Sleeper public API.
// Sleeper supplies supplemental player metadata (age, experience, injury
// status, search rank) used to enrich records the primary host leaves sparse.
package sleeper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/cache"
	"github.com/dynastyhq/gridiron/internal/clients"
)

// Player is one entry from the players directory.
type Player struct {
	PlayerID     string `json:"player_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Position     string `json:"position"`
	Team         string `json:"team"`
	Age          *int   `json:"age"`
	YearsExp     *int   `json:"years_exp"`
	SearchRank   *int   `json:"search_rank"`
	InjuryStatus string `json:"injury_status"`
	Status       string `json:"status"`
}

// FullName joins first and last name the way display names are matched.
func (p Player) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	return p.FirstName + " " + p.LastName
}

// TrendingPlayer is one entry from the trending endpoint.
type TrendingPlayer struct {
	PlayerID string `json:"player_id"`
	Count    int    `json:"count"`
}

// Client talks to api.sleeper.app. No authentication required.
type Client struct {
	baseURL string
	http    clients.HTTPDoer
	cache   *cache.Cache
	retry   clients.RetryConfig
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPDoer overrides the HTTP client (for tests).
func WithHTTPDoer(doer clients.HTTPDoer) Option {
	return func(c *Client) { c.http = doer }
}

// WithCache enables response caching. The players directory is several
// megabytes, so caching it matters more here than for the other hosts.
func WithCache(respCache *cache.Cache) Option {
	return func(c *Client) { c.cache = respCache }
}

// NewClient creates a Sleeper API client.
func NewClient(baseURL string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
		retry:   clients.DefaultRetryConfig(),
		log:     log.With().Str("client", "sleeper").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) fetch(ctx context.Context, path, cacheKey string) ([]byte, error) {
	if c.cache != nil {
		if data, ok := c.cache.Get(cacheKey); ok {
			c.log.Debug().Str("path", path).Msg("Cache hit")
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := clients.DoWithRetry(ctx, c.http, req, c.retry, c.log)
	if err != nil {
		if c.cache != nil {
			if stale, ok := c.cache.GetStale(cacheKey); ok {
				c.log.Warn().Err(err).Str("path", path).Msg("Fetch failed, using stale cached response")
				return stale, nil
			}
		}
		return nil, fmt.Errorf("sleeper %s request failed: %w", path, err)
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, body)
	}
	return body, nil
}

// Players fetches the full NFL player directory, keyed by Sleeper player ID.
func (c *Client) Players(ctx context.Context) (map[string]Player, error) {
	body, err := c.fetch(ctx, "/v1/players/nfl", "sleeper:players")
	if err != nil {
		return nil, err
	}

	var players map[string]Player
	if err := json.Unmarshal(body, &players); err != nil {
		return nil, fmt.Errorf("failed to parse players response: %w", err)
	}

	c.log.Info().Int("players", len(players)).Msg("Fetched Sleeper player directory")
	return players, nil
}

// Trending fetches the most-added players over the lookback window.
func (c *Client) Trending(ctx context.Context, lookbackHours, limit int) ([]TrendingPlayer, error) {
	path := fmt.Sprintf("/v1/players/nfl/trending/add?lookback_hours=%d&limit=%d", lookbackHours, limit)
	cacheKey := "sleeper:trending:" + strconv.Itoa(lookbackHours) + ":" + strconv.Itoa(limit)

	body, err := c.fetch(ctx, path, cacheKey)
	if err != nil {
		return nil, err
	}

	var trending []TrendingPlayer
	if err := json.Unmarshal(body, &trending); err != nil {
		return nil, fmt.Errorf("failed to parse trending response: %w", err)
	}
	return trending, nil
}
