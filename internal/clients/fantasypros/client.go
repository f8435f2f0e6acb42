// Package fantasypros is the client for the FantasyPros public v2 API.
package fantasypros

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/cache"
	"github.com/dynastyhq/gridiron/internal/clients"
	"github.com/dynastyhq/gridiron/internal/domain"
)

// Client talks to api.fantasypros.com. Requests are authenticated with an
// x-api-key header and paced to stay under the key's rate limit.
type Client struct {
	baseURL     string
	apiKey      string
	season      string
	scoring     string
	http        clients.HTTPDoer
	cache       *cache.Cache
	retry       clients.RetryConfig
	log         zerolog.Logger
	pace        time.Duration
	lastRequest time.Time
	sleep       func(time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPDoer overrides the HTTP client (for tests).
func WithHTTPDoer(doer clients.HTTPDoer) Option {
	return func(c *Client) { c.http = doer }
}

// WithCache enables response caching.
func WithCache(respCache *cache.Cache) Option {
	return func(c *Client) { c.cache = respCache }
}

// WithPacing overrides the minimum interval between requests (for tests).
func WithPacing(interval time.Duration, sleep func(time.Duration)) Option {
	return func(c *Client) {
		c.pace = interval
		c.sleep = sleep
	}
}

// NewClient creates a rankings API client for the given season.
func NewClient(baseURL, apiKey, season string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		season:  season,
		scoring: "PPR",
		http:    &http.Client{Timeout: 30 * time.Second},
		retry:   clients.DefaultRetryConfig(),
		log:     log.With().Str("client", "fantasypros").Logger(),
		pace:    300 * time.Millisecond,
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rateLimit enforces the minimum interval between outbound requests.
func (c *Client) rateLimit() {
	elapsed := time.Since(c.lastRequest)
	if elapsed < c.pace {
		c.sleep(c.pace - elapsed)
	}
	c.lastRequest = time.Now()
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	fullURL := fmt.Sprintf("%s/nfl/%s/%s?%s", c.baseURL, c.season, endpoint, params.Encode())
	cacheKey := "fantasypros:" + endpoint + ":" + params.Encode()

	if c.cache != nil {
		if data, ok := c.cache.Get(cacheKey); ok {
			c.log.Debug().Str("endpoint", endpoint).Msg("Cache hit")
			return data, nil
		}
	}

	c.rateLimit()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("endpoint", endpoint).Str("url", fullURL).Msg("Fetching from FantasyPros")

	body, err := clients.DoWithRetry(ctx, c.http, req, c.retry, c.log)
	if err != nil {
		if c.cache != nil {
			if stale, ok := c.cache.GetStale(cacheKey); ok {
				c.log.Warn().Err(err).Str("endpoint", endpoint).Msg("Fetch failed, using stale cached response")
				return stale, nil
			}
		}
		return nil, fmt.Errorf("FantasyPros %s request failed: %w", endpoint, err)
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, body)
	}
	return body, nil
}

// rankedPlayer is one row of the consensus-rankings response.
type rankedPlayer struct {
	Name         string   `json:"player_name"`
	TeamID       string   `json:"player_team_id"`
	PositionID   string   `json:"player_position_id"`
	RankECR      int      `json:"rank_ecr"`
	PositionRank string   `json:"pos_rank"`
	Tier         *int     `json:"tier"`
	ByeWeek      *flexInt `json:"player_bye_week"`
}

type rankingsEnvelope struct {
	Count        int            `json:"count"`
	TotalExperts int            `json:"total_experts"`
	LastUpdated  string         `json:"last_updated"`
	Players      []rankedPlayer `json:"players"`
}

// ConsensusRankings fetches the expert consensus rankings for one position
// group, reshaped into domain records. The position argument is a rankings
// host code (QB, RB, WR, TE, DL, LB, DB, ...).
func (c *Client) ConsensusRankings(ctx context.Context, position domain.Position) ([]domain.RankingRecord, error) {
	params := url.Values{}
	params.Set("scoring", c.scoring)
	params.Set("position", string(position))

	body, err := c.fetch(ctx, "consensus-rankings", params)
	if err != nil {
		return nil, err
	}

	var envelope rankingsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse rankings response: %w", err)
	}

	records := make([]domain.RankingRecord, 0, len(envelope.Players))
	for _, p := range envelope.Players {
		records = append(records, domain.RankingRecord{
			Name:         p.Name,
			Team:         p.TeamID,
			Position:     position,
			Rank:         p.RankECR,
			PositionRank: p.PositionRank,
			Tier:         p.Tier,
			ByeWeek:      p.ByeWeek.IntPtr(),
		})
	}

	c.log.Info().Str("position", string(position)).Int("players", len(records)).Msg("Fetched consensus rankings")
	return records, nil
}

// Projection is one player's projected season stat line.
type Projection struct {
	Name     string
	Team     string
	Position string
	Points   float64
}

type projectedPlayer struct {
	Name       string `json:"name"`
	TeamID     string `json:"team_id"`
	PositionID string `json:"position_id"`
	Stats      struct {
		Points float64 `json:"points"`
	} `json:"stats"`
}

type projectionsEnvelope struct {
	Season  json.Number       `json:"season"`
	Players []projectedPlayer `json:"players"`
}

// Projections fetches season point projections for one position group.
func (c *Client) Projections(ctx context.Context, position domain.Position) ([]Projection, error) {
	params := url.Values{}
	params.Set("scoring", c.scoring)
	params.Set("position", string(position))

	body, err := c.fetch(ctx, "projections", params)
	if err != nil {
		return nil, err
	}

	var envelope projectionsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse projections response: %w", err)
	}

	projections := make([]Projection, 0, len(envelope.Players))
	for _, p := range envelope.Players {
		projections = append(projections, Projection{
			Name:     p.Name,
			Team:     p.TeamID,
			Position: p.PositionID,
			Points:   p.Stats.Points,
		})
	}
	return projections, nil
}

// flexInt decodes a JSON number or numeric string. The bye-week field
// switches between the two depending on the endpoint.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(string(data), `"`)
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	var n int
	if err := json.Unmarshal([]byte(trimmed), &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// IntPtr returns the value as *int, nil for a nil receiver.
func (f *flexInt) IntPtr() *int {
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}
