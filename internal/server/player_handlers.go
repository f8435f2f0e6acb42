package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/clients/sleeper"
	"github.com/dynastyhq/gridiron/internal/config"
	"github.com/dynastyhq/gridiron/internal/domain"
	"github.com/dynastyhq/gridiron/internal/modules/players"
	"github.com/dynastyhq/gridiron/internal/valuation"
)

// TrendingHost supplies the trending-adds feed. Optional.
type TrendingHost interface {
	Players(ctx context.Context) (map[string]sleeper.Player, error)
	Trending(ctx context.Context, lookbackHours, limit int) ([]sleeper.TrendingPlayer, error)
}

// PlayerHandlers serves the player pool and the valuation views over it.
type PlayerHandlers struct {
	log      zerolog.Logger
	repo     *players.Repository
	trending TrendingHost
	cfg      *config.Config
}

// NewPlayerHandlers creates a new player handlers instance. trending may be nil.
func NewPlayerHandlers(log zerolog.Logger, repo *players.Repository, trending TrendingHost, cfg *config.Config) *PlayerHandlers {
	return &PlayerHandlers{
		log:      log.With().Str("component", "player_handlers").Logger(),
		repo:     repo,
		trending: trending,
		cfg:      cfg,
	}
}

// HandleFreeAgents handles GET /api/players
// Query params: position, ranked=true, limit.
func (h *PlayerHandlers) HandleFreeAgents(w http.ResponseWriter, r *http.Request) {
	query := players.FreeAgentQuery{}

	if raw := r.URL.Query().Get("position"); raw != "" {
		position := domain.ParsePosition(raw)
		if position == domain.PositionUnknown {
			http.Error(w, "Unknown position: "+raw, http.StatusBadRequest)
			return
		}
		query.Position = position
	}
	if r.URL.Query().Get("ranked") == "true" {
		query.RankedOnly = true
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			query.Limit = n
		}
	}

	list, err := h.repo.FreeAgents(h.cfg.LeagueID, query)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load free agents")
		http.Error(w, "Failed to load free agents", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"players": list,
		"count":   len(list),
	})
}

// HandleGetPlayer handles GET /api/players/{playerID}
func (h *PlayerHandlers) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	player, err := h.repo.GetByID(playerID)
	if err != nil {
		h.log.Error().Err(err).Str("player_id", playerID).Msg("Failed to load player")
		http.Error(w, "Failed to load player", http.StatusInternalServerError)
		return
	}
	if player == nil {
		http.Error(w, "Player not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, player)
}

// HandleCounts handles GET /api/players/counts
func (h *PlayerHandlers) HandleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.repo.CountByLeague(h.cfg.LeagueID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to count players")
		http.Error(w, "Failed to count players", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, counts)
}

// ValuedPlayer pairs a pool player with its auction valuation.
type ValuedPlayer struct {
	Player domain.PlayerRecord `json:"player"`
	Result valuation.Result    `json:"valuation"`
}

// HandleValuations handles GET /api/valuations
// Values the free-agent pool (or the full pool with scope=all), sorted
// descending by auction value.
func (h *PlayerHandlers) HandleValuations(w http.ResponseWriter, r *http.Request) {
	pool, scope, err := h.loadPool(r)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load player pool")
		http.Error(w, "Failed to load player pool", http.StatusInternalServerError)
		return
	}

	settings := h.settings(r)
	results := valuation.ValueAll(pool, settings)

	valued := make([]ValuedPlayer, len(pool))
	for i := range pool {
		valued[i] = ValuedPlayer{Player: pool[i], Result: results[i]}
	}
	sort.SliceStable(valued, func(i, j int) bool {
		return valued[i].Result.AuctionValue > valued[j].Result.AuctionValue
	})

	scarcity := map[domain.Position]float64{}
	for _, position := range []domain.Position{domain.PositionQB, domain.PositionRB, domain.PositionWR, domain.PositionTE} {
		scarcity[position] = valuation.PositionalScarcity(position, pool)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"scope":    scope,
		"settings": settings,
		"scarcity": scarcity,
		"players":  valued,
		"count":    len(valued),
	})
}

// TrendingEntry is one trending add, joined against the local pool when the
// player is known there.
type TrendingEntry struct {
	SleeperID  string          `json:"sleeper_id"`
	Name       string          `json:"name"`
	Position   domain.Position `json:"position,omitempty"`
	Team       string          `json:"team,omitempty"`
	AddCount   int             `json:"add_count"`
	InjuryNote string          `json:"injury_note,omitempty"`
}

// HandleTrending handles GET /api/players/trending
// Surfaces the most-added players over the last day as waiver-wire signal.
func (h *PlayerHandlers) HandleTrending(w http.ResponseWriter, r *http.Request) {
	if h.trending == nil {
		http.Error(w, "Trending feed not configured", http.StatusServiceUnavailable)
		return
	}

	limit := 25
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	adds, err := h.trending.Trending(r.Context(), 24, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load trending adds")
		http.Error(w, "Failed to load trending adds", http.StatusBadGateway)
		return
	}

	directory, err := h.trending.Players(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to load player directory, returning bare IDs")
		directory = map[string]sleeper.Player{}
	}

	entries := make([]TrendingEntry, 0, len(adds))
	for _, add := range adds {
		entry := TrendingEntry{SleeperID: add.PlayerID, AddCount: add.Count}
		if player, ok := directory[add.PlayerID]; ok {
			entry.Name = player.FullName()
			entry.Position = domain.ParsePosition(player.Position)
			entry.Team = player.Team
			entry.InjuryNote = player.InjuryStatus
		}
		entries = append(entries, entry)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"trending": entries,
		"count":    len(entries),
	})
}

// HandleTiers handles GET /api/tiers
func (h *PlayerHandlers) HandleTiers(w http.ResponseWriter, r *http.Request) {
	pool, scope, err := h.loadPool(r)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load player pool")
		http.Error(w, "Failed to load player pool", http.StatusInternalServerError)
		return
	}

	settings := h.settings(r)
	tiers := valuation.TierPlayers(pool, settings)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"scope":    scope,
		"settings": settings,
		"tiers":    tiers,
	})
}

// loadPool fetches the valuation pool. Free agents by default; scope=all
// includes rostered players for trade-value views.
func (h *PlayerHandlers) loadPool(r *http.Request) ([]domain.PlayerRecord, string, error) {
	if r.URL.Query().Get("scope") == "all" {
		pool, err := h.repo.ByLeague(h.cfg.LeagueID)
		return pool, "all", err
	}
	pool, err := h.repo.FreeAgents(h.cfg.LeagueID, players.FreeAgentQuery{})
	return pool, "free-agents", err
}

// settings builds valuation settings from league config, with optional
// per-request overrides.
func (h *PlayerHandlers) settings(r *http.Request) valuation.Settings {
	settings := valuation.Settings{
		TotalBudget:   h.cfg.TotalBudget,
		NumTeams:      h.cfg.NumTeams,
		RosterSize:    h.cfg.RosterSize,
		CurrentYear:   h.cfg.CurrentYear(),
		BlendRankings: true,
	}

	if v := r.URL.Query().Get("budget"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			settings.TotalBudget = n
		}
	}
	if r.URL.Query().Get("blend") == "false" {
		settings.BlendRankings = false
	}

	return settings
}

func (h *PlayerHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
