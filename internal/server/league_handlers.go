package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/modules/league"
)

// LeagueHandlers serves standings and roster views.
type LeagueHandlers struct {
	log     zerolog.Logger
	service *league.Service
}

// NewLeagueHandlers creates a new league handlers instance.
func NewLeagueHandlers(log zerolog.Logger, service *league.Service) *LeagueHandlers {
	return &LeagueHandlers{
		log:     log.With().Str("component", "league_handlers").Logger(),
		service: service,
	}
}

// HandleStandings handles GET /api/league/standings
func (h *LeagueHandlers) HandleStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.service.Standings(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load standings")
		http.Error(w, "Failed to load standings", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"standings": standings,
		"count":     len(standings),
	})
}

// HandleRosters handles GET /api/league/rosters
func (h *LeagueHandlers) HandleRosters(w http.ResponseWriter, r *http.Request) {
	rosters, err := h.service.Rosters(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load rosters")
		http.Error(w, "Failed to load rosters", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"rosters": rosters,
		"count":   len(rosters),
	})
}

func (h *LeagueHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
