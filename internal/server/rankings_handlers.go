package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/config"
	"github.com/dynastyhq/gridiron/internal/modules/rankings"
)

// maxSheetBytes bounds an uploaded ranking sheet. Real sheets are a few
// hundred lines of text.
const maxSheetBytes = 1 << 20

// RankingHandlers serves uploaded ranking sheets.
type RankingHandlers struct {
	log  zerolog.Logger
	repo *rankings.Repository
	cfg  *config.Config
}

// NewRankingHandlers creates a new ranking handlers instance.
func NewRankingHandlers(log zerolog.Logger, repo *rankings.Repository, cfg *config.Config) *RankingHandlers {
	return &RankingHandlers{
		log:  log.With().Str("component", "ranking_handlers").Logger(),
		repo: repo,
		cfg:  cfg,
	}
}

type uploadRequest struct {
	Text string `json:"text"`
}

// HandleUpload handles POST /api/rankings/upload
// Accepts a pasted ranking sheet either as JSON {"text": "..."} or as a raw
// text body, parses it and replaces the stored sheet for the league year.
func (h *RankingHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSheetBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	text := string(body)
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var req uploadRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
		text = req.Text
	}

	entries := rankings.ParseSheet(text)
	if len(entries) == 0 {
		http.Error(w, "No ranking rows found in sheet", http.StatusBadRequest)
		return
	}

	year := h.cfg.CurrentYear()
	if err := h.repo.Replace(h.cfg.LeagueID, year, entries); err != nil {
		h.log.Error().Err(err).Msg("Failed to store ranking sheet")
		http.Error(w, "Failed to store ranking sheet", http.StatusInternalServerError)
		return
	}

	h.log.Info().Int("entries", len(entries)).Int("year", year).Msg("Ranking sheet uploaded")
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"year":    year,
		"entries": len(entries),
	})
}

// HandleList handles GET /api/rankings
func (h *RankingHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.List(h.cfg.LeagueID, h.cfg.CurrentYear())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load rankings")
		http.Error(w, "Failed to load rankings", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"rankings": entries,
		"count":    len(entries),
	})
}

// HandleDelete handles DELETE /api/rankings
func (h *RankingHandlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.repo.Delete(h.cfg.LeagueID, h.cfg.CurrentYear())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to delete rankings")
		http.Error(w, "Failed to delete rankings", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"deleted": deleted,
	})
}

func (h *RankingHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
