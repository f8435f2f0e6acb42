package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/modules/draft"
)

// DraftHandlers exposes the live auction over HTTP and websocket.
type DraftHandlers struct {
	log     zerolog.Logger
	service *draft.Service
	hub     *draft.Hub
}

// NewDraftHandlers creates a new draft handlers instance.
func NewDraftHandlers(log zerolog.Logger, service *draft.Service, hub *draft.Hub) *DraftHandlers {
	return &DraftHandlers{
		log:     log.With().Str("component", "draft_handlers").Logger(),
		service: service,
		hub:     hub,
	}
}

// HandleState handles GET /api/draft/state
func (h *DraftHandlers) HandleState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.State())
}

type startRequest struct {
	Teams []draft.TeamSeed `json:"teams"`
}

// HandleStart handles POST /api/draft/start
func (h *DraftHandlers) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	snapshot, err := h.service.Start(req.Teams)
	if err != nil {
		h.writeDraftError(w, err)
		return
	}

	h.log.Info().Int("teams", len(req.Teams)).Msg("Draft started via API")
	h.writeJSON(w, http.StatusOK, snapshot)
}

type nominateRequest struct {
	PlayerID    string  `json:"player_id"`
	FranchiseID string  `json:"franchise_id"`
	OpeningBid  float64 `json:"opening_bid"`
}

// HandleNominate handles POST /api/draft/nominate
func (h *DraftHandlers) HandleNominate(w http.ResponseWriter, r *http.Request) {
	var req nominateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	snapshot, err := h.service.Nominate(req.PlayerID, req.FranchiseID, req.OpeningBid)
	if err != nil {
		h.writeDraftError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot)
}

type bidRequest struct {
	FranchiseID string  `json:"franchise_id"`
	Amount      float64 `json:"amount"`
}

// HandleBid handles POST /api/draft/bid
func (h *DraftHandlers) HandleBid(w http.ResponseWriter, r *http.Request) {
	var req bidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	snapshot, err := h.service.Bid(req.FranchiseID, req.Amount)
	if err != nil {
		h.writeDraftError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot)
}

// HandleAward handles POST /api/draft/award
func (h *DraftHandlers) HandleAward(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Award()
	if err != nil {
		h.writeDraftError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot)
}

// HandleUndo handles POST /api/draft/undo
func (h *DraftHandlers) HandleUndo(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.UndoLastPick()
	if err != nil {
		h.writeDraftError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot)
}

// HandleWebsocket handles GET /api/draft/ws
// Streams draft snapshots to the dashboard, starting with the current state.
func (h *DraftHandlers) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	h.hub.ServeWS(w, r, h.service.State())
}

// writeDraftError maps draft rule violations to conflict responses so the
// dashboard can distinguish them from bad requests.
func (h *DraftHandlers) writeDraftError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, draft.ErrDraftInProgress),
		errors.Is(err, draft.ErrNominationOpen),
		errors.Is(err, draft.ErrBidTooLow),
		errors.Is(err, draft.ErrInsufficientBudget):
		status = http.StatusConflict
	case errors.Is(err, draft.ErrNoActiveDraft),
		errors.Is(err, draft.ErrNoActiveNomination):
		status = http.StatusPreconditionFailed
	}

	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *DraftHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
