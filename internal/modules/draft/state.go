// Package draft runs the live auction draft room: in-memory auction state
// (nominations, bids, budgets), valuation-backed suggested values, and a
// websocket hub pushing every state change to connected dashboards.
package draft

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/domain"
)

var (
	ErrNoActiveDraft      = errors.New("no active draft")
	ErrDraftInProgress    = errors.New("draft already in progress")
	ErrNoActiveNomination = errors.New("no player is nominated")
	ErrNominationOpen     = errors.New("a nomination is already open")
	ErrUnknownFranchise   = errors.New("unknown franchise")
	ErrBidTooLow          = errors.New("bid does not beat the current high bid")
	ErrInsufficientBudget = errors.New("franchise cannot afford this bid")
)

// Team is one franchise's draft position.
type Team struct {
	FranchiseID string  `json:"franchise_id"`
	Name        string  `json:"name"`
	Budget      float64 `json:"budget"`
	Spent       float64 `json:"spent"`
	Picks       []Pick  `json:"picks"`
}

// Remaining returns the franchise's unspent budget.
func (t *Team) Remaining() float64 { return t.Budget - t.Spent }

// Pick is one completed auction purchase.
type Pick struct {
	PlayerID    string          `json:"player_id"`
	PlayerName  string          `json:"player_name"`
	Position    domain.Position `json:"position"`
	FranchiseID string          `json:"franchise_id"`
	Salary      float64         `json:"salary"`
	At          time.Time       `json:"at"`
}

// Nomination is the player currently on the block.
type Nomination struct {
	PlayerID       string          `json:"player_id"`
	PlayerName     string          `json:"player_name"`
	Position       domain.Position `json:"position"`
	NominatedBy    string          `json:"nominated_by"`
	CurrentBid     float64         `json:"current_bid"`
	HighBidder     string          `json:"high_bidder"`
	SuggestedValue int             `json:"suggested_value,omitempty"`
}

// Snapshot is the full draft state pushed to dashboards.
type Snapshot struct {
	Active     bool        `json:"active"`
	Teams      []Team      `json:"teams"`
	Nomination *Nomination `json:"nomination,omitempty"`
	PickCount  int         `json:"pick_count"`
}

// ValueFunc returns the suggested auction value for a player, 0 when
// unknown. Wired to the valuation engine at startup.
type ValueFunc func(playerID string) int

// PlayerLookup resolves player IDs for nominations.
type PlayerLookup interface {
	GetByID(mflID string) (*domain.PlayerRecord, error)
}

// Service holds the auction state. All mutations are serialized behind one
// mutex and broadcast to the hub after every change.
type Service struct {
	mu         sync.Mutex
	teams      map[string]*Team
	order      []string // franchise ID order, stable for snapshots
	nomination *Nomination
	picks      []Pick
	active     bool

	lookup    PlayerLookup
	value     ValueFunc
	broadcast func(Snapshot)
	log       zerolog.Logger
}

// NewService creates a draft service. broadcast may be nil (no hub).
func NewService(lookup PlayerLookup, value ValueFunc, broadcast func(Snapshot), log zerolog.Logger) *Service {
	if value == nil {
		value = func(string) int { return 0 }
	}
	if broadcast == nil {
		broadcast = func(Snapshot) {}
	}
	return &Service{
		teams:     make(map[string]*Team),
		lookup:    lookup,
		value:     value,
		broadcast: broadcast,
		log:       log.With().Str("component", "draft").Logger(),
	}
}

// TeamSeed configures one franchise at draft start.
type TeamSeed struct {
	FranchiseID string  `json:"franchise_id"`
	Name        string  `json:"name"`
	Budget      float64 `json:"budget"`
}

// Start opens a new draft with the given franchises.
func (s *Service) Start(seeds []TeamSeed) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return Snapshot{}, ErrDraftInProgress
	}
	if len(seeds) == 0 {
		return Snapshot{}, errors.New("at least one franchise required")
	}

	s.teams = make(map[string]*Team, len(seeds))
	s.order = s.order[:0]
	s.picks = nil
	s.nomination = nil
	for _, seed := range seeds {
		s.teams[seed.FranchiseID] = &Team{
			FranchiseID: seed.FranchiseID,
			Name:        seed.Name,
			Budget:      seed.Budget,
		}
		s.order = append(s.order, seed.FranchiseID)
	}
	s.active = true

	s.log.Info().Int("franchises", len(seeds)).Msg("Draft started")
	return s.publishLocked(), nil
}

// Nominate puts a player on the block with an opening bid.
func (s *Service) Nominate(playerID, franchiseID string, openingBid float64) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return Snapshot{}, ErrNoActiveDraft
	}
	if s.nomination != nil {
		return Snapshot{}, ErrNominationOpen
	}
	team, ok := s.teams[franchiseID]
	if !ok {
		return Snapshot{}, ErrUnknownFranchise
	}
	if openingBid < 1 {
		openingBid = 1
	}
	if openingBid > team.Remaining() {
		return Snapshot{}, ErrInsufficientBudget
	}

	player, err := s.lookup.GetByID(playerID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to look up player: %w", err)
	}
	if player == nil {
		return Snapshot{}, fmt.Errorf("unknown player %s", playerID)
	}

	s.nomination = &Nomination{
		PlayerID:       player.ID,
		PlayerName:     player.Name,
		Position:       player.Position,
		NominatedBy:    franchiseID,
		CurrentBid:     openingBid,
		HighBidder:     franchiseID,
		SuggestedValue: s.value(player.ID),
	}

	s.log.Info().Str("player", player.Name).Str("franchise", franchiseID).
		Float64("opening_bid", openingBid).Msg("Player nominated")
	return s.publishLocked(), nil
}

// Bid raises the current bid.
func (s *Service) Bid(franchiseID string, amount float64) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return Snapshot{}, ErrNoActiveDraft
	}
	if s.nomination == nil {
		return Snapshot{}, ErrNoActiveNomination
	}
	team, ok := s.teams[franchiseID]
	if !ok {
		return Snapshot{}, ErrUnknownFranchise
	}
	if amount <= s.nomination.CurrentBid {
		return Snapshot{}, ErrBidTooLow
	}
	if amount > team.Remaining() {
		return Snapshot{}, ErrInsufficientBudget
	}

	s.nomination.CurrentBid = amount
	s.nomination.HighBidder = franchiseID
	return s.publishLocked(), nil
}

// Award sells the nominated player to the high bidder.
func (s *Service) Award() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return Snapshot{}, ErrNoActiveDraft
	}
	if s.nomination == nil {
		return Snapshot{}, ErrNoActiveNomination
	}

	winner := s.teams[s.nomination.HighBidder]
	pick := Pick{
		PlayerID:    s.nomination.PlayerID,
		PlayerName:  s.nomination.PlayerName,
		Position:    s.nomination.Position,
		FranchiseID: winner.FranchiseID,
		Salary:      s.nomination.CurrentBid,
		At:          time.Now().UTC(),
	}
	winner.Spent += pick.Salary
	winner.Picks = append(winner.Picks, pick)
	s.picks = append(s.picks, pick)
	s.nomination = nil

	s.log.Info().Str("player", pick.PlayerName).Str("franchise", pick.FranchiseID).
		Float64("salary", pick.Salary).Msg("Player awarded")
	return s.publishLocked(), nil
}

// UndoLastPick reverses the most recent award and refunds the budget.
func (s *Service) UndoLastPick() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return Snapshot{}, ErrNoActiveDraft
	}
	if len(s.picks) == 0 {
		return Snapshot{}, errors.New("no picks to undo")
	}

	last := s.picks[len(s.picks)-1]
	s.picks = s.picks[:len(s.picks)-1]

	team := s.teams[last.FranchiseID]
	team.Spent -= last.Salary
	team.Picks = team.Picks[:len(team.Picks)-1]

	s.log.Info().Str("player", last.PlayerName).Msg("Pick undone")
	return s.publishLocked(), nil
}

// State returns the current snapshot without mutating anything.
func (s *Service) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) publishLocked() Snapshot {
	snap := s.snapshotLocked()
	s.broadcast(snap)
	return snap
}

func (s *Service) snapshotLocked() Snapshot {
	snap := Snapshot{
		Active:    s.active,
		Teams:     make([]Team, 0, len(s.teams)),
		PickCount: len(s.picks),
	}
	for _, id := range s.order {
		team := s.teams[id]
		copied := *team
		copied.Picks = append([]Pick(nil), team.Picks...)
		snap.Teams = append(snap.Teams, copied)
	}
	if s.nomination != nil {
		nom := *s.nomination
		snap.Nomination = &nom
	}
	return snap
}
