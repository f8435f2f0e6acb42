// Package league reshapes raw league-host payloads into dashboard views:
// standings sorted the way the league reads them and rosters joined against
// the player catalog.
package league

import (
	"context"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/clients/mfl"
	"github.com/dynastyhq/gridiron/internal/domain"
)

// LeagueHost is the subset of the MFL client this service needs.
type LeagueHost interface {
	Standings(ctx context.Context, leagueID string) ([]mfl.FranchiseStanding, error)
	Rosters(ctx context.Context, leagueID string) ([]mfl.FranchiseRoster, error)
	League(ctx context.Context, leagueID string) (*mfl.League, error)
}

// PlayerCatalog resolves player IDs to records.
type PlayerCatalog interface {
	GetByID(mflID string) (*domain.PlayerRecord, error)
}

// StandingRow is one franchise in the standings view.
type StandingRow struct {
	FranchiseID   string  `json:"franchise_id"`
	FranchiseName string  `json:"franchise_name"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	PointsFor     float64 `json:"points_for"`
	PointsAgainst float64 `json:"points_against"`
	Streak        string  `json:"streak,omitempty"`
}

// RosterSlot is one player on a franchise roster.
type RosterSlot struct {
	PlayerID       string          `json:"player_id"`
	Name           string          `json:"name,omitempty"`
	Position       domain.Position `json:"position,omitempty"`
	Team           string          `json:"team,omitempty"`
	Status         string          `json:"status,omitempty"`
	Salary         float64         `json:"salary"`
	ContractYear   string          `json:"contract_year,omitempty"`
	ContractStatus string          `json:"contract_status,omitempty"`
}

// RosterView is one franchise's full roster with salary totals.
type RosterView struct {
	FranchiseID   string       `json:"franchise_id"`
	FranchiseName string       `json:"franchise_name"`
	Players       []RosterSlot `json:"players"`
	TotalSalary   float64      `json:"total_salary"`
}

// Service serves standings and roster views.
type Service struct {
	host     LeagueHost
	catalog  PlayerCatalog
	leagueID string
	log      zerolog.Logger
}

// NewService creates a league view service.
func NewService(host LeagueHost, catalog PlayerCatalog, leagueID string, log zerolog.Logger) *Service {
	return &Service{
		host:     host,
		catalog:  catalog,
		leagueID: leagueID,
		log:      log.With().Str("component", "league").Logger(),
	}
}

// Standings returns the league standings sorted by wins, points-for breaking
// ties.
func (s *Service) Standings(ctx context.Context) ([]StandingRow, error) {
	raw, err := s.host.Standings(ctx, s.leagueID)
	if err != nil {
		return nil, err
	}

	names, err := s.franchiseNames(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to fetch franchise names, standings will use IDs")
		names = map[string]string{}
	}

	rows := make([]StandingRow, 0, len(raw))
	for _, f := range raw {
		row := StandingRow{
			FranchiseID:   string(f.ID),
			FranchiseName: franchiseName(names, string(f.ID)),
			Wins:          flexAtoi(f.Wins, f.AltWins),
			Losses:        flexAtoi(f.Losses, f.AltLosses),
			Ties:          flexAtoi(f.Ties, f.AltTies),
			PointsFor:     flexAtof(f.PointsFor),
			PointsAgainst: flexAtof(f.PointsAgainst),
			Streak:        f.Streak,
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].PointsFor > rows[j].PointsFor
	})
	return rows, nil
}

// Rosters returns every franchise roster joined against the player catalog.
func (s *Service) Rosters(ctx context.Context) ([]RosterView, error) {
	raw, err := s.host.Rosters(ctx, s.leagueID)
	if err != nil {
		return nil, err
	}

	names, err := s.franchiseNames(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to fetch franchise names, rosters will use IDs")
		names = map[string]string{}
	}

	views := make([]RosterView, 0, len(raw))
	for _, franchise := range raw {
		view := RosterView{
			FranchiseID:   string(franchise.ID),
			FranchiseName: franchiseName(names, string(franchise.ID)),
			Players:       make([]RosterSlot, 0, len(franchise.Player)),
		}

		for _, rp := range franchise.Player {
			slot := RosterSlot{
				PlayerID:       string(rp.ID),
				Status:         rp.Status,
				Salary:         rp.SalaryAmount(),
				ContractYear:   string(rp.ContractYear),
				ContractStatus: rp.ContractStatus,
			}
			if record, err := s.catalog.GetByID(slot.PlayerID); err == nil && record != nil {
				slot.Name = record.Name
				slot.Position = record.Position
				slot.Team = record.Team
			}
			view.TotalSalary += slot.Salary
			view.Players = append(view.Players, slot)
		}

		views = append(views, view)
	}
	return views, nil
}

func (s *Service) franchiseNames(ctx context.Context) (map[string]string, error) {
	league, err := s.host.League(ctx, s.leagueID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(league.Franchises.Franchise))
	for _, f := range league.Franchises.Franchise {
		names[string(f.ID)] = f.Name
	}
	return names, nil
}

func franchiseName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return "Team " + id
}

// flexAtoi parses the first non-empty candidate. The host publishes records
// under h2hw/h2hl in some league configs and w/l in others.
func flexAtoi(candidates ...mfl.FlexString) int {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if v, err := strconv.Atoi(string(c)); err == nil {
			return v
		}
	}
	return 0
}

func flexAtof(v mfl.FlexString) float64 {
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return 0
	}
	return f
}
