package valuation

import (
	"sort"

	"github.com/dynastyhq/gridiron/internal/domain"
)

// Settings holds the league parameters the valuation runs under.
type Settings struct {
	TotalBudget    int    `json:"total_budget"` // auction budget per franchise
	NumTeams       int    `json:"num_teams"`
	RosterSize     int    `json:"roster_size"`
	CurrentYear    int    `json:"current_year"`
	BlendRankings  bool   `json:"blend_rankings"`  // blend in rank-derived value when a rank is known
	ContractStatus string `json:"contract_status"` // "expiring" applies the contract-year penalty
}

// DefaultSettings returns the league's standard auction parameters.
func DefaultSettings(currentYear int) Settings {
	return Settings{
		TotalBudget: 500,
		NumTeams:    12,
		RosterSize:  26,
		CurrentYear: currentYear,
	}
}

// VBD computes a player's weighted value over replacement within the pool.
//
// The position subset is sorted descending by projected points (stable, so
// ties keep input order), replacement points are read at the configured
// replacement rank (zero when the position pool is shorter), and the excess
// over replacement is scaled by the position weight. Positions without a
// replacement level yield zero: kickers and defenses are priced at the
// minimum bid on purpose.
func VBD(player domain.PlayerRecord, pool []domain.PlayerRecord) float64 {
	level, ok := replacementLevels[player.Position]
	if !ok {
		return 0
	}

	positionPool := make([]domain.PlayerRecord, 0, 64)
	for _, p := range pool {
		if p.Position == player.Position {
			positionPool = append(positionPool, p)
		}
	}
	sort.SliceStable(positionPool, func(i, j int) bool {
		return positionPool[i].ProjectedPoints > positionPool[j].ProjectedPoints
	})

	replacementPoints := 0.0
	if level-1 < len(positionPool) {
		replacementPoints = positionPool[level-1].ProjectedPoints
	}

	baseVBD := player.ProjectedPoints - replacementPoints
	if baseVBD < 0 {
		baseVBD = 0
	}

	weight, ok := positionWeights[player.Position]
	if !ok {
		weight = defaultPositionWeight
	}
	return baseVBD * weight
}
