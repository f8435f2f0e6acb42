// Package valuation computes dynasty-aware auction dollar values for a
// player pool using value-based drafting (VBD) against positional
// replacement levels.
package valuation

import "github.com/dynastyhq/gridiron/internal/domain"

// agingCurve describes how a position's value moves with age. Ages inside
// [PeakStart, PeakEnd] are worth full value; tabulated ages outside the peak
// carry an explicit bonus or penalty.
type agingCurve struct {
	PeakStart  int
	PeakEnd    int
	YoungBonus map[int]float64
	OldPenalty map[int]float64
}

// agingCurves holds position-specific aging curves for dynasty leagues.
// Positions without a curve (kickers, defenses, IDP) age-adjust to 1.0.
var agingCurves = map[domain.Position]agingCurve{
	domain.PositionQB: {
		PeakStart:  26,
		PeakEnd:    32,
		YoungBonus: map[int]float64{21: 1.1, 22: 1.08, 23: 1.06, 24: 1.04, 25: 1.02},
		OldPenalty: map[int]float64{33: 0.98, 34: 0.95, 35: 0.92, 36: 0.88, 37: 0.82, 38: 0.75},
	},
	domain.PositionRB: {
		PeakStart:  23,
		PeakEnd:    26,
		YoungBonus: map[int]float64{21: 1.15, 22: 1.1},
		OldPenalty: map[int]float64{27: 0.92, 28: 0.85, 29: 0.75, 30: 0.65, 31: 0.5, 32: 0.35},
	},
	domain.PositionWR: {
		PeakStart:  25,
		PeakEnd:    29,
		YoungBonus: map[int]float64{21: 1.2, 22: 1.15, 23: 1.1, 24: 1.05},
		OldPenalty: map[int]float64{30: 0.95, 31: 0.9, 32: 0.85, 33: 0.75, 34: 0.65},
	},
	domain.PositionTE: {
		PeakStart:  26,
		PeakEnd:    30,
		YoungBonus: map[int]float64{21: 1.25, 22: 1.2, 23: 1.15, 24: 1.1, 25: 1.05},
		OldPenalty: map[int]float64{31: 0.95, 32: 0.9, 33: 0.8, 34: 0.7},
	},
}

// replacementLevels is the rank at which a position hits replacement level
// in a 12-team league with multi-flex starting requirements. Positions
// absent from this table produce zero VBD and bottom out at the minimum bid.
var replacementLevels = map[domain.Position]int{
	domain.PositionQB:  24, // 2 QBs per team
	domain.PositionRB:  48, // 4 RBs per team
	domain.PositionWR:  60, // 5 WRs per team
	domain.PositionTE:  24, // 2 TEs per team
	domain.PositionPK:  12, // 1 PK per team
	domain.PositionDEF: 12, // 1 DEF per team
	domain.PositionDT:  24, // IDP positions
	domain.PositionDE:  24,
	domain.PositionLB:  36,
	domain.PositionCB:  24,
	domain.PositionS:   24,
}

// positionWeights reflect roster-slot scarcity under the league's starting
// requirements. They do not sum to 1; they only shape budget share.
var positionWeights = map[domain.Position]float64{
	domain.PositionQB:  0.18, // 1 starter, high scoring
	domain.PositionRB:  0.25, // 1 starter + flex options
	domain.PositionWR:  0.35, // 2 starters + flex options
	domain.PositionTE:  0.12, // 1 starter
	domain.PositionPK:  0.02,
	domain.PositionDEF: 0.03,
	domain.PositionDT:  0.01,
	domain.PositionDE:  0.01,
	domain.PositionLB:  0.015,
	domain.PositionCB:  0.01,
	domain.PositionS:   0.01,
}

const defaultPositionWeight = 0.01

// eliteOffenses are teams whose overall offensive environment lifts every
// skill player on the roster.
var eliteOffenses = map[string]bool{
	"KC": true, "BUF": true, "MIA": true, "PHI": true,
	"SF": true, "CIN": true, "DAL": true,
}

// goodSituationTeams lists teams that are favorable landing spots for a
// specific position. Combined with the elite-offense bonus the total team
// adjustment is capped at 1.10.
var goodSituationTeams = map[domain.Position]map[string]bool{
	domain.PositionQB: {"KC": true, "BUF": true, "CIN": true, "LAC": true, "JAX": true},
	domain.PositionRB: {"SF": true, "MIA": true, "ATL": true, "DET": true, "BAL": true},
	domain.PositionWR: {"KC": true, "MIA": true, "CIN": true, "MIN": true, "PHI": true},
}
