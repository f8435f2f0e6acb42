package valuation

import (
	"strconv"

	"github.com/dynastyhq/gridiron/internal/domain"
)

// dynastyMultiplier adjusts value for age under the position's aging curve.
// Players without an age (no birthdate) and positions without a curve are
// left at 1.0.
func dynastyMultiplier(player domain.PlayerRecord, currentYear int) float64 {
	age := playerAge(player, currentYear)
	if age == nil {
		return 1.0
	}

	curve, ok := agingCurves[player.Position]
	if !ok {
		return 1.0
	}

	a := *age
	if a >= curve.PeakStart && a <= curve.PeakEnd {
		return 1.0
	}
	if bonus, ok := curve.YoungBonus[a]; ok {
		return bonus
	}
	if penalty, ok := curve.OldPenalty[a]; ok {
		return penalty
	}

	// Outside every tabulated entry: very young players carry upside,
	// very old ones steep decline.
	if a < 21 {
		return 1.3
	}
	if a > 34 {
		return 0.6
	}
	return 1.0
}

// playerAge returns the resolved age, preferring the age computed at sync
// time and falling back to the birth year.
func playerAge(player domain.PlayerRecord, currentYear int) *int {
	if player.Age != nil {
		return player.Age
	}
	if player.Birthdate != nil {
		age := currentYear - player.Birthdate.Year()
		return &age
	}
	return nil
}

// draftCapitalMultiplier rewards NFL draft pedigree. The overall pick is
// reconstructed as (round-1)*32 + pick; missing or unparseable draft data
// means no adjustment.
func draftCapitalMultiplier(player domain.PlayerRecord) float64 {
	round, err := strconv.Atoi(player.DraftRound)
	if err != nil {
		return 1.0
	}
	pick, err := strconv.Atoi(player.DraftPick)
	if err != nil {
		return 1.0
	}

	overall := (round-1)*32 + pick
	switch {
	case overall <= 10:
		return 1.2
	case overall <= 32:
		return 1.1
	case overall <= 64:
		return 1.05
	case overall <= 96:
		return 1.0
	case overall <= 160:
		return 0.95
	default:
		return 0.9
	}
}

// teamMultiplier rewards favorable team context: a flat bonus for elite
// offenses plus a position-specific situation bonus, capped at 1.10 total.
func teamMultiplier(player domain.PlayerRecord) float64 {
	multiplier := 1.0

	if eliteOffenses[player.Team] {
		multiplier *= 1.05
	}
	if teams, ok := goodSituationTeams[player.Position]; ok && teams[player.Team] {
		multiplier *= 1.05
	}

	if multiplier > 1.1 {
		multiplier = 1.1
	}
	return multiplier
}

// rookieMultiplier applies the rookie bonus when the player's draft year
// matches the settings year. The league host supplies draft years as
// strings, so the comparison is string equality on purpose.
func rookieMultiplier(player domain.PlayerRecord, currentYear int) float64 {
	if player.DraftYear != "" && player.DraftYear == strconv.Itoa(currentYear) {
		return 1.15
	}
	return 1.0
}

// contractMultiplier penalizes expiring contracts slightly: those players
// are more likely to change teams.
func contractMultiplier(status string) float64 {
	if status == "expiring" {
		return 0.95
	}
	return 1.0
}

// valueFromRank converts an overall ranking into a dollar anchor, as a
// fraction of the budget by rank bracket.
func valueFromRank(rank, totalBudget int) int {
	switch {
	case rank <= 12:
		return int(float64(totalBudget) * 0.12)
	case rank <= 24:
		return int(float64(totalBudget) * 0.08)
	case rank <= 50:
		return int(float64(totalBudget) * 0.05)
	case rank <= 100:
		return int(float64(totalBudget) * 0.02)
	case rank <= 200:
		return int(float64(totalBudget) * 0.01)
	default:
		return 1
	}
}
