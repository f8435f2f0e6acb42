// Package domain contains the core data model shared across modules.
// The domain layer is pure: no database, HTTP, or client dependencies.
package domain

import "time"

// PlayerRecord is the canonical merged player produced by a league sync.
// Records are rebuilt from scratch on every sync; they are never mutated
// in place.
type PlayerRecord struct {
	ID            string   `json:"mfl_id"`         // League-host player ID (opaque)
	Name          string   `json:"name"`           // Raw display name, original casing preserved
	NormalizedKey string   `json:"normalized_key"` // identity.Normalize(Name)
	Position      Position `json:"position"`
	Team          string   `json:"team"` // NFL team abbreviation, empty for free agents
	Age           *int     `json:"age,omitempty"`
	Birthdate     *time.Time `json:"birthdate,omitempty"`

	// Rookie draft capital (league host supplies these as strings, often absent)
	DraftYear  string `json:"draft_year,omitempty"`
	DraftRound string `json:"draft_round,omitempty"`
	DraftPick  string `json:"draft_pick,omitempty"`

	ProjectedPoints float64 `json:"projected_points"`
	IsFreeAgent     bool    `json:"is_free_agent"`

	// Filled in after ranking resolution (nil when unmatched)
	Rank          *int          `json:"rank,omitempty"`
	Tier          *int          `json:"tier,omitempty"`
	ByeWeek       *int          `json:"bye_week,omitempty"`
	MatchStrategy MatchStrategy `json:"match_strategy,omitempty"`
}

// RankingRecord is one row from the rankings host, already reshaped by the
// rankings adapter.
type RankingRecord struct {
	Name         string   `json:"name"`
	Team         string   `json:"team"`
	Position     Position `json:"position"`
	Rank         int      `json:"rank"`
	PositionRank string   `json:"position_rank,omitempty"`
	Tier         *int     `json:"tier,omitempty"`
	ByeWeek      *int     `json:"bye_week,omitempty"`
}

// MatchStrategy records which lookup path produced a match, for diagnostics.
type MatchStrategy string

const (
	MatchExact           MatchStrategy = "exact-normalized"
	MatchVariation       MatchStrategy = "name-variation"
	MatchInitialFallback MatchStrategy = "first-name-last-initial"
	MatchNone            MatchStrategy = "none"
)

// MatchResult pairs a player with at most one ranking. A nil Ranking is a
// normal outcome, not an error.
type MatchResult struct {
	Player   PlayerRecord   `json:"player"`
	Ranking  *RankingRecord `json:"ranking,omitempty"`
	Strategy MatchStrategy  `json:"strategy"`
}

// AgeAt computes a player's exact age from birthdate at the given time.
// Returns nil when the birthdate is unknown.
func (p *PlayerRecord) AgeAt(now time.Time) *int {
	if p.Birthdate == nil {
		return nil
	}
	birth := *p.Birthdate
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return &age
}
