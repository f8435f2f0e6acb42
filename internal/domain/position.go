package domain

// Position is the closed set of player position codes recognized by the
// valuation and matching logic. Raw codes from the league host are parsed
// through ParsePosition so that unrecognized or administrative codes collapse
// into PositionUnknown instead of leaking open strings through the system.
type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionPK  Position = "PK"
	PositionDEF Position = "DEF"
	PositionDT  Position = "DT"
	PositionDE  Position = "DE"
	PositionLB  Position = "LB"
	PositionCB  Position = "CB"
	PositionS   Position = "S"

	// Rankings-host composite codes (IDP positions are grouped there)
	PositionDL Position = "DL"
	PositionDB Position = "DB"

	PositionUnknown Position = ""
)

// knownPositions is the set of codes ParsePosition accepts as-is.
var knownPositions = map[string]Position{
	"QB": PositionQB, "RB": PositionRB, "WR": PositionWR, "TE": PositionTE,
	"PK": PositionPK, "DEF": PositionDEF, "DT": PositionDT, "DE": PositionDE,
	"LB": PositionLB, "CB": PositionCB, "S": PositionS,
	"DL": PositionDL, "DB": PositionDB,
	// League-host spellings folded into the canonical codes
	"K": PositionPK, "DST": PositionDEF, "Def": PositionDEF,
	"FS": PositionS, "SS": PositionS,
}

// administrativePositions are league-host codes that do not represent real
// players (team slots, coaches, placeholder rows). They are dropped during
// pool construction.
var administrativePositions = map[string]bool{
	"Off": true, "PN": true, "ST": true, "XX": true, "Coach": true, "HC": true,
	"TMDB": true, "TMDL": true, "TMLB": true, "TMPK": true, "TMPN": true,
	"TMQB": true, "TMRB": true, "TMTE": true, "TMWR": true,
}

// rankingsPositionMap maps league-host IDP codes to the grouped codes the
// rankings host publishes.
var rankingsPositionMap = map[Position]Position{
	PositionDT: PositionDL,
	PositionDE: PositionDL,
	PositionCB: PositionDB,
	PositionS:  PositionDB,
}

// ParsePosition converts a raw league-host position code into a Position.
// Administrative codes and anything unrecognized parse to PositionUnknown.
func ParsePosition(raw string) Position {
	if raw == "" || administrativePositions[raw] {
		return PositionUnknown
	}
	if pos, ok := knownPositions[raw]; ok {
		return pos
	}
	return PositionUnknown
}

// IsAdministrative reports whether a raw league-host code is a non-player slot.
func IsAdministrative(raw string) bool {
	return administrativePositions[raw]
}

// RankingsPosition returns the position code used by the rankings host for
// this position (IDP codes are grouped: DT/DE -> DL, CB/S -> DB).
func (p Position) RankingsPosition() Position {
	if mapped, ok := rankingsPositionMap[p]; ok {
		return mapped
	}
	return p
}

// IsTeamDefense reports whether the position is a team-defense slot. The
// matcher skips the lossy first-name fallback for these since defense "names"
// are team names.
func (p Position) IsTeamDefense() bool {
	return p == PositionDEF
}
