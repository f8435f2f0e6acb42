package mfl

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// The league host's JSON is shape-shifting: fields that hold one element are
// emitted as a bare object (or even a bare string) instead of a one-element
// array, and every scalar arrives as a string. FlexString and FlexList absorb
// those shapes at the decoding boundary so the rest of the system only ever
// sees normalized slices and strings.

// FlexString decodes a JSON string or number into a string.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*s = FlexString(num.String())
	return nil
}

// FlexList decodes a JSON array, a single object, or null into a slice.
type FlexList[T any] []T

func (l *FlexList[T]) UnmarshalJSON(data []byte) error {
	switch {
	case string(data) == "null":
		*l = nil
		return nil
	case len(data) > 0 && data[0] == '[':
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		var single T
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*l = []T{single}
		return nil
	}
}

// Player is one row from the players export.
type Player struct {
	ID         FlexString `json:"id"`
	Name       string     `json:"name"`
	Position   string     `json:"position"`
	Team       string     `json:"team"`
	Birthdate  FlexString `json:"birthdate"`
	DraftYear  FlexString `json:"draft_year"`
	DraftRound FlexString `json:"draft_round"`
	DraftPick  FlexString `json:"draft_pick"`
	Status     string     `json:"status"`
}

// BirthTime parses the birthdate field, which the host publishes as unix
// epoch seconds. Returns the zero time when absent or unparseable.
func (p Player) BirthTime() (time.Time, bool) {
	if p.Birthdate == "" {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(string(p.Birthdate), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}

type playersEnvelope struct {
	Players struct {
		Player FlexList[Player] `json:"player"`
	} `json:"players"`
	Error string `json:"error"`
}

// RosterPlayer is one roster slot. The host sometimes emits it as a bare
// string holding only the player ID.
type RosterPlayer struct {
	ID             FlexString `json:"id"`
	Status         string     `json:"status"`
	Salary         FlexString `json:"salary"`
	ContractYear   FlexString `json:"contractYear"`
	ContractStatus string     `json:"contractStatus"`
}

func (rp *RosterPlayer) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*rp = RosterPlayer{ID: FlexString(id)}
		return nil
	}
	type plain RosterPlayer
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*rp = RosterPlayer(p)
	return nil
}

// SalaryAmount parses the salary field, defaulting to 0.
func (rp RosterPlayer) SalaryAmount() float64 {
	v, err := strconv.ParseFloat(string(rp.Salary), 64)
	if err != nil {
		return 0
	}
	return v
}

// FranchiseRoster is one franchise's roster.
type FranchiseRoster struct {
	ID     FlexString             `json:"id"`
	Week   FlexString             `json:"week"`
	Player FlexList[RosterPlayer] `json:"player"`
}

type rostersEnvelope struct {
	Rosters struct {
		Franchise FlexList[FranchiseRoster] `json:"franchise"`
	} `json:"rosters"`
	Error string `json:"error"`
}

// FranchiseStanding is one franchise's season record.
type FranchiseStanding struct {
	ID            FlexString `json:"id"`
	Wins          FlexString `json:"h2hw"`
	Losses        FlexString `json:"h2hl"`
	Ties          FlexString `json:"h2ht"`
	AltWins       FlexString `json:"w"`
	AltLosses     FlexString `json:"l"`
	AltTies       FlexString `json:"t"`
	PointsFor     FlexString `json:"pf"`
	PointsAgainst FlexString `json:"pa"`
	Streak        string     `json:"streak"`
}

type standingsEnvelope struct {
	LeagueStandings struct {
		Franchise FlexList[FranchiseStanding] `json:"franchise"`
	} `json:"leagueStandings"`
	Error string `json:"error"`
}

// Franchise is one entry from the league export.
type Franchise struct {
	ID   FlexString `json:"id"`
	Name string     `json:"name"`
}

// League is the league export's configuration block.
type League struct {
	ID              FlexString `json:"id"`
	Name            string     `json:"name"`
	SalaryCapAmount FlexString `json:"salaryCapAmount"`
	UsesSalaries    FlexString `json:"usesSalaries"`
	RosterSize      FlexString `json:"rosterSize"`
	Franchises      struct {
		Franchise FlexList[Franchise] `json:"franchise"`
	} `json:"franchises"`
}

type leagueEnvelope struct {
	League League `json:"league"`
	Error  string `json:"error"`
}
