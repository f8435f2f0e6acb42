package league

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynastyhq/gridiron/internal/clients/mfl"
	"github.com/dynastyhq/gridiron/internal/domain"
)

type fakeHost struct {
	standings []mfl.FranchiseStanding
	rosters   []mfl.FranchiseRoster
	league    *mfl.League
	leagueErr error
}

func (f *fakeHost) Standings(context.Context, string) ([]mfl.FranchiseStanding, error) {
	return f.standings, nil
}

func (f *fakeHost) Rosters(context.Context, string) ([]mfl.FranchiseRoster, error) {
	return f.rosters, nil
}

func (f *fakeHost) League(context.Context, string) (*mfl.League, error) {
	if f.leagueErr != nil {
		return nil, f.leagueErr
	}
	return f.league, nil
}

type fakeCatalog struct {
	players map[string]*domain.PlayerRecord
}

func (f *fakeCatalog) GetByID(id string) (*domain.PlayerRecord, error) {
	return f.players[id], nil
}

func leagueWithNames(names map[string]string) *mfl.League {
	var league mfl.League
	for id, name := range names {
		league.Franchises.Franchise = append(league.Franchises.Franchise,
			mfl.Franchise{ID: mfl.FlexString(id), Name: name})
	}
	return &league
}

func TestStandings_SortsByWinsThenPointsFor(t *testing.T) {
	host := &fakeHost{
		standings: []mfl.FranchiseStanding{
			{ID: "0001", Wins: "8", Losses: "6", PointsFor: "1500.5"},
			{ID: "0002", Wins: "10", Losses: "4", PointsFor: "1600.0"},
			{ID: "0003", Wins: "8", Losses: "6", PointsFor: "1650.2"},
		},
		league: leagueWithNames(map[string]string{"0002": "The Juggernauts"}),
	}

	service := NewService(host, &fakeCatalog{}, "46107", zerolog.Nop())
	rows, err := service.Standings(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "0002", rows[0].FranchiseID)
	assert.Equal(t, "The Juggernauts", rows[0].FranchiseName)
	assert.Equal(t, "0003", rows[1].FranchiseID, "points-for breaks the tie at 8 wins")
	assert.Equal(t, "0001", rows[2].FranchiseID)
	assert.Equal(t, "Team 0001", rows[2].FranchiseName, "missing names fall back to Team <id>")
}

func TestStandings_AlternateRecordFields(t *testing.T) {
	host := &fakeHost{
		standings: []mfl.FranchiseStanding{
			{ID: "0001", AltWins: "7", AltLosses: "7", AltTies: "0", PointsFor: "1400"},
		},
		league: leagueWithNames(nil),
	}

	service := NewService(host, &fakeCatalog{}, "46107", zerolog.Nop())
	rows, err := service.Standings(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 7, rows[0].Wins, "w/l fields used when h2hw/h2hl absent")
}

func TestStandings_NameFetchFailureDegrades(t *testing.T) {
	host := &fakeHost{
		standings: []mfl.FranchiseStanding{{ID: "0001", Wins: "5"}},
		leagueErr: errors.New("host down"),
	}

	service := NewService(host, &fakeCatalog{}, "46107", zerolog.Nop())
	rows, err := service.Standings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Team 0001", rows[0].FranchiseName)
}

func TestRosters_JoinsCatalogAndSumsSalary(t *testing.T) {
	host := &fakeHost{
		rosters: []mfl.FranchiseRoster{
			{ID: "0001", Player: []mfl.RosterPlayer{
				{ID: "13604", Status: "ROSTER", Salary: "45.5", ContractYear: "2", ContractStatus: "expiring"},
				{ID: "12625", Status: "TAXI", Salary: "12"},
				{ID: "55555", Salary: "3"}, // not in catalog
			}},
		},
		league: leagueWithNames(map[string]string{"0001": "The Juggernauts"}),
	}
	catalog := &fakeCatalog{players: map[string]*domain.PlayerRecord{
		"13604": {ID: "13604", Name: "Hill, Tyreek", Position: domain.PositionWR, Team: "MIA"},
		"12625": {ID: "12625", Name: "McCaffrey, Christian", Position: domain.PositionRB, Team: "SF"},
	}}

	service := NewService(host, catalog, "46107", zerolog.Nop())
	views, err := service.Rosters(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)

	view := views[0]
	assert.Equal(t, "The Juggernauts", view.FranchiseName)
	assert.InDelta(t, 60.5, view.TotalSalary, 1e-9)
	require.Len(t, view.Players, 3)

	assert.Equal(t, "Hill, Tyreek", view.Players[0].Name)
	assert.Equal(t, domain.PositionWR, view.Players[0].Position)
	assert.Equal(t, "expiring", view.Players[0].ContractStatus)

	assert.Empty(t, view.Players[2].Name, "unknown players keep bare IDs")
}
