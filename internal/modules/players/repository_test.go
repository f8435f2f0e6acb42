package players

import (
	"database/sql"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/dynastyhq/gridiron/internal/domain"
	"github.com/dynastyhq/gridiron/internal/identity"
)

func setupPlayersTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE players (
			mfl_id           TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			normalized_key   TEXT NOT NULL,
			position         TEXT NOT NULL,
			team             TEXT,
			age              INTEGER,
			birthdate        TEXT,
			draft_year       TEXT,
			draft_round      TEXT,
			draft_pick       TEXT,
			projected_points REAL NOT NULL DEFAULT 0,
			is_free_agent    INTEGER NOT NULL DEFAULT 0,
			league_id        TEXT NOT NULL,
			rank                INTEGER,
			tier                INTEGER,
			bye_week            INTEGER,
			match_strategy      TEXT,
			rankings_updated_at TEXT,
			updated_at TEXT NOT NULL
		)
	`)
	require.NoError(t, err)
	return db
}

func newTestRepo(t *testing.T) *Repository {
	return NewRepository(setupPlayersTestDB(t), zerolog.Nop())
}

func record(id, name string, pos domain.Position, freeAgent bool) domain.PlayerRecord {
	return domain.PlayerRecord{
		ID:            id,
		Name:          name,
		NormalizedKey: identity.Normalize(name),
		Position:      pos,
		Team:          "KC",
		IsFreeAgent:   freeAgent,
	}
}

func TestUpsertBatch_InsertAndUpdate(t *testing.T) {
	repo := newTestRepo(t)

	original := record("13604", "Hill, Tyreek", domain.PositionWR, true)
	require.NoError(t, repo.UpsertBatch([]domain.PlayerRecord{original}, "46107"))

	// Second sync: player got rostered and moved teams.
	updated := original
	updated.Team = "MIA"
	updated.IsFreeAgent = false
	require.NoError(t, repo.UpsertBatch([]domain.PlayerRecord{updated}, "46107"))

	got, err := repo.GetByID("13604")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "MIA", got.Team)
	assert.False(t, got.IsFreeAgent)

	counts, err := repo.CountByLeague("46107")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Total, "upsert must not duplicate rows")
}

func TestUpsertBatch_PreservesRankingColumns(t *testing.T) {
	repo := newTestRepo(t)

	player := record("13604", "Hill, Tyreek", domain.PositionWR, true)
	require.NoError(t, repo.UpsertBatch([]domain.PlayerRecord{player}, "46107"))
	require.NoError(t, repo.UpdateRanking("13604", 4, intp(1), intp(6), domain.MatchExact))

	// Pool refresh must not wipe resolution output.
	require.NoError(t, repo.UpsertBatch([]domain.PlayerRecord{player}, "46107"))

	got, err := repo.GetByID("13604")
	require.NoError(t, err)
	require.NotNil(t, got.Rank)
	assert.Equal(t, 4, *got.Rank)
	assert.Equal(t, domain.MatchExact, got.MatchStrategy)
}

func TestUpsertBatch_NullableFields(t *testing.T) {
	repo := newTestRepo(t)

	birth := time.Date(1994, 3, 1, 0, 0, 0, 0, time.UTC)
	age := 31
	player := record("13604", "Hill, Tyreek", domain.PositionWR, true)
	player.Age = &age
	player.Birthdate = &birth
	player.DraftYear = "2016"
	player.DraftRound = "5"
	player.DraftPick = "1"

	require.NoError(t, repo.UpsertBatch([]domain.PlayerRecord{player}, "46107"))

	got, err := repo.GetByID("13604")
	require.NoError(t, err)
	require.NotNil(t, got.Age)
	assert.Equal(t, 31, *got.Age)
	require.NotNil(t, got.Birthdate)
	assert.True(t, birth.Equal(*got.Birthdate))
	assert.Equal(t, "2016", got.DraftYear)

	bare := record("0001", "Smith, John", domain.PositionLB, true)
	require.NoError(t, repo.UpsertBatch([]domain.PlayerRecord{bare}, "46107"))

	got, err = repo.GetByID("0001")
	require.NoError(t, err)
	assert.Nil(t, got.Age)
	assert.Nil(t, got.Birthdate)
}

func TestUpsertBatch_LargeBatchSplits(t *testing.T) {
	repo := newTestRepo(t)

	records := make([]domain.PlayerRecord, 0, upsertBatchSize+50)
	for i := 0; i < upsertBatchSize+50; i++ {
		records = append(records, record(strconv.Itoa(i), "Player, Test", domain.PositionLB, true))
	}
	require.NoError(t, repo.UpsertBatch(records, "46107"))

	counts, err := repo.CountByLeague("46107")
	require.NoError(t, err)
	assert.Equal(t, upsertBatchSize+50, counts.Total)
}

func TestMarkAllRostered(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.UpsertBatch([]domain.PlayerRecord{
		record("1", "A, Player", domain.PositionWR, true),
		record("2", "B, Player", domain.PositionRB, true),
	}, "46107"))

	affected, err := repo.MarkAllRostered("46107")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	counts, err := repo.CountByLeague("46107")
	require.NoError(t, err)
	assert.Equal(t, 0, counts.FreeAgents)
}

func TestFreeAgents_FiltersAndOrdering(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.UpsertBatch([]domain.PlayerRecord{
		record("1", "Unranked, Player", domain.PositionWR, true),
		record("2", "Ranked, Deep", domain.PositionWR, true),
		record("3", "Ranked, Top", domain.PositionWR, true),
		record("4", "Other, Position", domain.PositionLB, true),
		record("5", "Rostered, Player", domain.PositionWR, false),
	}, "46107"))
	require.NoError(t, repo.UpdateRanking("2", 80, nil, nil, domain.MatchVariation))
	require.NoError(t, repo.UpdateRanking("3", 5, nil, nil, domain.MatchExact))

	agents, err := repo.FreeAgents("46107", FreeAgentQuery{Position: domain.PositionWR})
	require.NoError(t, err)
	require.Len(t, agents, 3)
	assert.Equal(t, "3", agents[0].ID, "ranked players come first, best rank on top")
	assert.Equal(t, "2", agents[1].ID)
	assert.Equal(t, "1", agents[2].ID)

	ranked, err := repo.FreeAgents("46107", FreeAgentQuery{Position: domain.PositionWR, RankedOnly: true})
	require.NoError(t, err)
	assert.Len(t, ranked, 2)

	limited, err := repo.FreeAgents("46107", FreeAgentQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestClearRankings(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.UpsertBatch([]domain.PlayerRecord{
		record("1", "A, Player", domain.PositionWR, true),
	}, "46107"))
	require.NoError(t, repo.UpdateRanking("1", 10, intp(2), intp(7), domain.MatchExact))
	require.NoError(t, repo.ClearRankings("46107"))

	got, err := repo.GetByID("1")
	require.NoError(t, err)
	assert.Nil(t, got.Rank)
	assert.Nil(t, got.Tier)
	assert.Empty(t, got.MatchStrategy)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetByID("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func intp(v int) *int { return &v }
