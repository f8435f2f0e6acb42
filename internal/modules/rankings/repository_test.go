package rankings

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupRankingsTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE uploaded_rankings (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			league_id   TEXT NOT NULL,
			year        INTEGER NOT NULL,
			player_name TEXT NOT NULL,
			position    TEXT NOT NULL,
			team        TEXT,
			rank        INTEGER NOT NULL,
			status      TEXT,
			created_at  TEXT NOT NULL
		)
	`)
	require.NoError(t, err)
	return db
}

func TestReplace_SwapsPreviousSheet(t *testing.T) {
	repo := NewRepository(setupRankingsTestDB(t), zerolog.Nop())

	first := []Entry{
		{Rank: 1, PlayerName: "McCaffrey, Christian", Position: "RB", Team: "SFO"},
		{Rank: 2, PlayerName: "Hill, Tyreek", Position: "WR", Team: "MIA"},
	}
	require.NoError(t, repo.Replace("46107", 2025, first))

	second := []Entry{
		{Rank: 1, PlayerName: "Jefferson, Justin", Position: "WR", Team: "MIN"},
	}
	require.NoError(t, repo.Replace("46107", 2025, second))

	entries, err := repo.List("46107", 2025)
	require.NoError(t, err)
	require.Len(t, entries, 1, "upload replaces the previous sheet in full")
	assert.Equal(t, "Jefferson, Justin", entries[0].PlayerName)
}

func TestReplace_ScopedByLeagueAndYear(t *testing.T) {
	repo := NewRepository(setupRankingsTestDB(t), zerolog.Nop())

	require.NoError(t, repo.Replace("46107", 2024, []Entry{{Rank: 1, PlayerName: "Old, Sheet", Position: "RB"}}))
	require.NoError(t, repo.Replace("46107", 2025, []Entry{{Rank: 1, PlayerName: "New, Sheet", Position: "RB"}}))
	require.NoError(t, repo.Replace("99999", 2025, []Entry{{Rank: 1, PlayerName: "Other, League", Position: "RB"}}))

	entries, err := repo.List("46107", 2024)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Old, Sheet", entries[0].PlayerName)
}

func TestList_OrderedByRank(t *testing.T) {
	repo := NewRepository(setupRankingsTestDB(t), zerolog.Nop())

	require.NoError(t, repo.Replace("46107", 2025, []Entry{
		{Rank: 3, PlayerName: "Third, Player", Position: "WR"},
		{Rank: 1, PlayerName: "First, Player", Position: "RB"},
		{Rank: 2, PlayerName: "Second, Player", Position: "QB"},
	}))

	entries, err := repo.List("46107", 2025)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestDelete_ReturnsAffectedRows(t *testing.T) {
	repo := NewRepository(setupRankingsTestDB(t), zerolog.Nop())

	require.NoError(t, repo.Replace("46107", 2025, []Entry{
		{Rank: 1, PlayerName: "A, Player", Position: "RB"},
		{Rank: 2, PlayerName: "B, Player", Position: "WR"},
	}))

	deleted, err := repo.Delete("46107", 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	entries, err := repo.List("46107", 2025)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
