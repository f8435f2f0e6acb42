package rankings

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/database"
)

// Entry is one uploaded ranking row.
type Entry struct {
	Rank       int    `json:"rank"`
	PlayerName string `json:"name"`
	Position   string `json:"position"`
	Team       string `json:"team,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Repository handles uploaded-rankings database operations.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates an uploaded-rankings repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "rankings").Logger(),
	}
}

// Replace atomically swaps the league/year sheet for the given entries.
// An upload always replaces the previous one in full; there is no merging.
func (r *Repository) Replace(leagueID string, year int, entries []Entry) error {
	now := time.Now().UTC().Format(time.RFC3339)

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			"DELETE FROM uploaded_rankings WHERE league_id = ? AND year = ?", leagueID, year); err != nil {
			return fmt.Errorf("failed to clear previous sheet: %w", err)
		}

		stmt, err := tx.Prepare(`INSERT INTO uploaded_rankings
			(league_id, year, player_name, position, team, rank, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.Exec(leagueID, year, e.PlayerName, e.Position, e.Team, e.Rank, e.Status, now); err != nil {
				return fmt.Errorf("failed to insert ranking for %q: %w", e.PlayerName, err)
			}
		}

		r.log.Info().Str("league_id", leagueID).Int("year", year).Int("entries", len(entries)).
			Msg("Ranking sheet replaced")
		return nil
	})
}

// List returns the sheet for a league/year ordered by rank.
func (r *Repository) List(leagueID string, year int) ([]Entry, error) {
	rows, err := r.db.Query(`SELECT rank, player_name, position, COALESCE(team, ''), COALESCE(status, '')
		FROM uploaded_rankings WHERE league_id = ? AND year = ? ORDER BY rank`, leagueID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking sheet: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Rank, &e.PlayerName, &e.Position, &e.Team, &e.Status); err != nil {
			return nil, fmt.Errorf("failed to scan ranking entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the sheet for a league/year.
func (r *Repository) Delete(leagueID string, year int) (int64, error) {
	result, err := r.db.Exec(
		"DELETE FROM uploaded_rankings WHERE league_id = ? AND year = ?", leagueID, year)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ranking sheet: %w", err)
	}
	return result.RowsAffected()
}
