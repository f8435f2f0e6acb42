package sync

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Summary holds the counters produced by one sync run.
type Summary struct {
	TotalPlayers     int `json:"total_players"`
	RosteredPlayers  int `json:"rostered_players"`
	FreeAgents       int `json:"free_agents"`
	RankingsFetched  int `json:"rankings_fetched"`
	PlayersMatched   int `json:"players_matched"`
	PlayersUnmatched int `json:"players_unmatched"`
	Collisions       int `json:"collisions"`
}

// Run is one sync run's persistent record.
type Run struct {
	ID         string     `json:"id"`
	LeagueID   string     `json:"league_id"`
	Year       string     `json:"year"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Summary    Summary    `json:"summary"`
	Error      string     `json:"error,omitempty"`
}

// RunRepository persists sync run history.
type RunRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRunRepository creates a sync run repository.
func NewRunRepository(db *sql.DB, log zerolog.Logger) *RunRepository {
	return &RunRepository{
		db:  db,
		log: log.With().Str("repo", "sync_runs").Logger(),
	}
}

// Start inserts a new run row and returns it.
func (r *RunRepository) Start(leagueID, year string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		LeagueID:  leagueID,
		Year:      year,
		StartedAt: time.Now().UTC(),
	}

	_, err := r.db.Exec(`INSERT INTO sync_runs (id, league_id, year, started_at)
		VALUES (?, ?, ?, ?)`,
		run.ID, run.LeagueID, run.Year, run.StartedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to insert sync run: %w", err)
	}
	return run, nil
}

// Finish writes the run's final counters and error state.
func (r *RunRepository) Finish(run *Run) error {
	now := time.Now().UTC()
	run.FinishedAt = &now

	var errVal interface{}
	if run.Error != "" {
		errVal = run.Error
	}

	_, err := r.db.Exec(`UPDATE sync_runs SET
			finished_at = ?, total_players = ?, rostered_players = ?, free_agents = ?,
			rankings_fetched = ?, players_matched = ?, players_unmatched = ?,
			collisions = ?, error = ?
		WHERE id = ?`,
		now.Format(time.RFC3339),
		run.Summary.TotalPlayers, run.Summary.RosteredPlayers, run.Summary.FreeAgents,
		run.Summary.RankingsFetched, run.Summary.PlayersMatched, run.Summary.PlayersUnmatched,
		run.Summary.Collisions, errVal, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish sync run: %w", err)
	}
	return nil
}

// Recent returns the latest runs for a league, newest first.
func (r *RunRepository) Recent(leagueID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`SELECT id, league_id, year, started_at, finished_at,
			total_players, rostered_players, free_agents, rankings_fetched,
			players_matched, players_unmatched, collisions, COALESCE(error, '')
		FROM sync_runs WHERE league_id = ?
		ORDER BY started_at DESC LIMIT ?`, leagueID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			finishedAt sql.NullString
		)
		err := rows.Scan(&run.ID, &run.LeagueID, &run.Year, &startedAt, &finishedAt,
			&run.Summary.TotalPlayers, &run.Summary.RosteredPlayers, &run.Summary.FreeAgents,
			&run.Summary.RankingsFetched, &run.Summary.PlayersMatched, &run.Summary.PlayersUnmatched,
			&run.Summary.Collisions, &run.Error)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			run.StartedAt = t
		}
		if finishedAt.Valid {
			if t, err := time.Parse(time.RFC3339, finishedAt.String); err == nil {
				run.FinishedAt = &t
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
