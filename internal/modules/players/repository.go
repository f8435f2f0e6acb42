// Package players owns the canonical player pool: persistence, free-agent
// queries, and the ranking columns filled in by identity resolution.
package players

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/database"
	"github.com/dynastyhq/gridiron/internal/domain"
)

// upsertBatchSize bounds the number of rows per INSERT statement.
const upsertBatchSize = 500

// playerColumns is the column list for the players table. Kept explicit to
// avoid SELECT * breaking when the schema changes.
const playerColumns = `mfl_id, name, normalized_key, position, team, age, birthdate,
draft_year, draft_round, draft_pick, projected_points, is_free_agent, league_id,
rank, tier, bye_week, match_strategy, rankings_updated_at, updated_at`

// Repository handles player pool database operations.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a player repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "players").Logger(),
	}
}

// UpsertBatch writes players in batches inside one transaction. Existing rows
// are updated on mfl_id conflict; ranking columns are left untouched here so
// a pool refresh does not wipe resolution output from a previous run.
func (r *Repository) UpsertBatch(records []domain.PlayerRecord, leagueID string) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339)

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for start := 0; start < len(records); start += upsertBatchSize {
			end := start + upsertBatchSize
			if end > len(records) {
				end = len(records)
			}
			if err := upsertChunk(tx, records[start:end], leagueID, now); err != nil {
				return fmt.Errorf("failed to upsert players %d..%d: %w", start, end, err)
			}
		}
		r.log.Info().Int("players", len(records)).Str("league_id", leagueID).Msg("Player pool upserted")
		return nil
	})
}

func upsertChunk(tx *sql.Tx, records []domain.PlayerRecord, leagueID, now string) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO players
		(mfl_id, name, normalized_key, position, team, age, birthdate,
		 draft_year, draft_round, draft_pick, projected_points, is_free_agent, league_id, updated_at)
		VALUES `)

	args := make([]interface{}, 0, len(records)*14)
	for i, p := range records {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")

		var birthdate interface{}
		if p.Birthdate != nil {
			birthdate = p.Birthdate.UTC().Format(time.RFC3339)
		}
		var age interface{}
		if p.Age != nil {
			age = *p.Age
		}

		args = append(args,
			p.ID, p.Name, p.NormalizedKey, string(p.Position), p.Team, age, birthdate,
			p.DraftYear, p.DraftRound, p.DraftPick, p.ProjectedPoints,
			boolToInt(p.IsFreeAgent), leagueID, now)
	}

	sb.WriteString(` ON CONFLICT(mfl_id) DO UPDATE SET
		name = excluded.name,
		normalized_key = excluded.normalized_key,
		position = excluded.position,
		team = excluded.team,
		age = excluded.age,
		birthdate = excluded.birthdate,
		draft_year = excluded.draft_year,
		draft_round = excluded.draft_round,
		draft_pick = excluded.draft_pick,
		projected_points = excluded.projected_points,
		is_free_agent = excluded.is_free_agent,
		league_id = excluded.league_id,
		updated_at = excluded.updated_at`)

	_, err := tx.Exec(sb.String(), args...)
	return err
}

// MarkAllRostered flips every player in the league to rostered. Called at the
// start of a sync so that only players re-confirmed as available come back as
// free agents.
func (r *Repository) MarkAllRostered(leagueID string) (int64, error) {
	result, err := r.db.Exec(
		"UPDATE players SET is_free_agent = 0 WHERE league_id = ?", leagueID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark players rostered: %w", err)
	}
	return result.RowsAffected()
}

// UpdateRanking writes resolution output for one player.
func (r *Repository) UpdateRanking(mflID string, rank int, tier, byeWeek *int, strategy domain.MatchStrategy) error {
	now := time.Now().UTC().Format(time.RFC3339)

	var tierVal, byeVal interface{}
	if tier != nil {
		tierVal = *tier
	}
	if byeWeek != nil {
		byeVal = *byeWeek
	}

	_, err := r.db.Exec(`UPDATE players
		SET rank = ?, tier = ?, bye_week = ?, match_strategy = ?, rankings_updated_at = ?
		WHERE mfl_id = ?`,
		rank, tierVal, byeVal, string(strategy), now, mflID)
	if err != nil {
		return fmt.Errorf("failed to update ranking for player %s: %w", mflID, err)
	}
	return nil
}

// ClearRankings wipes resolution output for the league ahead of a re-match.
func (r *Repository) ClearRankings(leagueID string) error {
	_, err := r.db.Exec(`UPDATE players
		SET rank = NULL, tier = NULL, bye_week = NULL, match_strategy = NULL, rankings_updated_at = NULL
		WHERE league_id = ?`, leagueID)
	if err != nil {
		return fmt.Errorf("failed to clear rankings: %w", err)
	}
	return nil
}

// GetByID returns one player, or nil when not found.
func (r *Repository) GetByID(mflID string) (*domain.PlayerRecord, error) {
	rows, err := r.db.Query(
		"SELECT "+playerColumns+" FROM players WHERE mfl_id = ?", mflID)
	if err != nil {
		return nil, fmt.Errorf("failed to query player: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	player, err := scanPlayer(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return &player, nil
}

// FreeAgentQuery filters the free-agent listing.
type FreeAgentQuery struct {
	Position   domain.Position // zero value means all positions
	RankedOnly bool
	Limit      int
}

// FreeAgents returns the league's free agents, ranked players first.
func (r *Repository) FreeAgents(leagueID string, q FreeAgentQuery) ([]domain.PlayerRecord, error) {
	query := "SELECT " + playerColumns + " FROM players WHERE league_id = ? AND is_free_agent = 1"
	args := []interface{}{leagueID}

	if q.Position != domain.PositionUnknown {
		query += " AND position = ?"
		args = append(args, string(q.Position))
	}
	if q.RankedOnly {
		query += " AND rank IS NOT NULL"
	}
	query += " ORDER BY rank IS NULL, rank ASC, name ASC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query free agents: %w", err)
	}
	defer rows.Close()

	var players []domain.PlayerRecord
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan free agent: %w", err)
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

// ByLeague returns every player row for the league.
func (r *Repository) ByLeague(leagueID string) ([]domain.PlayerRecord, error) {
	rows, err := r.db.Query(
		"SELECT "+playerColumns+" FROM players WHERE league_id = ? ORDER BY name", leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query league players: %w", err)
	}
	defer rows.Close()

	var players []domain.PlayerRecord
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

// Counts summarizes the league's player pool.
type Counts struct {
	Total      int `json:"total"`
	FreeAgents int `json:"free_agents"`
	Ranked     int `json:"ranked"`
}

// CountByLeague returns pool counts for the league.
func (r *Repository) CountByLeague(leagueID string) (Counts, error) {
	var c Counts
	err := r.db.QueryRow(`SELECT
			COUNT(*),
			COALESCE(SUM(is_free_agent), 0),
			COALESCE(SUM(CASE WHEN rank IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM players WHERE league_id = ?`, leagueID).
		Scan(&c.Total, &c.FreeAgents, &c.Ranked)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count players: %w", err)
	}
	return c, nil
}

func scanPlayer(rows *sql.Rows) (domain.PlayerRecord, error) {
	var (
		p            domain.PlayerRecord
		position     string
		team         sql.NullString
		age          sql.NullInt64
		birthdate    sql.NullString
		draftYear    sql.NullString
		draftRound   sql.NullString
		draftPick    sql.NullString
		isFreeAgent  int
		leagueID     string
		rank         sql.NullInt64
		tier         sql.NullInt64
		byeWeek      sql.NullInt64
		strategy     sql.NullString
		rankingsTime sql.NullString
		updatedAt    string
	)

	err := rows.Scan(&p.ID, &p.Name, &p.NormalizedKey, &position, &team, &age, &birthdate,
		&draftYear, &draftRound, &draftPick, &p.ProjectedPoints, &isFreeAgent, &leagueID,
		&rank, &tier, &byeWeek, &strategy, &rankingsTime, &updatedAt)
	if err != nil {
		return domain.PlayerRecord{}, err
	}

	p.Position = domain.Position(position)
	p.Team = team.String
	p.DraftYear = draftYear.String
	p.DraftRound = draftRound.String
	p.DraftPick = draftPick.String
	p.IsFreeAgent = isFreeAgent != 0

	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	if birthdate.Valid {
		if t, err := time.Parse(time.RFC3339, birthdate.String); err == nil {
			p.Birthdate = &t
		}
	}
	if rank.Valid {
		v := int(rank.Int64)
		p.Rank = &v
	}
	if tier.Valid {
		v := int(tier.Int64)
		p.Tier = &v
	}
	if byeWeek.Valid {
		v := int(byeWeek.Int64)
		p.ByeWeek = &v
	}
	if strategy.Valid {
		p.MatchStrategy = domain.MatchStrategy(strategy.String)
	}

	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
