package scheduler

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// JobRun is one recorded job execution.
type JobRun struct {
	ID         int64   `json:"id"`
	JobName    string  `json:"job_name"`
	StartedAt  string  `json:"started_at"`
	FinishedAt *string `json:"finished_at,omitempty"`
	Success    *bool   `json:"success,omitempty"`
	Detail     string  `json:"detail,omitempty"`
}

// History records job executions in the cache database. The table is
// ephemeral; losing it loses nothing but run timestamps.
type History struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistory creates a job history recorder.
func NewHistory(db *sql.DB, log zerolog.Logger) *History {
	return &History{
		db:  db,
		log: log.With().Str("repo", "job_history").Logger(),
	}
}

// RecordStart inserts a started row and returns its id, 0 on failure.
// Recording failures are logged, never propagated: history must not be able
// to break a job.
func (h *History) RecordStart(jobName string) int64 {
	result, err := h.db.Exec(
		`INSERT INTO job_history (job_name, started_at) VALUES (?, ?)`,
		jobName, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		h.log.Warn().Err(err).Str("job", jobName).Msg("Failed to record job start")
		return 0
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0
	}
	return id
}

// RecordFinish marks a run finished. A zero id is a failed start record and
// is ignored.
func (h *History) RecordFinish(id int64, success bool, detail string) {
	if id == 0 {
		return
	}
	successVal := 0
	if success {
		successVal = 1
	}
	_, err := h.db.Exec(
		`UPDATE job_history SET finished_at = ?, success = ?, detail = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), successVal, detail, id,
	)
	if err != nil {
		h.log.Warn().Err(err).Int64("id", id).Msg("Failed to record job finish")
	}
}

// Recent returns the latest runs, newest first. jobName filters when non-empty.
func (h *History) Recent(jobName string, limit int) ([]JobRun, error) {
	query := `
		SELECT id, job_name, started_at, finished_at, success, COALESCE(detail, '')
		FROM job_history`
	args := []interface{}{}
	if jobName != "" {
		query += ` WHERE job_name = ?`
		args = append(args, jobName)
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query job history: %w", err)
	}
	defer rows.Close()

	var runs []JobRun
	for rows.Next() {
		var run JobRun
		var finishedAt sql.NullString
		var success sql.NullInt64
		if err := rows.Scan(&run.ID, &run.JobName, &run.StartedAt, &finishedAt, &success, &run.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan job run: %w", err)
		}
		if finishedAt.Valid {
			run.FinishedAt = &finishedAt.String
		}
		if success.Valid {
			v := success.Int64 == 1
			run.Success = &v
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
