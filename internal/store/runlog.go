package store

import (
	"context"
	"time"

	"github.com/farxc/projetus/internal/pipelineerr"
	"github.com/jmoiron/sqlx"
)

type RunLogStore struct{}

// Create writes the terminal RunLog row for a run (§3.1, §12). Unlike the
// original's create_extraction_log (flushed mid-session, committed by the
// caller), this executes inside the same transaction the rest of the run's
// writes are in, so a rollback also discards the log row — only COMMIT makes
// a RunLog durable, matching §4.11's LOG-after-COMMIT ordering for success,
// and a best-effort out-of-transaction write for the failed path (see
// internal/orchestrator).
func (s *RunLogStore) Create(ctx context.Context, tx *sqlx.Tx, log *RunLog) error {
	query := `INSERT INTO extraction_logs (
		run_id, status, trigger_type, started_at, finished_at, duration_seconds,
		files_downloaded, total_records, records_inserted, records_updated,
		records_skipped, error_message
	) VALUES (
		:run_id, :status, :trigger_type, :started_at, :finished_at, :duration_seconds,
		:files_downloaded, :total_records, :records_inserted, :records_updated,
		:records_skipped, :error_message
	) RETURNING id`

	rows, err := tx.NamedQuery(query, log)
	if err != nil {
		return pipelineerr.UpsertConflict("RunLogStore.Create", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&log.ID); err != nil {
			return err
		}
	}
	return nil
}

// CreateOutOfBand writes a RunLog row on a plain connection, used only for
// the failed path once the run's own transaction has already been rolled
// back (§4.11: "a RunLog row with a truncated error message" must exist
// even when nothing else from the run survives).
func (s *RunLogStore) CreateOutOfBand(ctx context.Context, db *sqlx.DB, log *RunLog) error {
	query := `INSERT INTO extraction_logs (
		run_id, status, trigger_type, started_at, finished_at, duration_seconds,
		files_downloaded, total_records, records_inserted, records_updated,
		records_skipped, error_message
	) VALUES (
		:run_id, :status, :trigger_type, :started_at, :finished_at, :duration_seconds,
		:files_downloaded, :total_records, :records_inserted, :records_updated,
		:records_skipped, :error_message
	)`
	_, err := db.NamedExecContext(ctx, query, log)
	return err
}

// Latest returns the most recent terminal RunLog, used by the Health
// Publisher (§4.12) to compute freshness.
func (s *RunLogStore) Latest(ctx context.Context, db *sqlx.DB) (*RunLog, error) {
	var log RunLog
	err := db.GetContext(ctx, &log, `
		SELECT * FROM extraction_logs
		ORDER BY started_at DESC
		LIMIT 1`)
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// StaleSince reports whether no run has started within `within` of now, the
// scheduler-miss test. Nothing in this module calls it.
func StaleSince(log *RunLog, within time.Duration, now time.Time) bool {
	if log == nil {
		return true
	}
	return now.Sub(log.StartedAt) > within
}
