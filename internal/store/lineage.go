package store

import (
	"context"

	"github.com/farxc/projetus/internal/pipelineerr"
	"github.com/jmoiron/sqlx"
)

type LineageStore struct{}

// Insert appends LineageRecord rows inside the run transaction (§4.9's
// redesign relative to the original's separate-session writer). Lineage is
// append-only — no conflict clause, no update path.
func (s *LineageStore) Insert(ctx context.Context, tx *sqlx.Tx, rows []LineageRecord) error {
	for _, rng := range chunkInts(len(rows), batchSize) {
		batch := rows[rng[0]:rng[1]]
		builder := psql.Insert("data_lineage").Columns(
			"run_id", "entity_type", "entity_natural_key", "source_file",
			"extraction_timestamp", "pipeline_version", "record_hash",
		)
		for _, r := range batch {
			builder = builder.Values(
				r.RunID, r.EntityType, r.EntityNaturalKey, r.SourceFile,
				r.ExtractionTimestamp, r.PipelineVersion, r.RecordHash,
			)
		}
		query, args, err := builder.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return pipelineerr.UpsertConflict("LineageStore.Insert", err)
		}
	}
	return nil
}

// CountBySourceFile is C10's loaded_count: distinct lineage records for an
// entity type with source_file = path, in this run (§4.10).
func (s *LineageStore) CountBySourceFile(ctx context.Context, tx *sqlx.Tx, runID, entityType, sourceFile string) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, `
		SELECT count(DISTINCT entity_natural_key)
		FROM data_lineage
		WHERE run_id = $1 AND entity_type = $2 AND source_file = $3`,
		runID, entityType, sourceFile,
	)
	return n, err
}
