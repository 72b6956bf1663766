package store

import (
	"context"

	"github.com/farxc/projetus/internal/pipelineerr"
	"github.com/jmoiron/sqlx"
)

type ProgramStore struct{}

// Upsert implements the first step of §4.7's dependency chain: programs have
// no soft references of their own, so they upsert with no dependency on
// anything else having loaded first.
func (s *ProgramStore) Upsert(ctx context.Context, tx *sqlx.Tx, rows []Program) (UpsertCounts, error) {
	var counts UpsertCounts
	for _, rng := range chunkInts(len(rows), batchSize) {
		batch := rows[rng[0]:rng[1]]
		builder := psql.Insert("programas").
			Columns("source_id", "nome", "orgao", "created_at", "updated_at", "extraction_date")
		for _, p := range batch {
			builder = builder.Values(p.SourceID, p.Nome, p.Orgao, p.CreatedAt, p.UpdatedAt, p.ExtractionDate)
		}
		builder = builder.Suffix(`ON CONFLICT (source_id) DO UPDATE SET
			nome = EXCLUDED.nome,
			orgao = EXCLUDED.orgao,
			updated_at = EXCLUDED.updated_at,
			extraction_date = EXCLUDED.extraction_date
			RETURNING (xmax = 0) AS inserted`)

		query, args, err := builder.ToSql()
		if err != nil {
			return counts, err
		}
		rowsRes, err := tx.QueryxContext(ctx, query, args...)
		if err != nil {
			return counts, pipelineerr.UpsertConflict("ProgramStore.Upsert", err)
		}
		if err := scanInsertedUpdated(rowsRes, &counts); err != nil {
			return counts, err
		}
	}
	return counts, nil
}

// scanInsertedUpdated drains a RETURNING (xmax = 0) AS inserted result set
// into counts, closing rows on every path.
func scanInsertedUpdated(rows *sqlx.Rows, counts *UpsertCounts) error {
	defer rows.Close()
	for rows.Next() {
		var inserted bool
		if err := rows.Scan(&inserted); err != nil {
			return err
		}
		if inserted {
			counts.Inserted++
		} else {
			counts.Updated++
		}
	}
	return rows.Err()
}
