package store

import (
	"context"

	"github.com/farxc/projetus/internal/pipelineerr"
	"github.com/jmoiron/sqlx"
)

type JunctionStore struct{}

// UpsertProposalSupporters writes proposta_apoiadores rows. The conflict key
// is the compound unique constraint (proposta_source_id,
// apoiador_natural_key); there is no non-key attribute column to update
// besides the audit trail, per §4.7's "update set covers the remaining
// non-key columns" — here that set is just the timestamps.
func (s *JunctionStore) UpsertProposalSupporters(ctx context.Context, tx *sqlx.Tx, rows []ProposalSupporter) (UpsertCounts, error) {
	var counts UpsertCounts
	for _, rng := range chunkInts(len(rows), batchSize) {
		batch := rows[rng[0]:rng[1]]
		builder := psql.Insert("proposta_apoiadores").
			Columns("proposta_source_id", "apoiador_natural_key", "created_at", "updated_at", "extraction_date")
		for _, r := range batch {
			builder = builder.Values(r.PropostaSourceID, r.ApoiadorNaturalKey, r.CreatedAt, r.UpdatedAt, r.ExtractionDate)
		}
		builder = builder.Suffix(`ON CONFLICT (proposta_source_id, apoiador_natural_key) DO UPDATE SET
			updated_at = EXCLUDED.updated_at,
			extraction_date = EXCLUDED.extraction_date
			RETURNING (xmax = 0) AS inserted`)

		query, args, err := builder.ToSql()
		if err != nil {
			return counts, err
		}
		rowsRes, err := tx.QueryxContext(ctx, query, args...)
		if err != nil {
			return counts, pipelineerr.UpsertConflict("JunctionStore.UpsertProposalSupporters", err)
		}
		if err := scanInsertedUpdated(rowsRes, &counts); err != nil {
			return counts, err
		}
	}
	return counts, nil
}

func (s *JunctionStore) UpsertProposalAmendments(ctx context.Context, tx *sqlx.Tx, rows []ProposalAmendment) (UpsertCounts, error) {
	var counts UpsertCounts
	for _, rng := range chunkInts(len(rows), batchSize) {
		batch := rows[rng[0]:rng[1]]
		builder := psql.Insert("proposta_emendas").
			Columns("proposta_source_id", "emenda_numero", "created_at", "updated_at", "extraction_date")
		for _, r := range batch {
			builder = builder.Values(r.PropostaSourceID, r.EmendaNumero, r.CreatedAt, r.UpdatedAt, r.ExtractionDate)
		}
		builder = builder.Suffix(`ON CONFLICT (proposta_source_id, emenda_numero) DO UPDATE SET
			updated_at = EXCLUDED.updated_at,
			extraction_date = EXCLUDED.extraction_date
			RETURNING (xmax = 0) AS inserted`)

		query, args, err := builder.ToSql()
		if err != nil {
			return counts, err
		}
		rowsRes, err := tx.QueryxContext(ctx, query, args...)
		if err != nil {
			return counts, pipelineerr.UpsertConflict("JunctionStore.UpsertProposalAmendments", err)
		}
		if err := scanInsertedUpdated(rowsRes, &counts); err != nil {
			return counts, err
		}
	}
	return counts, nil
}
