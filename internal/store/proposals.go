package store

import (
	"context"

	"github.com/farxc/projetus/internal/pipelineerr"
	"github.com/jmoiron/sqlx"
)

type ProposalStore struct{}

// Upsert writes the batch, preserving an already-stored programa_id when the
// incoming row carries none: a re-run whose propostas file drops the column,
// or whose column is blank for that row, must never erase a value either
// supplied by an earlier file or backfilled by ResolveProgramLinks.
func (s *ProposalStore) Upsert(ctx context.Context, tx *sqlx.Tx, rows []Proposal) (UpsertCounts, error) {
	var counts UpsertCounts
	for _, rng := range chunkInts(len(rows), batchSize) {
		batch := rows[rng[0]:rng[1]]
		builder := psql.Insert("propostas").Columns(
			"source_id", "titulo", "valor_global", "data_publicacao", "estado",
			"municipio", "situacao", "programa_id", "proponente_cnpj",
			"created_at", "updated_at", "extraction_date",
		)
		for _, p := range batch {
			builder = builder.Values(
				p.SourceID, p.Titulo, p.ValorGlobal, p.DataPublicacao, p.Estado,
				p.Municipio, p.Situacao, p.ProgramaID, p.ProponenteCNPJ,
				p.CreatedAt, p.UpdatedAt, p.ExtractionDate,
			)
		}
		builder = builder.Suffix(`ON CONFLICT (source_id) DO UPDATE SET
			titulo = EXCLUDED.titulo,
			valor_global = EXCLUDED.valor_global,
			data_publicacao = EXCLUDED.data_publicacao,
			estado = EXCLUDED.estado,
			municipio = EXCLUDED.municipio,
			situacao = EXCLUDED.situacao,
			programa_id = COALESCE(EXCLUDED.programa_id, propostas.programa_id),
			proponente_cnpj = EXCLUDED.proponente_cnpj,
			updated_at = EXCLUDED.updated_at,
			extraction_date = EXCLUDED.extraction_date
			RETURNING (xmax = 0) AS inserted`)

		query, args, err := builder.ToSql()
		if err != nil {
			return counts, err
		}
		rowsRes, err := tx.QueryxContext(ctx, query, args...)
		if err != nil {
			return counts, pipelineerr.UpsertConflict("ProposalStore.Upsert", err)
		}
		if err := scanInsertedUpdated(rowsRes, &counts); err != nil {
			return counts, err
		}
	}
	return counts, nil
}

// ResolveProgramLinks implements §4.7's "never clobber" rule (Open Question
// #2, resolved): set propostas.programa_id from a C5-derived link only where
// it is currently null.
func (s *ProposalStore) ResolveProgramLinks(ctx context.Context, tx *sqlx.Tx, links map[string]string) (int, error) {
	var updated int
	for proposalID, programID := range links {
		res, err := tx.ExecContext(ctx,
			`UPDATE propostas SET programa_id = $1, updated_at = now() WHERE source_id = $2 AND programa_id IS NULL`,
			programID, proposalID,
		)
		if err != nil {
			return updated, pipelineerr.UpsertConflict("ProposalStore.ResolveProgramLinks", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return updated, err
		}
		updated += int(n)
	}
	return updated, nil
}
