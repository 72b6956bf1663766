package store

import (
	"context"

	"github.com/farxc/projetus/internal/pipelineerr"
	"github.com/jmoiron/sqlx"
)

type SupporterStore struct{}

func (s *SupporterStore) Upsert(ctx context.Context, tx *sqlx.Tx, rows []Supporter) (UpsertCounts, error) {
	var counts UpsertCounts
	for _, rng := range chunkInts(len(rows), batchSize) {
		batch := rows[rng[0]:rng[1]]
		builder := psql.Insert("apoiadores").
			Columns("natural_key", "nome_parlamentar", "created_at", "updated_at", "extraction_date")
		for _, r := range batch {
			builder = builder.Values(r.NaturalKey, r.NomeParlamentar, r.CreatedAt, r.UpdatedAt, r.ExtractionDate)
		}
		builder = builder.Suffix(`ON CONFLICT (natural_key) DO UPDATE SET
			nome_parlamentar = EXCLUDED.nome_parlamentar,
			updated_at = EXCLUDED.updated_at,
			extraction_date = EXCLUDED.extraction_date
			RETURNING (xmax = 0) AS inserted`)

		query, args, err := builder.ToSql()
		if err != nil {
			return counts, err
		}
		rowsRes, err := tx.QueryxContext(ctx, query, args...)
		if err != nil {
			return counts, pipelineerr.UpsertConflict("SupporterStore.Upsert", err)
		}
		if err := scanInsertedUpdated(rowsRes, &counts); err != nil {
			return counts, err
		}
	}
	return counts, nil
}

type AmendmentStore struct{}

func (s *AmendmentStore) Upsert(ctx context.Context, tx *sqlx.Tx, rows []Amendment) (UpsertCounts, error) {
	var counts UpsertCounts
	for _, rng := range chunkInts(len(rows), batchSize) {
		batch := rows[rng[0]:rng[1]]
		builder := psql.Insert("emendas").
			Columns("numero", "autor", "valor", "tipo", "ano", "created_at", "updated_at", "extraction_date")
		for _, r := range batch {
			builder = builder.Values(r.Numero, r.Autor, r.Valor, r.Tipo, r.Ano, r.CreatedAt, r.UpdatedAt, r.ExtractionDate)
		}
		builder = builder.Suffix(`ON CONFLICT (numero) DO UPDATE SET
			autor = EXCLUDED.autor,
			valor = EXCLUDED.valor,
			tipo = EXCLUDED.tipo,
			ano = EXCLUDED.ano,
			updated_at = EXCLUDED.updated_at,
			extraction_date = EXCLUDED.extraction_date
			RETURNING (xmax = 0) AS inserted`)

		query, args, err := builder.ToSql()
		if err != nil {
			return counts, err
		}
		rowsRes, err := tx.QueryxContext(ctx, query, args...)
		if err != nil {
			return counts, pipelineerr.UpsertConflict("AmendmentStore.Upsert", err)
		}
		if err := scanInsertedUpdated(rowsRes, &counts); err != nil {
			return counts, err
		}
	}
	return counts, nil
}
