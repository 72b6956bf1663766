package store

import (
	"context"

	"github.com/farxc/projetus/internal/pipelineerr"
	"github.com/jmoiron/sqlx"
)

type ProponentStore struct{}

func (s *ProponentStore) Upsert(ctx context.Context, tx *sqlx.Tx, rows []Proponent) (UpsertCounts, error) {
	var counts UpsertCounts
	for _, rng := range chunkInts(len(rows), batchSize) {
		batch := rows[rng[0]:rng[1]]
		builder := psql.Insert("proponentes").Columns(
			"cnpj", "nome", "natureza_juridica", "estado", "municipio", "cep",
			"endereco", "bairro", "is_osc", "created_at", "updated_at", "extraction_date",
		)
		for _, r := range batch {
			builder = builder.Values(
				r.CNPJ, r.Nome, r.NaturezaJuridica, r.Estado, r.Municipio, r.CEP,
				r.Endereco, r.Bairro, r.IsOSC, r.CreatedAt, r.UpdatedAt, r.ExtractionDate,
			)
		}
		// Aggregate columns are intentionally absent here — they are never
		// set by the loader, only recomputed in-store by C8 (§4.8, §3.2
		// invariant 5: "never partially updated").
		builder = builder.Suffix(`ON CONFLICT (cnpj) DO UPDATE SET
			nome = EXCLUDED.nome,
			natureza_juridica = EXCLUDED.natureza_juridica,
			estado = EXCLUDED.estado,
			municipio = EXCLUDED.municipio,
			cep = EXCLUDED.cep,
			endereco = EXCLUDED.endereco,
			bairro = EXCLUDED.bairro,
			is_osc = EXCLUDED.is_osc,
			updated_at = EXCLUDED.updated_at,
			extraction_date = EXCLUDED.extraction_date
			RETURNING (xmax = 0) AS inserted`)

		query, args, err := builder.ToSql()
		if err != nil {
			return counts, err
		}
		rowsRes, err := tx.QueryxContext(ctx, query, args...)
		if err != nil {
			return counts, pipelineerr.UpsertConflict("ProponentStore.Upsert", err)
		}
		if err := scanInsertedUpdated(rowsRes, &counts); err != nil {
			return counts, err
		}
	}
	return counts, nil
}

// RecomputeAggregates implements C8 (§4.8): three metrics computed in-store,
// each with two statements — one sets the value for proponents that have
// matching proposals, one resets the rest to 0 — so every value is a pure
// function of current Proposal/junction state and is overwritten wholesale,
// never partially updated (§3.2 invariant 5).
func (s *ProponentStore) RecomputeAggregates(ctx context.Context, tx *sqlx.Tx) error {
	statements := []string{
		`UPDATE proponentes p SET total_propostas = sub.n
			FROM (
				SELECT proponente_cnpj AS cnpj, count(*) AS n
				FROM propostas
				WHERE proponente_cnpj IS NOT NULL
				GROUP BY proponente_cnpj
			) sub
			WHERE sub.cnpj = p.cnpj`,
		`UPDATE proponentes p SET total_propostas = 0
			WHERE NOT EXISTS (
				SELECT 1 FROM propostas pr WHERE pr.proponente_cnpj = p.cnpj
			)`,
		`UPDATE proponentes p SET total_emendas = sub.n
			FROM (
				SELECT pr.proponente_cnpj AS cnpj, count(*) AS n
				FROM proposta_emendas pe
				JOIN propostas pr ON pr.source_id = pe.proposta_source_id
				WHERE pr.proponente_cnpj IS NOT NULL
				GROUP BY pr.proponente_cnpj
			) sub
			WHERE sub.cnpj = p.cnpj`,
		`UPDATE proponentes p SET total_emendas = 0
			WHERE NOT EXISTS (
				SELECT 1 FROM propostas pr
				JOIN proposta_emendas pe ON pe.proposta_source_id = pr.source_id
				WHERE pr.proponente_cnpj = p.cnpj
			)`,
		`UPDATE proponentes p SET valor_total_emendas = sub.total
			FROM (
				SELECT pr.proponente_cnpj AS cnpj, coalesce(sum(e.valor), 0) AS total
				FROM proposta_emendas pe
				JOIN propostas pr ON pr.source_id = pe.proposta_source_id
				JOIN emendas e ON e.numero = pe.emenda_numero
				WHERE pr.proponente_cnpj IS NOT NULL
				GROUP BY pr.proponente_cnpj
			) sub
			WHERE sub.cnpj = p.cnpj`,
		`UPDATE proponentes p SET valor_total_emendas = 0
			WHERE NOT EXISTS (
				SELECT 1 FROM propostas pr
				JOIN proposta_emendas pe ON pe.proposta_source_id = pr.source_id
				WHERE pr.proponente_cnpj = p.cnpj
			)`,
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return pipelineerr.UpsertConflict("ProponentStore.RecomputeAggregates", err)
		}
	}
	return nil
}
