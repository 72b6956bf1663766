package store

import "context"

// EnsureSchema creates the tables named in §6.5 if they don't already
// exist, mirroring the original's init_db(engine) / Base.metadata.create_all
// call — generalized from SQLAlchemy's declarative metadata to an explicit
// DDL script, since this codebase has no ORM layer to derive one from.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS programas (
	source_id TEXT PRIMARY KEY,
	nome TEXT NOT NULL DEFAULT '',
	orgao TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	extraction_date TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS propostas (
	source_id TEXT PRIMARY KEY,
	titulo TEXT NOT NULL DEFAULT '',
	valor_global NUMERIC,
	data_publicacao DATE,
	estado TEXT NOT NULL DEFAULT '',
	municipio TEXT NOT NULL DEFAULT '',
	situacao TEXT NOT NULL DEFAULT '',
	programa_id TEXT,
	proponente_cnpj TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	extraction_date TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_propostas_situacao ON propostas (situacao);
CREATE INDEX IF NOT EXISTS idx_propostas_estado ON propostas (estado);
CREATE INDEX IF NOT EXISTS idx_propostas_data_publicacao ON propostas (data_publicacao);
CREATE INDEX IF NOT EXISTS idx_propostas_valor_global ON propostas (valor_global);

CREATE TABLE IF NOT EXISTS apoiadores (
	natural_key TEXT PRIMARY KEY,
	nome_parlamentar TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	extraction_date TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS emendas (
	numero TEXT PRIMARY KEY,
	autor TEXT NOT NULL DEFAULT '',
	valor NUMERIC,
	tipo TEXT NOT NULL DEFAULT '',
	ano INT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	extraction_date TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS proposta_apoiadores (
	proposta_source_id TEXT NOT NULL,
	apoiador_natural_key TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	extraction_date TIMESTAMPTZ NOT NULL,
	UNIQUE (proposta_source_id, apoiador_natural_key)
);

CREATE TABLE IF NOT EXISTS proposta_emendas (
	proposta_source_id TEXT NOT NULL,
	emenda_numero TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	extraction_date TIMESTAMPTZ NOT NULL,
	UNIQUE (proposta_source_id, emenda_numero)
);

CREATE TABLE IF NOT EXISTS proponentes (
	cnpj TEXT PRIMARY KEY,
	nome TEXT NOT NULL DEFAULT '',
	natureza_juridica TEXT NOT NULL DEFAULT '',
	estado TEXT NOT NULL DEFAULT '',
	municipio TEXT NOT NULL DEFAULT '',
	cep TEXT NOT NULL DEFAULT '',
	endereco TEXT NOT NULL DEFAULT '',
	bairro TEXT NOT NULL DEFAULT '',
	is_osc BOOLEAN NOT NULL DEFAULT false,
	total_propostas INT NOT NULL DEFAULT 0,
	total_emendas INT NOT NULL DEFAULT 0,
	valor_total_emendas NUMERIC NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	extraction_date TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_proponentes_natureza_juridica ON proponentes (natureza_juridica);
CREATE INDEX IF NOT EXISTS idx_proponentes_is_osc ON proponentes (is_osc);
CREATE INDEX IF NOT EXISTS idx_proponentes_estado ON proponentes (estado);

CREATE TABLE IF NOT EXISTS data_lineage (
	id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_natural_key TEXT NOT NULL,
	source_file TEXT NOT NULL,
	extraction_timestamp TIMESTAMPTZ NOT NULL,
	pipeline_version TEXT NOT NULL,
	record_hash TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_data_lineage_run_entity ON data_lineage (run_id, entity_type, source_file);

CREATE TABLE IF NOT EXISTS extraction_logs (
	id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL,
	trigger_type TEXT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	duration_seconds DOUBLE PRECISION,
	files_downloaded INT,
	total_records INT NOT NULL DEFAULT 0,
	records_inserted INT NOT NULL DEFAULT 0,
	records_updated INT NOT NULL DEFAULT 0,
	records_skipped INT,
	error_message TEXT
);
`

func (s *Storage) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, schemaDDL)
	return err
}
