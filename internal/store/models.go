package store

import "time"

// Program represents the 'programas' table (§3.1, §6.5).
type Program struct {
	SourceID       string    `db:"source_id"`
	Nome           string    `db:"nome"`
	Orgao          string    `db:"orgao"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	ExtractionDate time.Time `db:"extraction_date"`
}

// Proposal represents the 'propostas' table.
type Proposal struct {
	SourceID        string     `db:"source_id"`
	Titulo          string     `db:"titulo"`
	ValorGlobal     *float64   `db:"valor_global"`
	DataPublicacao  *time.Time `db:"data_publicacao"`
	Estado          string     `db:"estado"`
	Municipio       string     `db:"municipio"`
	Situacao        string     `db:"situacao"`
	ProgramaID      *string    `db:"programa_id"`
	ProponenteCNPJ  *string    `db:"proponente_cnpj"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	ExtractionDate  time.Time  `db:"extraction_date"`
}

// Supporter represents the 'apoiadores' table — a parliamentarian backing
// proposals, identified by a derived natural key (§3.1).
type Supporter struct {
	NaturalKey       string    `db:"natural_key"`
	NomeParlamentar  string    `db:"nome_parlamentar"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
	ExtractionDate   time.Time `db:"extraction_date"`
}

// Amendment represents the 'emendas' table.
type Amendment struct {
	Numero         string    `db:"numero"`
	Autor          string    `db:"autor"`
	Valor          *float64  `db:"valor"`
	Tipo           string    `db:"tipo"`
	Ano            *int      `db:"ano"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	ExtractionDate time.Time `db:"extraction_date"`
}

// ProposalSupporter represents the 'proposta_apoiadores' junction table.
type ProposalSupporter struct {
	PropostaSourceID   string    `db:"proposta_source_id"`
	ApoiadorNaturalKey string    `db:"apoiador_natural_key"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
	ExtractionDate     time.Time `db:"extraction_date"`
}

// ProposalAmendment represents the 'proposta_emendas' junction table.
type ProposalAmendment struct {
	PropostaSourceID string    `db:"proposta_source_id"`
	EmendaNumero     string    `db:"emenda_numero"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
	ExtractionDate   time.Time `db:"extraction_date"`
}

// Proponent represents the 'proponentes' dimension table (§4.6).
type Proponent struct {
	CNPJ               string    `db:"cnpj"`
	Nome               string    `db:"nome"`
	NaturezaJuridica   string    `db:"natureza_juridica"`
	Estado             string    `db:"estado"`
	Municipio          string    `db:"municipio"`
	CEP                string    `db:"cep"`
	Endereco           string    `db:"endereco"`
	Bairro             string    `db:"bairro"`
	IsOSC              bool      `db:"is_osc"`
	TotalPropostas     int       `db:"total_propostas"`
	TotalEmendas       int       `db:"total_emendas"`
	ValorTotalEmendas  float64   `db:"valor_total_emendas"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
	ExtractionDate     time.Time `db:"extraction_date"`
}

// LineageRecord represents the append-only 'data_lineage' table (§3.1, §4.9).
type LineageRecord struct {
	ID                  int64     `db:"id"`
	RunID               string    `db:"run_id"`
	EntityType          string    `db:"entity_type"`
	EntityNaturalKey     string    `db:"entity_natural_key"`
	SourceFile           string    `db:"source_file"`
	ExtractionTimestamp  time.Time `db:"extraction_timestamp"`
	PipelineVersion      string    `db:"pipeline_version"`
	RecordHash           string    `db:"record_hash"`
}

// RunLog represents the append-only 'extraction_logs' table (§3.1, §12).
type RunLog struct {
	ID               int64      `db:"id"`
	RunID            string     `db:"run_id"`
	Status           string     `db:"status"`
	TriggerType      string     `db:"trigger_type"`
	StartedAt        time.Time  `db:"started_at"`
	FinishedAt       *time.Time `db:"finished_at"`
	DurationSeconds  *float64   `db:"duration_seconds"`
	FilesDownloaded  *int       `db:"files_downloaded"`
	TotalRecords     int        `db:"total_records"`
	RecordsInserted  int        `db:"records_inserted"`
	RecordsUpdated   int        `db:"records_updated"`
	RecordsSkipped   *int       `db:"records_skipped"`
	ErrorMessage     *string    `db:"error_message"`
}

var (
	TriggerTypeManual    = "manual"
	TriggerTypeScheduled = "scheduled"
)

var (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)
