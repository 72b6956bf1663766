// Package model holds the plain, audit-free record shapes that flow between
// C2–C6. Audit columns (created_at/updated_at/extraction_date) are never
// carried here — §3.2 invariant 3 reserves those for the core to stamp at
// write time, in internal/load.
package model

import "time"

type ProgramInput struct {
	SourceID string
	Nome     string
	Orgao    string
}

type ProposalInput struct {
	SourceID       string
	Titulo         string
	ValorGlobal    *float64
	DataPublicacao *time.Time
	Estado         string
	Municipio      string
	Situacao       string
	ProgramaID     *string // soft reference to Program, read straight off the propostas file

	// Proponent attribute columns riding alongside the proposal row in the
	// source file (§4.6: "From the Proposal input"). C6 reads these to build
	// the deduplicated Proponent dimension; they are not persisted on
	// Proposal itself.
	ProponenteCNPJRaw         string
	ProponenteNome            string
	ProponenteNaturezaJuridica string
	ProponenteEstado          string
	ProponenteMunicipio       string
	ProponenteCEP             string
	ProponenteEndereco        string
	ProponenteBairro          string

	ProponenteCNPJ *string // set by C6 once normalized; nil if rejected
}

type SupporterInput struct {
	NaturalKey      string
	NomeParlamentar string
}

type AmendmentInput struct {
	Numero string
	Autor  string
	Valor  *float64
	Tipo   string
	Ano    *int
}

type ProposalSupporterLink struct {
	PropostaSourceID   string
	ApoiadorNaturalKey string
}

type ProposalAmendmentLink struct {
	PropostaSourceID string
	EmendaNumero     string
}

type ProponentInput struct {
	CNPJ             string
	Nome             string
	NaturezaJuridica string
	Estado           string
	Municipio        string
	CEP              string
	Endereco         string
	Bairro           string
	IsOSC            bool
}

// RelationshipExtraction is C5's full output (§4.5).
type RelationshipExtraction struct {
	Supporters          []SupporterInput
	Amendments          []AmendmentInput
	ProposalSupporters  []ProposalSupporterLink
	ProposalAmendments  []ProposalAmendmentLink
	ProgramLinks        map[string]string // proposal_source_id -> program_source_id
	PartialRows         int               // supporter/amendment sides seen without a proposal, plus rows with no side at all; one row can count twice
}

// FileGroup identifies one of the three raw file roles named in §6.1. The
// fourth entity, Amendment, has no file of its own — both Supporter and
// Amendment are derived from the ApoiadoresEmendas link file by C5.
type FileGroup string

const (
	FileGroupPropostas         FileGroup = "propostas"
	FileGroupApoiadoresEmendas FileGroup = "apoiadores_emendas"
	FileGroupProgramas         FileGroup = "programas"
)

// AllFileGroups is the complete expected set for a directory scan (§6.1,
// §4.11 SCAN_DIR).
var AllFileGroups = []FileGroup{FileGroupPropostas, FileGroupApoiadoresEmendas, FileGroupProgramas}
