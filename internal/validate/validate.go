// Package validate implements C4, the Entity Validator (§4.4).
package validate

import (
	"strconv"
	"strings"
	"time"

	"github.com/farxc/projetus/internal/model"
	"github.com/farxc/projetus/internal/pipelineerr"
	"github.com/farxc/projetus/internal/schema"
	"github.com/go-gota/gota/dataframe"
)

// ufSet is the 27 Brazilian federative units (26 states + Distrito Federal).
var ufSet = map[string]bool{
	"AC": true, "AL": true, "AP": true, "AM": true, "BA": true, "CE": true,
	"DF": true, "ES": true, "GO": true, "MA": true, "MT": true, "MS": true,
	"MG": true, "PA": true, "PB": true, "PR": true, "PE": true, "PI": true,
	"RJ": true, "RN": true, "RS": true, "RO": true, "RR": true, "SC": true,
	"SP": true, "SE": true, "TO": true,
}

// cell reads column `canonical` from row `idx` of table via the header
// mapping, returning "" if the column wasn't mapped or the cell is missing.
func cell(table dataframe.DataFrame, mapping schema.Mapping, canonical string, idx int) string {
	for raw, c := range mapping {
		if c != canonical {
			continue
		}
		v := table.Col(raw).Records()
		if idx < len(v) {
			return strings.TrimSpace(v[idx])
		}
	}
	return ""
}

// parseDate tolerantly parses DD/MM/YYYY or ISO (YYYY-MM-DD), per §4.4.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	layouts := []string{"02/01/2006", "2006-01-02", time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, &time.ParseError{Layout: "DD/MM/YYYY or ISO", Value: s}
}

// ProposalResult partitions a table's rows into typed valid records and row errors,
// mirroring the tagged-variant `{Ok(Record), Err(reason, row_index)}` shape
// (§9 Design Notes).
type ProposalResult struct {
	Valid  []model.ProposalInput
	Errors []pipelineerr.RowError
}

// Proposals validates a propostas table against schema mapping.
func Proposals(table dataframe.DataFrame, mapping schema.Mapping) ProposalResult {
	var res ProposalResult
	n := table.Nrow()
	for i := 0; i < n; i++ {
		sourceID := cell(table, mapping, "source_id", i)
		if sourceID == "" {
			res.Errors = append(res.Errors, pipelineerr.RowError{Index: i, Reason: "source_id empty"})
			continue
		}

		estado := strings.ToUpper(cell(table, mapping, "estado", i))
		if estado != "" && !ufSet[estado] {
			res.Errors = append(res.Errors, pipelineerr.RowError{Index: i, Reason: "estado not a recognized UF: " + estado})
			continue
		}

		valor, err := parseMoneyField(cell(table, mapping, "valor_global", i))
		if err != nil {
			res.Errors = append(res.Errors, pipelineerr.RowError{Index: i, Reason: "valor_global: " + err.Error()})
			continue
		}

		dataPub, err := parseDate(cell(table, mapping, "data_publicacao", i))
		if err != nil {
			res.Errors = append(res.Errors, pipelineerr.RowError{Index: i, Reason: "data_publicacao: " + err.Error()})
			continue
		}

		res.Valid = append(res.Valid, model.ProposalInput{
			SourceID:                   sourceID,
			Titulo:                     cell(table, mapping, "titulo", i),
			ValorGlobal:                valor,
			DataPublicacao:             dataPub,
			Estado:                     estado,
			Municipio:                  cell(table, mapping, "municipio", i),
			Situacao:                   cell(table, mapping, "situacao", i),
			ProgramaID:                 nonEmptyPointer(cell(table, mapping, "programa_id", i)),
			ProponenteCNPJRaw:          cell(table, mapping, "proponente_cnpj", i),
			ProponenteNome:             cell(table, mapping, "proponente_nome", i),
			ProponenteNaturezaJuridica: cell(table, mapping, "proponente_natureza_juridica", i),
			ProponenteEstado:           strings.ToUpper(cell(table, mapping, "proponente_estado", i)),
			ProponenteMunicipio:        cell(table, mapping, "proponente_municipio", i),
			ProponenteCEP:              cell(table, mapping, "proponente_cep", i),
			ProponenteEndereco:         cell(table, mapping, "proponente_endereco", i),
			ProponenteBairro:           cell(table, mapping, "proponente_bairro", i),
		})
	}
	return res
}

type ProgramResult struct {
	Valid  []model.ProgramInput
	Errors []pipelineerr.RowError
}

// Programs validates a programas table against schema mapping.
func Programs(table dataframe.DataFrame, mapping schema.Mapping) ProgramResult {
	var res ProgramResult
	n := table.Nrow()
	for i := 0; i < n; i++ {
		sourceID := cell(table, mapping, "source_id", i)
		if sourceID == "" {
			res.Errors = append(res.Errors, pipelineerr.RowError{Index: i, Reason: "source_id empty"})
			continue
		}
		res.Valid = append(res.Valid, model.ProgramInput{
			SourceID: sourceID,
			Nome:     cell(table, mapping, "nome", i),
			Orgao:    cell(table, mapping, "orgao", i),
		})
	}
	return res
}

// nonEmptyPointer turns a blank cell into a nil soft reference rather than a
// pointer to "", so ResolveProgramLinks' `IS NULL` backfill check behaves
// correctly for both "column absent" and "column present but empty" files.
func nonEmptyPointer(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseMoneyField(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if v < 0 {
		return nil, negativeMoneyErr{}
	}
	return &v, nil
}

type negativeMoneyErr struct{}

func (negativeMoneyErr) Error() string { return "negative monetary amount" }
