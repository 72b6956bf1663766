// Package schema implements C3, the Schema Normalizer (§4.3).
package schema

import (
	"strings"
	"unicode"

	"github.com/farxc/projetus/internal/pipelineerr"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EntityType names one of the three schema shapes the pipeline reads.
type EntityType string

const (
	EntityPropostas         EntityType = "propostas"
	EntityProgramas         EntityType = "programas"
	EntityApoiadoresEmendas EntityType = "apoiadores_emendas"
)

// aliasTables maps canonical field name -> recognized raw header variants,
// compile-time data per §9 Design Notes ("per-entity alias maps as
// compile-time data"). Variants are listed as a human would write them;
// normalizeHeader folds both sides before comparison, so case/accent
// variation doesn't need to be spelled out here.
var aliasTables = map[EntityType]map[string][]string{
	EntityPropostas: {
		"source_id":                   {"id_proposta", "id", "proposta_id"},
		"titulo":                      {"titulo", "titulo_proposta", "objeto"},
		"valor_global":                {"valor_global", "valor_proposta", "vl_global"},
		"data_publicacao":             {"data_publicacao", "dt_publicacao"},
		"estado":                      {"uf", "estado", "sigla_uf"},
		"municipio":                   {"municipio", "nome_municipio"},
		"situacao":                    {"situacao", "situacao_proposta", "status"},
		"programa_id":                 {"id_programa", "programa_id"},
		"proponente_cnpj":             {"cnpj_proponente", "cnpj", "cnpj_beneficiario"},
		"proponente_nome":             {"nome_proponente", "proponente", "razao_social"},
		"proponente_natureza_juridica": {"natureza_juridica", "natureza_juridica_proponente"},
		"proponente_estado":           {"uf_proponente", "estado_proponente"},
		"proponente_municipio":        {"municipio_proponente"},
		"proponente_cep":              {"cep_proponente", "cep"},
		"proponente_endereco":         {"endereco_proponente", "endereco", "logradouro"},
		"proponente_bairro":           {"bairro_proponente", "bairro"},
	},
	EntityProgramas: {
		"source_id": {"id_programa", "id", "programa_id"},
		"nome":      {"nome_programa", "nome", "descricao_programa"},
		"orgao":     {"orgao", "orgao_responsavel", "nome_orgao"},
	},
	EntityApoiadoresEmendas: {
		"proposta_source_id": {"id_cnpj_programa_emenda_apoiadores_emendas", "id_proposta"},
		"numero_emenda":      {"numero_emenda_apoiadores_emendas", "numero_emenda"},
		"nome_parlamentar":   {"nome_parlamentar_apoiadores_emendas", "nome_parlamentar"},
		"programa_id":        {"id_programa"},
		"tipo_emenda":        {"indicacao_apoiadores_emendas", "tipo_emenda"},
		"orgao_proponente":   {"nome_proponente_apoiadores_emendas", "orgao_proponente"},
		"valor_repasse":      {"valor_repasse_proposta_apoiadores_emendas", "valor_repasse"},
	},
}

// requiredFields is the per-entity set that must be covered by the header
// mapping (§4.3) or the file fails SchemaValidationError.
var requiredFields = map[EntityType][]string{
	EntityPropostas:         {"source_id"},
	EntityProgramas:         {"source_id"},
	EntityApoiadoresEmendas: {"proposta_source_id", "numero_emenda", "nome_parlamentar", "programa_id", "orgao_proponente", "valor_repasse"},
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeHeader implements the pure function §9 Design Notes calls for:
// strip BOM, lowercase, remove accents, collapse non-alphanumeric runs to
// underscores, trim.
func normalizeHeader(raw string) string {
	s := strings.TrimPrefix(raw, "\ufeff")
	s = strings.ToLower(s)

	stripped, _, err := transform.String(diacriticStripper, s)
	if err == nil {
		s = stripped
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// Mapping resolves raw source headers to canonical field names for one
// entity. Columns the pipeline doesn't recognize are left unmapped and
// ignored downstream (§4.4: "Unknown fields are ignored").
type Mapping map[string]string // raw header (as it appears in the table) -> canonical name

// Resolve builds the header Mapping for entity from the raw column names in
// a parsed table, failing with SchemaValidationError naming every missing
// canonical column if the required set isn't covered.
func Resolve(entity EntityType, rawHeaders []string) (Mapping, error) {
	normalizedToCanonical := make(map[string]string)
	for canonical, variants := range aliasTables[entity] {
		normalizedToCanonical[normalizeHeader(canonical)] = canonical
		for _, v := range variants {
			normalizedToCanonical[normalizeHeader(v)] = canonical
		}
	}

	mapping := make(Mapping)
	covered := make(map[string]bool)
	for _, raw := range rawHeaders {
		if canonical, ok := normalizedToCanonical[normalizeHeader(raw)]; ok {
			mapping[raw] = canonical
			covered[canonical] = true
		}
	}

	var missing []string
	for _, req := range requiredFields[entity] {
		if !covered[req] {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, pipelineerr.SchemaValidation("schema.Resolve:"+string(entity), missing)
	}
	return mapping, nil
}
