// Package relate implements C5, the Relationship Extractor (§4.5). It turns
// the apoiadores_emendas link table — one row per (proposal, amendment,
// supporter, program) association — into distinct entities plus junctions.
package relate

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/farxc/projetus/internal/model"
	"github.com/farxc/projetus/internal/schema"
	"github.com/go-gota/gota/dataframe"
)

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

// SupporterKey derives the Supporter natural key from a normalized
// parliamentarian name: the first 16 hex characters of its SHA-256 (§3.1).
func SupporterKey(nomeParlamentar string) string {
	sum := sha256.Sum256([]byte(strings.ToUpper(strings.TrimSpace(nomeParlamentar))))
	return hex.EncodeToString(sum[:])[:16]
}

// Extract converts the apoiadores_emendas table into C5's full output. The
// extractor never synthesizes a natural key from a foreign-intent column —
// program_id never feeds SupporterKey, numero_emenda never feeds it either.
func Extract(table dataframe.DataFrame, mapping schema.Mapping) model.RelationshipExtraction {
	out := model.RelationshipExtraction{ProgramLinks: make(map[string]string)}

	seenSupporters := make(map[string]bool)
	seenAmendments := make(map[string]bool)
	seenProposalSupporters := make(map[string]bool)
	seenProposalAmendments := make(map[string]bool)

	n := table.Nrow()
	for i := 0; i < n; i++ {
		propostaID := cell(table, mapping, "proposta_source_id", i)
		numeroEmenda := cell(table, mapping, "numero_emenda", i)
		nomeParlamentar := cell(table, mapping, "nome_parlamentar", i)
		programaID := cell(table, mapping, "programa_id", i)
		tipoEmenda := cell(table, mapping, "tipo_emenda", i)
		autor := cell(table, mapping, "orgao_proponente", i)
		valor := parseMoney(cell(table, mapping, "valor_repasse", i))

		hasProposta := propostaID != ""
		hasSupporter := nomeParlamentar != ""
		hasAmendment := numeroEmenda != ""

		if !hasProposta && !hasSupporter && !hasAmendment {
			out.PartialRows++
			continue
		}

		if hasSupporter {
			key := SupporterKey(nomeParlamentar)
			if !seenSupporters[key] {
				seenSupporters[key] = true
				out.Supporters = append(out.Supporters, model.SupporterInput{
					NaturalKey:      key,
					NomeParlamentar: nomeParlamentar,
				})
			}
			if hasProposta {
				junctionKey := propostaID + "\x00" + key
				if !seenProposalSupporters[junctionKey] {
					seenProposalSupporters[junctionKey] = true
					out.ProposalSupporters = append(out.ProposalSupporters, model.ProposalSupporterLink{
						PropostaSourceID:   propostaID,
						ApoiadorNaturalKey: key,
					})
				}
			} else {
				out.PartialRows++
			}
		}

		if hasAmendment {
			if !seenAmendments[numeroEmenda] {
				seenAmendments[numeroEmenda] = true
				out.Amendments = append(out.Amendments, model.AmendmentInput{
					Numero: numeroEmenda,
					Autor:  autor,
					Valor:  valor,
					Tipo:   tipoEmenda,
					Ano:    nil,
				})
			}
			if hasProposta {
				junctionKey := propostaID + "\x00" + numeroEmenda
				if !seenProposalAmendments[junctionKey] {
					seenProposalAmendments[junctionKey] = true
					out.ProposalAmendments = append(out.ProposalAmendments, model.ProposalAmendmentLink{
						PropostaSourceID: propostaID,
						EmendaNumero:     numeroEmenda,
					})
				}
			} else {
				out.PartialRows++
			}
		}

		if hasProposta && programaID != "" {
			if _, exists := out.ProgramLinks[propostaID]; !exists {
				out.ProgramLinks[propostaID] = programaID
			}
		}
	}

	return out
}

func parseMoney(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}
