// Package proponent implements C6, the Proponent Dimension Builder (§4.6).
// There is no literal grounding for CNPJ normalization in the original
// source (extract_proponentes_from_propostas/normalize_cnpj are imported by
// pipeline.py but never defined in upsert.py); this package follows §4.6
// and the public CNPJ check-digit algorithm directly.
package proponent

import (
	"strings"
	"unicode"

	"github.com/farxc/projetus/internal/model"
)

// cnpjWeightsBase is the standard CNPJ first check-digit weight sequence;
// the second check digit uses the same sequence with a leading 6.
var cnpjWeightsBase = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

// NormalizeCNPJ strips non-digits, left-pads to 14, and rejects all-zero or
// check-digit failures per §4.6 step 1. ok is false when the candidate is
// not a valid CNPJ.
func NormalizeCNPJ(raw string) (normalized string, ok bool) {
	var digits strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	if len(s) == 0 {
		return "", false
	}
	if len(s) > 14 {
		return "", false
	}
	s = strings.Repeat("0", 14-len(s)) + s

	if s == "00000000000000" {
		return "", false
	}
	if !validCNPJCheckDigits(s) {
		return "", false
	}
	return s, true
}

func validCNPJCheckDigits(s string) bool {
	digits := make([]int, 14)
	for i, r := range s {
		digits[i] = int(r - '0')
	}

	check := func(base []int, weights []int) int {
		sum := 0
		for i, w := range weights {
			sum += base[i] * w
		}
		rem := sum % 11
		if rem < 2 {
			return 0
		}
		return 11 - rem
	}

	firstWeights := cnpjWeightsBase
	d1 := check(digits[:12], firstWeights)
	if d1 != digits[12] {
		return false
	}

	secondWeights := append([]int{6}, firstWeights...)
	d2 := check(digits[:13], secondWeights)
	return d2 == digits[13]
}

// isGovernmentExclusion covers the government range (1XX codes) that
// §4.6 step 3 carves out of the non-profit prefix '3'.
func isGovernmentExclusion(naturezaJuridica string) bool {
	return strings.HasPrefix(strings.TrimSpace(naturezaJuridica), "1")
}

// IsOSC is the pure function invariant 4 requires: natureza_juridica begins
// with '3' (IBGE CONCLA non-profit range) and is not in the 1XX government
// exclusion set. Unknown codes default to false.
func IsOSC(naturezaJuridica string) bool {
	n := strings.TrimSpace(naturezaJuridica)
	if n == "" {
		return false
	}
	if isGovernmentExclusion(n) {
		return false
	}
	return strings.HasPrefix(n, "3")
}

// Build runs C6 over a batch of Proposals parsed in the same run: it
// normalizes each proponent CNPJ candidate, deduplicates by the normalized
// value keeping the first complete attribute set, writes the normalized
// CNPJ back onto each Proposal, and returns the deduplicated dimension.
func Build(proposals []model.ProposalInput) []model.ProponentInput {
	seen := make(map[string]bool)
	var dimension []model.ProponentInput

	for i := range proposals {
		p := &proposals[i]
		normalized, ok := NormalizeCNPJ(p.ProponenteCNPJRaw)
		if !ok {
			p.ProponenteCNPJ = nil
			continue
		}
		p.ProponenteCNPJ = &normalized

		if seen[normalized] {
			continue
		}
		seen[normalized] = true

		dimension = append(dimension, model.ProponentInput{
			CNPJ:             normalized,
			Nome:             p.ProponenteNome,
			NaturezaJuridica: p.ProponenteNaturezaJuridica,
			Estado:           p.ProponenteEstado,
			Municipio:        p.ProponenteMunicipio,
			CEP:              p.ProponenteCEP,
			Endereco:         p.ProponenteEndereco,
			Bairro:           p.ProponenteBairro,
			IsOSC:            IsOSC(p.ProponenteNaturezaJuridica),
		})
	}

	return dimension
}
