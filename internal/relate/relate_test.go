package relate

import (
	"testing"

	"github.com/farxc/projetus/internal/schema"
	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkTable(records [][]string) (dataframe.DataFrame, schema.Mapping) {
	df := dataframe.LoadRecords(records)
	mapping, err := schema.Resolve(schema.EntityApoiadoresEmendas, df.Names())
	if err != nil {
		panic(err)
	}
	return df, mapping
}

func TestExtractDeduplicatesSupportersAndAmendments(t *testing.T) {
	df, mapping := linkTable([][]string{
		{"id_cnpj_programa_emenda_apoiadores_emendas", "numero_emenda_apoiadores_emendas", "nome_parlamentar_apoiadores_emendas", "id_programa", "indicacao_apoiadores_emendas", "nome_proponente_apoiadores_emendas", "valor_repasse_proposta_apoiadores_emendas"},
		{"p1", "e1", "Deputado A", "prog1", "obrigatoria", "Órgão X", "1.000,00"},
		{"p1", "e2", "Deputado A", "prog1", "obrigatoria", "Órgão X", "2.000,00"},
		{"p2", "e1", "deputado a", "prog1", "obrigatoria", "Órgão X", "1.000,00"},
	})

	out := Extract(df, mapping)

	assert.Len(t, out.Supporters, 1, "same name, different casing, must collapse to one Supporter")
	assert.Len(t, out.Amendments, 2)
	assert.Len(t, out.ProposalSupporters, 2)
	assert.Len(t, out.ProposalAmendments, 3)
	assert.Equal(t, "prog1", out.ProgramLinks["p1"])
}

func TestExtractNeverSynthesizesSupporterKeyFromForeignColumn(t *testing.T) {
	df, mapping := linkTable([][]string{
		{"id_cnpj_programa_emenda_apoiadores_emendas", "numero_emenda_apoiadores_emendas", "nome_parlamentar_apoiadores_emendas", "id_programa", "indicacao_apoiadores_emendas", "nome_proponente_apoiadores_emendas", "valor_repasse_proposta_apoiadores_emendas"},
		{"p1", "e1", "", "prog1", "obrigatoria", "Órgão X", "1.000,00"},
	})

	out := Extract(df, mapping)

	assert.Empty(t, out.Supporters)
	assert.Empty(t, out.ProposalSupporters)
}

func TestExtractCountsPartialRowsMissingASide(t *testing.T) {
	df, mapping := linkTable([][]string{
		{"id_cnpj_programa_emenda_apoiadores_emendas", "numero_emenda_apoiadores_emendas", "nome_parlamentar_apoiadores_emendas", "id_programa", "indicacao_apoiadores_emendas", "nome_proponente_apoiadores_emendas", "valor_repasse_proposta_apoiadores_emendas"},
		{"", "e1", "Deputado A", "", "obrigatoria", "Órgão X", "1.000,00"},
	})

	out := Extract(df, mapping)

	require.Equal(t, 2, out.PartialRows) // missing proposal side for both supporter and amendment
}

func TestSupporterKeyStableAcrossCasing(t *testing.T) {
	assert.Equal(t, SupporterKey("Deputado A"), SupporterKey("deputado a"))
	assert.Equal(t, 16, len(SupporterKey("Deputado A")))
}
