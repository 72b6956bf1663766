package validate

import (
	"testing"

	"github.com/farxc/projetus/internal/schema"
	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proposalsTable(records [][]string) (dataframe.DataFrame, schema.Mapping) {
	df := dataframe.LoadRecords(records)
	mapping, err := schema.Resolve(schema.EntityPropostas, df.Names())
	if err != nil {
		panic(err)
	}
	return df, mapping
}

func TestProposalsRejectsEmptySourceID(t *testing.T) {
	df, mapping := proposalsTable([][]string{
		{"id_proposta", "uf", "valor_global"},
		{"", "SP", "100,00"},
		{"p2", "sp", "200,00"},
	})

	res := Proposals(df, mapping)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, 0, res.Errors[0].Index)
	require.Len(t, res.Valid, 1)
	assert.Equal(t, "p2", res.Valid[0].SourceID)
	assert.Equal(t, "SP", res.Valid[0].Estado) // normalized to uppercase
}

func TestProposalsRejectsUnknownUF(t *testing.T) {
	df, mapping := proposalsTable([][]string{
		{"id_proposta", "uf"},
		{"p1", "ZZ"},
	})

	res := Proposals(df, mapping)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Reason, "ZZ")
	assert.Empty(t, res.Valid)
}

func TestProposalsRejectsNegativeValue(t *testing.T) {
	df, mapping := proposalsTable([][]string{
		{"id_proposta", "valor_global"},
		{"p1", "-10,00"},
	})

	res := Proposals(df, mapping)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Reason, "valor_global")
}

func TestProposalsParsesBrazilianDate(t *testing.T) {
	df, mapping := proposalsTable([][]string{
		{"id_proposta", "data_publicacao"},
		{"p1", "06/02/2026"},
	})

	res := Proposals(df, mapping)

	require.Len(t, res.Valid, 1)
	require.NotNil(t, res.Valid[0].DataPublicacao)
	assert.Equal(t, 2026, res.Valid[0].DataPublicacao.Year())
	assert.Equal(t, 2, int(res.Valid[0].DataPublicacao.Month()))
	assert.Equal(t, 6, res.Valid[0].DataPublicacao.Day())
}

func TestProposalsIgnoresUnknownColumns(t *testing.T) {
	df, mapping := proposalsTable([][]string{
		{"id_proposta", "coluna_desconhecida"},
		{"p1", "qualquer_coisa"},
	})

	res := Proposals(df, mapping)

	require.Len(t, res.Valid, 1)
	assert.Empty(t, res.Errors)
}

func TestProposalsCarriesProgramaIDFromFile(t *testing.T) {
	df, mapping := proposalsTable([][]string{
		{"id_proposta", "id_programa"},
		{"p1", "prog1"},
	})

	res := Proposals(df, mapping)

	require.Len(t, res.Valid, 1)
	require.NotNil(t, res.Valid[0].ProgramaID)
	assert.Equal(t, "prog1", *res.Valid[0].ProgramaID)
}

func TestProposalsLeavesProgramaIDNilWhenColumnBlank(t *testing.T) {
	df, mapping := proposalsTable([][]string{
		{"id_proposta", "id_programa"},
		{"p1", ""},
	})

	res := Proposals(df, mapping)

	require.Len(t, res.Valid, 1)
	assert.Nil(t, res.Valid[0].ProgramaID)
}

func TestProgramsRejectsEmptySourceID(t *testing.T) {
	df := dataframe.LoadRecords([][]string{
		{"id_programa", "nome_programa"},
		{"", "Programa X"},
		{"prog1", "Programa Y"},
	})
	mapping, err := schema.Resolve(schema.EntityProgramas, df.Names())
	require.NoError(t, err)

	res := Programs(df, mapping)

	require.Len(t, res.Errors, 1)
	require.Len(t, res.Valid, 1)
	assert.Equal(t, "prog1", res.Valid[0].SourceID)
}
