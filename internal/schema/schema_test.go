package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeaderStripsAccentsCaseAndPunctuation(t *testing.T) {
	assert.Equal(t, "municipio", normalizeHeader("Município"))
	assert.Equal(t, "id_proposta", normalizeHeader("ID-Proposta"))
	assert.Equal(t, "uf", normalizeHeader("\ufeffUF"))
}

func TestResolveMapsKnownAliases(t *testing.T) {
	mapping, err := Resolve(EntityPropostas, []string{"ID_PROPOSTA", "Município", "UF"})
	require.NoError(t, err)
	assert.Equal(t, "source_id", mapping["ID_PROPOSTA"])
	assert.Equal(t, "municipio", mapping["Município"])
	assert.Equal(t, "estado", mapping["UF"])
}

func TestResolveFailsOnMissingRequiredColumn(t *testing.T) {
	_, err := Resolve(EntityApoiadoresEmendas, []string{"numero_emenda_apoiadores_emendas"})
	require.Error(t, err)
}

func TestResolveIgnoresUnknownColumns(t *testing.T) {
	mapping, err := Resolve(EntityPropostas, []string{"ID_PROPOSTA", "coluna_nova_do_portal"})
	require.NoError(t, err)
	_, mapped := mapping["coluna_nova_do_portal"]
	assert.False(t, mapped)
}
