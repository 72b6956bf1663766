package proponent

import (
	"testing"

	"github.com/farxc/projetus/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCNPJAcceptsPunctuatedAndBareForms(t *testing.T) {
	punctuated, ok := NormalizeCNPJ("27.167.477/0001-12")
	require.True(t, ok)
	bare, ok := NormalizeCNPJ("27167477000112")
	require.True(t, ok)
	assert.Equal(t, punctuated, bare)
	assert.Equal(t, "27167477000112", bare)
}

func TestNormalizeCNPJRejectsAllZeros(t *testing.T) {
	_, ok := NormalizeCNPJ("00000000000000")
	assert.False(t, ok)
}

func TestNormalizeCNPJRejectsBadCheckDigit(t *testing.T) {
	_, ok := NormalizeCNPJ("27167477000113")
	assert.False(t, ok)
}

func TestNormalizeCNPJRejectsEmpty(t *testing.T) {
	_, ok := NormalizeCNPJ("")
	assert.False(t, ok)
}

func TestIsOSCPrefix3MinusGovernmentExclusion(t *testing.T) {
	assert.True(t, IsOSC("399-9"))
	assert.False(t, IsOSC("103-0"), "1XX codes are excluded even if somehow matched")
	assert.False(t, IsOSC("205-1"))
	assert.False(t, IsOSC(""))
}

func TestBuildDeduplicatesByCNPJKeepingFirstAttributeSet(t *testing.T) {
	proposals := []model.ProposalInput{
		{SourceID: "p1", ProponenteCNPJRaw: "27.167.477/0001-12", ProponenteNome: "Primeiro Nome"},
		{SourceID: "p2", ProponenteCNPJRaw: "27167477000112", ProponenteNome: "Segundo Nome"},
		{SourceID: "p3", ProponenteCNPJRaw: "00000000000000", ProponenteNome: "Zerado"},
	}

	dimension := Build(proposals)

	require.Len(t, dimension, 1)
	assert.Equal(t, "27167477000112", dimension[0].CNPJ)
	assert.Equal(t, "Primeiro Nome", dimension[0].Nome)

	require.NotNil(t, proposals[0].ProponenteCNPJ)
	require.NotNil(t, proposals[1].ProponenteCNPJ)
	assert.Equal(t, "27167477000112", *proposals[0].ProponenteCNPJ)
	assert.Nil(t, proposals[2].ProponenteCNPJ, "rejected CNPJ leaves the proposal with a null reference, not dropped")
}
