package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckWithinToleranceDoesNotBreach(t *testing.T) {
	r := Check("proposta", "propostas.csv", 100, 95, 10)
	assert.False(t, r.Breach)
	assert.Equal(t, 5, r.Discrepancy)
}

func TestCheckBeyondToleranceBreaches(t *testing.T) {
	// S6: 500 source rows, 60 rejected (440 loaded), 10% tolerance.
	r := Check("proposta", "propostas.csv", 500, 440, 10)
	assert.True(t, r.Breach)
	assert.Equal(t, 60, r.Discrepancy)
	assert.InDelta(t, 0.12, r.Ratio, 0.001)
}

func TestCheckJunctionDedupDoesNotBreachWhenPairsMatchRowCount(t *testing.T) {
	// S1: 300 link rows, 300 distinct proposta_apoiadores pairs.
	r := Check("proposta_apoiadores", "apoiadores_emendas.csv", 300, 300, 10)
	assert.False(t, r.Breach)
}

func TestCheckZeroSourceRowsDoesNotDivideByZero(t *testing.T) {
	r := Check("proposta", "empty.csv", 0, 0, 10)
	assert.False(t, r.Breach)
	assert.Equal(t, 0, r.Discrepancy)
}

func TestSummarizeComputesMeanAndVariance(t *testing.T) {
	results := []Result{
		{Ratio: 0.1},
		{Ratio: 0.3},
	}
	report := Summarize(results)
	assert.InDelta(t, 0.2, report.MeanRatio, 0.0001)
	assert.Greater(t, report.VarianceRatio, 0.0)
}

func TestAnyBreach(t *testing.T) {
	report := Report{Results: []Result{{Breach: false}, {Breach: true}}}
	assert.True(t, report.AnyBreach())

	report = Report{Results: []Result{{Breach: false}}}
	assert.False(t, report.AnyBreach())
}

func TestAlertMessageCitesPercentages(t *testing.T) {
	r := Check("proposta", "propostas.csv", 500, 440, 10)
	err := Alert(r, 10)
	assert.Contains(t, err.Error(), "12%")
	assert.Contains(t, err.Error(), "10%")
}
