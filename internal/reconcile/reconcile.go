// Package reconcile implements C10, the Reconciler (§4.10): it compares
// per-file row counts accepted by the schema against how many rows this
// run actually loaded, and flags a WARNING when the two drift past
// tolerance. Mismatches never roll back the transaction — they inform
// operators via the Alerter.
//
// Open Question #3 (spec.md §9, DESIGN.md): the apoiadores_emendas link
// file produces four distinct loaded shapes (two dimensions, deduplicated
// by design, and two junctions, which are not). Comparing a dimension's
// deduplicated count against the file's raw row count would manufacture a
// permanent breach that carries no signal — §8 scenario S1 loads 300 link
// rows into 45 supporters and 80 amendments and still expects `success`.
// This package therefore reconciles the link file against its junction row
// counts (proposta_apoiadores, proposta_emendas), which only shrink when a
// row is a genuine duplicate pair, not a intentional dimension dedup.
package reconcile

import (
	"fmt"

	"github.com/farxc/projetus/internal/pipelineerr"
	"gonum.org/v1/gonum/stat"
)

// Result is one (source file, loaded shape) pair's reconciliation outcome.
type Result struct {
	EntityType  string
	SourceFile  string
	SourceCount int
	LoadedCount int
	Discrepancy int
	Ratio       float64 // discrepancy / max(source_count, 1)
	Breach      bool    // ratio exceeds the configured tolerance
}

// Report is a run's full reconciliation outcome: every Result plus a
// run-level summary statistic over the ratios, so the Alerter's message can
// say "mean discrepancy 4.1%" instead of enumerating every file. Computed
// with gonum/stat — the reference's go.mod carries gonum unused; this is
// its first caller.
type Report struct {
	Results       []Result
	MeanRatio     float64
	VarianceRatio float64
}

// AnyBreach reports whether any pair exceeded tolerance, the signal the
// Orchestrator uses to downgrade a run from success to partial (§4.10).
func (r Report) AnyBreach() bool {
	for _, res := range r.Results {
		if res.Breach {
			return true
		}
	}
	return false
}

// Check computes a single source_count vs. loaded_count comparison (§4.10).
// It is a pure function — the caller resolves loadedCount however fits the
// shape being reconciled (a lineage count for a 1:1 dimension, a junction
// upsert count for the link file), per the package doc's Open Question #3
// resolution.
func Check(entityType, sourceFile string, sourceCount, loadedCount, tolerancePercent int) Result {
	discrepancy := sourceCount - loadedCount
	if discrepancy < 0 {
		discrepancy = -discrepancy
	}
	denom := sourceCount
	if denom < 1 {
		denom = 1
	}
	ratio := float64(discrepancy) / float64(denom)
	tolerance := float64(tolerancePercent) / 100.0

	return Result{
		EntityType:  entityType,
		SourceFile:  sourceFile,
		SourceCount: sourceCount,
		LoadedCount: loadedCount,
		Discrepancy: discrepancy,
		Ratio:       ratio,
		Breach:      ratio > tolerance,
	}
}

// Summarize folds a run's per-pair Results into a Report, computing the
// mean and variance of every ratio observed.
func Summarize(results []Result) Report {
	report := Report{Results: results}
	if len(results) == 0 {
		return report
	}
	ratios := make([]float64, len(results))
	for i, r := range results {
		ratios[i] = r.Ratio
	}
	report.MeanRatio = stat.Mean(ratios, nil)
	if len(ratios) > 1 {
		report.VarianceRatio = stat.Variance(ratios, nil)
	}
	return report
}

// Alert builds the reconciliation error the Orchestrator logs and forwards
// to the Alerter when a pair breaches tolerance (§7: ReconciliationDiscrepancy,
// WARNING severity).
func Alert(r Result, tolerancePercent int) *pipelineerr.Error {
	detail := fmt.Sprintf("%s (%s): %d%% > %d%% (source=%d loaded=%d)",
		r.SourceFile, r.EntityType, int(r.Ratio*100), tolerancePercent, r.SourceCount, r.LoadedCount)
	return pipelineerr.ReconciliationDiscrepancy("reconcile.Check:"+r.EntityType, detail)
}
