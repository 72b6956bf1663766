// Package orchestrator implements C11 (§4.11): it sequences C1 through
// C10 behind a single-writer advisory lock, owns the one transaction a run
// ever opens, and produces the terminal RunLog every invocation leaves
// behind. Grounded on the reference's internal/transparency/orchestrator.go
// (component-tagged logging, status bookkeeping, retry-with-requeue)
// narrowed from that file's N-independent-day worker pool to the single
// directory / single transaction state machine this spec's §4.11 names.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/farxc/projetus/internal/aggregate"
	"github.com/farxc/projetus/internal/config"
	"github.com/farxc/projetus/internal/lineage"
	"github.com/farxc/projetus/internal/load"
	"github.com/farxc/projetus/internal/logger"
	"github.com/farxc/projetus/internal/model"
	"github.com/farxc/projetus/internal/pipelineerr"
	"github.com/farxc/projetus/internal/proponent"
	"github.com/farxc/projetus/internal/reconcile"
	"github.com/farxc/projetus/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrAlreadyRunning is returned immediately on advisory-lock contention
// (§4.11: "Contention returns immediately with AlreadyRunning"). It is not
// a pipelineerr.Error because it is not a run outcome — no RunLog is
// written for a run that never acquired the lock.
type ErrAlreadyRunning struct{}

func (ErrAlreadyRunning) Error() string { return "orchestrator: another run already holds the lock" }

// RunOptions parameterizes one invocation of Run.
type RunOptions struct {
	Dir     string // dated raw-file directory, §6.1
	Trigger string // store.TriggerTypeManual or store.TriggerTypeScheduled
}

// RunResult is everything the CLI and the Alerter need to report on a
// finished run.
type RunResult struct {
	RunID          string
	Status         string // store.StatusSuccess | StatusPartial | StatusFailed
	StartedAt      time.Time
	FinishedAt     time.Time
	Counts         load.Counts
	Reconciliation reconcile.Report
	SkippedGroups  map[model.FileGroup]string // group -> reason
	Warnings       []string
	SampleErrors   []string // up to sampleErrorLimit row/relationship errors, for the Alerter
	Err            error
}

const sampleErrorLimit = 10

// Orchestrator owns the database pool and the configuration snapshot; it is
// constructed once at process start and reused across runs (spec §9: no
// module-level cached engine, no global singleton — the pool and config are
// explicit fields here, not package state).
type Orchestrator struct {
	storage *store.Storage
	cfg     config.Config
	log     *logger.Logger
}

func New(storage *store.Storage, cfg config.Config, log *logger.Logger) *Orchestrator {
	return &Orchestrator{storage: storage, cfg: cfg, log: log}
}

// Run drives the state machine in §4.11:
//
//	IDLE -> ACQUIRE_LOCK -> SCAN_DIR -> PARSE(file_group_i) -> LOAD ->
//	AGGREGATE -> RECONCILE -> COMMIT -> LOG -> RELEASE_LOCK
//
// Per-file failures are quarantined (skip file group, continue, final
// status partial). Anything outside file scope rolls the transaction back
// and logs failed. The lock and any open connection are released on every
// exit path.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	runID := uuid.NewString()
	scoped := o.log.WithRun(runID)
	const component = "Orchestrator"

	result := RunResult{
		RunID:         runID,
		StartedAt:     time.Now(),
		SkippedGroups: make(map[model.FileGroup]string),
	}

	conn, err := o.storage.DB.Connx(ctx)
	if err != nil {
		return o.failed(ctx, scoped, result, fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Close()

	acquired, err := o.storage.AdvisoryLock.TryAcquire(ctx, conn)
	if err != nil {
		return o.failed(ctx, scoped, result, fmt.Errorf("acquire advisory lock: %w", err))
	}
	if !acquired {
		scoped.Warn(component, "lock contention, another run is in flight")
		return result, ErrAlreadyRunning{}
	}
	defer func() {
		if relErr := o.storage.AdvisoryLock.Release(context.Background(), conn); relErr != nil {
			scoped.Error(component, "failed to release advisory lock: %v", relErr)
		}
	}()

	scoped.Info(component, "scanning directory: dir=%s", opts.Dir)
	paths, scanWarnings, err := ScanDirectory(opts.Dir)
	if err != nil {
		return o.failed(ctx, scoped, result, fmt.Errorf("scan directory %s: %w", opts.Dir, err))
	}
	result.Warnings = append(result.Warnings, scanWarnings...)

	for _, group := range model.AllFileGroups {
		if _, ok := paths[group]; !ok {
			result.SkippedGroups[group] = "file missing from directory"
			scoped.Warn(component, "file group missing, quarantined: group=%s", group)
		}
	}

	var propostas ParsedPropostas
	if path, ok := paths[model.FileGroupPropostas]; ok {
		propostas, result = parseAndQuarantine(scoped, result, model.FileGroupPropostas, func() (ParsedPropostas, *pipelineerr.Error) {
			return ParsePropostas(path)
		})
	}
	if ctx.Err() != nil {
		return o.canceled(ctx, scoped, result)
	}

	var programas ParsedProgramas
	if path, ok := paths[model.FileGroupProgramas]; ok {
		programas, result = parseAndQuarantine(scoped, result, model.FileGroupProgramas, func() (ParsedProgramas, *pipelineerr.Error) {
			return ParseProgramas(path)
		})
	}
	if ctx.Err() != nil {
		return o.canceled(ctx, scoped, result)
	}

	var link ParsedApoiadoresEmendas
	if path, ok := paths[model.FileGroupApoiadoresEmendas]; ok {
		link, result = parseAndQuarantine(scoped, result, model.FileGroupApoiadoresEmendas, func() (ParsedApoiadoresEmendas, *pipelineerr.Error) {
			return ParseApoiadoresEmendas(path)
		})
	}
	if ctx.Err() != nil {
		return o.canceled(ctx, scoped, result)
	}

	proponents := proponent.Build(propostas.Valid)

	for _, rowErr := range propostas.RowErrors {
		result.SampleErrors = appendSample(result.SampleErrors, "propostas: "+rowErr.Error())
	}
	for _, rowErr := range programas.RowErrors {
		result.SampleErrors = appendSample(result.SampleErrors, "programas: "+rowErr.Error())
	}
	if link.Relationship.PartialRows > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("apoiadores_emendas: %d partial relationships in link rows", link.Relationship.PartialRows))
	}

	tx, err := o.storage.DB.BeginTxx(ctx, nil)
	if err != nil {
		return o.failed(ctx, scoped, result, fmt.Errorf("begin transaction: %w", err))
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	runTimestamp := time.Now()
	err = withRetry(ctx, func() error {
		var loadErr error
		result.Counts, loadErr = load.Run(ctx, tx, o.storage, runTimestamp, programas.Valid, propostas.Valid, link.Relationship, proponents)
		return loadErr
	})
	if err != nil {
		return o.failed(ctx, scoped, result, fmt.Errorf("load: %w", err))
	}
	if ctx.Err() != nil {
		return o.canceled(ctx, scoped, result)
	}

	err = withRetry(ctx, func() error { return aggregate.Run(ctx, tx, o.storage) })
	if err != nil {
		return o.failed(ctx, scoped, result, fmt.Errorf("aggregate: %w", err))
	}
	if ctx.Err() != nil {
		return o.canceled(ctx, scoped, result)
	}

	lineageBatch := lineage.Batch{
		RunID:           runID,
		PipelineVersion: o.cfg.Lineage.PipelineVersion,
		ExtractionTS:    runTimestamp,
		Programs:        programas.Valid,
		ProgramasFile:   programas.Path,
		Proposals:       propostas.Valid,
		PropostasFile:   propostas.Path,
		Supporters:      link.Relationship.Supporters,
		Amendments:      link.Relationship.Amendments,
		LinkFile:        link.Path,
		Proponents:      proponents,
	}
	if err := lineage.Run(ctx, tx, o.storage, lineageBatch); err != nil {
		return o.failed(ctx, scoped, result, fmt.Errorf("lineage: %w", err))
	}

	result.Reconciliation, err = o.reconcile(ctx, tx, runID, propostas, programas, link, result.Counts)
	if err != nil {
		return o.failed(ctx, scoped, result, fmt.Errorf("reconcile: %w", err))
	}
	if ctx.Err() != nil {
		return o.canceled(ctx, scoped, result)
	}
	for _, r := range result.Reconciliation.Results {
		if r.Breach {
			pe := reconcile.Alert(r, o.cfg.Reconciliation.VolumeTolerancePercent)
			scoped.Warn(component, "%s", pe.Error())
			result.Warnings = append(result.Warnings, pe.Error())
		}
	}

	result.Status = o.status(result)
	result.FinishedAt = time.Now()

	runLog := buildRunLog(result, opts.Trigger)
	if err := o.storage.RunLogs.Create(ctx, tx, runLog); err != nil {
		return o.failed(ctx, scoped, result, fmt.Errorf("write run log: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return o.failed(ctx, scoped, result, fmt.Errorf("commit: %w", err))
	}
	committed = true

	scoped.Info(component, "run finished: status=%s records=%d", result.Status, result.Counts.Total())
	return result, nil
}

// status determines success vs. partial from what happened during the run
// (§3.2 invariant 7, §4.10): any quarantined file group or reconciliation
// breach downgrades success to partial. Fatal errors never reach here —
// they return via o.failed before a status is assigned.
func (o *Orchestrator) status(result RunResult) string {
	if len(result.SkippedGroups) > 0 {
		return store.StatusPartial
	}
	if result.Reconciliation.AnyBreach() {
		return store.StatusPartial
	}
	return store.StatusSuccess
}

// reconcile runs C10 over every file group that had a path to reconcile
// against. A group whose file was missing from the directory (or failed
// encoding detection or reading outside the EmptyFile case) has no path and
// is skipped here; its absence is already recorded in SkippedGroups. A group
// quarantined after its file was found (empty file, schema failure, all rows
// invalid) keeps its path and is still reconciled. Proposals and Programs reconcile against
// their lineage-derived loaded_count (a 1:1 row-to-entity mapping); the
// link file reconciles against its own junction row counts, per
// reconcile's package doc resolution of Open Question #3.
func (o *Orchestrator) reconcile(ctx context.Context, tx *sqlx.Tx, runID string, propostas ParsedPropostas, programas ParsedProgramas, link ParsedApoiadoresEmendas, counts load.Counts) (reconcile.Report, error) {
	var results []reconcile.Result
	tolerance := o.cfg.Reconciliation.VolumeTolerancePercent

	if propostas.Path != "" {
		loaded, err := o.storage.Lineage.CountBySourceFile(ctx, tx, runID, string(lineage.EntityProposal), propostas.Path)
		if err != nil {
			return reconcile.Report{}, err
		}
		results = append(results, reconcile.Check(string(lineage.EntityProposal), propostas.Path, propostas.TotalRows, loaded, tolerance))
	}
	if programas.Path != "" {
		loaded, err := o.storage.Lineage.CountBySourceFile(ctx, tx, runID, string(lineage.EntityProgram), programas.Path)
		if err != nil {
			return reconcile.Report{}, err
		}
		results = append(results, reconcile.Check(string(lineage.EntityProgram), programas.Path, programas.TotalRows, loaded, tolerance))
	}
	if link.Path != "" {
		results = append(results,
			reconcile.Check("proposta_apoiadores", link.Path, link.TotalRows, counts.ProposalSupporters.Total(), tolerance),
			reconcile.Check("proposta_emendas", link.Path, link.TotalRows, counts.ProposalAmendments.Total(), tolerance),
		)
	}

	return reconcile.Summarize(results), nil
}

func appendSample(samples []string, s string) []string {
	if len(samples) >= sampleErrorLimit {
		return samples
	}
	return append(samples, s)
}

// parseAndQuarantine runs one file group's parser and, on a quarantine
// error (EmptyFile / SchemaValidationError / "all rows invalid" / a Fatal
// detect or read failure), records
// it on the result instead of propagating — per §4.11, a per-file error
// skips that file group and continues, the run becomes partial.
func parseAndQuarantine[T any](scoped *logger.Scoped, result RunResult, group model.FileGroup, parse func() (T, *pipelineerr.Error)) (T, RunResult) {
	const component = "Orchestrator"
	parsed, pe := parse()
	if pe != nil {
		result.SkippedGroups[group] = pe.Error()
		scoped.Warn(component, "file group quarantined: group=%s reason=%s", group, pe.Error())
	}
	return parsed, result
}

// failed implements the ROLLBACK -> LOG(failed) -> RELEASE_LOCK branch of
// §4.11's state machine. The run's own transaction (if one was opened) is
// rolled back by Run's deferred cleanup; this writes the failed RunLog
// out-of-band, on a plain connection, since nothing from the aborted
// transaction can be trusted to commit alongside it.
func (o *Orchestrator) failed(ctx context.Context, scoped *logger.Scoped, result RunResult, err error) (RunResult, error) {
	const component = "Orchestrator"
	result.Status = store.StatusFailed
	result.FinishedAt = time.Now()
	result.Err = err
	scoped.Error(component, "run failed: %v", err)

	runLog := buildRunLog(result, "")
	if logErr := o.storage.RunLogs.CreateOutOfBand(ctx, o.storage.DB, runLog); logErr != nil {
		scoped.Error(component, "failed to write out-of-band run log: %v", logErr)
	}
	return result, err
}

// canceled implements §4.11's cooperative-cancellation branch: the current
// file group or phase has already completed, so this rolls back (via Run's
// deferred cleanup) and logs failed rather than recording anything as
// ambiguous, per §4.11's explicit "never as an ambiguity" rule.
func (o *Orchestrator) canceled(ctx context.Context, scoped *logger.Scoped, result RunResult) (RunResult, error) {
	return o.failed(ctx, scoped, result, ctx.Err())
}

// buildRunLog assembles the append-only RunLog row (§3.1, §6.5) from a
// finished run's result.
func buildRunLog(result RunResult, trigger string) *store.RunLog {
	duration := result.FinishedAt.Sub(result.StartedAt).Seconds()
	skipped := len(result.SkippedGroups)
	var errMsg *string
	if result.Err != nil {
		msg := truncateError(result.Err.Error(), 1000)
		errMsg = &msg
	}
	finished := result.FinishedAt
	return &store.RunLog{
		RunID:           result.RunID,
		Status:          statusOrFailed(result.Status),
		TriggerType:     triggerOrManual(trigger),
		StartedAt:       result.StartedAt,
		FinishedAt:      &finished,
		DurationSeconds: &duration,
		TotalRecords:    result.Counts.Total(),
		RecordsInserted: sumInserted(result.Counts),
		RecordsUpdated:  sumUpdated(result.Counts),
		RecordsSkipped:  &skipped,
		ErrorMessage:    errMsg,
	}
}

func statusOrFailed(status string) string {
	if status == "" {
		return store.StatusFailed
	}
	return status
}

func triggerOrManual(trigger string) string {
	if trigger == "" {
		return store.TriggerTypeManual
	}
	return trigger
}

func sumInserted(c load.Counts) int {
	return c.Programs.Inserted + c.Proposals.Inserted + c.Supporters.Inserted +
		c.Amendments.Inserted + c.ProposalSupporters.Inserted + c.ProposalAmendments.Inserted +
		c.Proponents.Inserted
}

func sumUpdated(c load.Counts) int {
	return c.Programs.Updated + c.Proposals.Updated + c.Supporters.Updated +
		c.Amendments.Updated + c.ProposalSupporters.Updated + c.ProposalAmendments.Updated +
		c.Proponents.Updated
}

func truncateError(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
