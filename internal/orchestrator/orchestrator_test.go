package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/farxc/projetus/internal/load"
	"github.com/farxc/projetus/internal/model"
	"github.com/farxc/projetus/internal/pipelineerr"
	"github.com/farxc/projetus/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestScanDirectoryFindsAllThreeGroups(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "propostas.csv")
	writeFile(t, dir, "programas.xlsx")
	writeFile(t, dir, "apoiadores_emendas.csv")

	paths, warnings, err := ScanDirectory(dir)
	require.NoError(t, err)
	assert.Len(t, paths, 3)
	assert.Empty(t, warnings)
}

func TestScanDirectoryTreatsMissingFileAsTolerated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "propostas.csv")

	paths, _, err := ScanDirectory(dir)
	require.NoError(t, err)
	assert.Contains(t, paths, model.FileGroupPropostas)
	assert.NotContains(t, paths, model.FileGroupProgramas)
}

func TestScanDirectoryWarnsOnUnrecognizedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "propostas.csv")
	writeFile(t, dir, "leia-me.txt")
	writeFile(t, dir, "mystery.csv")

	_, warnings, err := ScanDirectory(dir)
	require.NoError(t, err)
	assert.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "leia-me")
	assert.Contains(t, warnings[1], "mystery")
}

func TestScanDirectoryPrefersFirstRecognizedExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "propostas.xlsx")
	writeFile(t, dir, "propostas.csv")

	paths, _, err := ScanDirectory(dir)
	require.NoError(t, err)
	assert.Contains(t, paths[model.FileGroupPropostas], ".xlsx")
}

func TestWithRetryStopsOnFirstSuccess(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), func() error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryDoesNotRetryNonTransientErrors(t *testing.T) {
	attempts := 0
	sentinel := pipelineerr.New(pipelineerr.KindRowValidation, "test", "ctx", errors.New("boom"))
	err := withRetry(context.Background(), func() error {
		attempts++
		return sentinel
	})
	assert.Equal(t, sentinel, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts := 0
	transient := pipelineerr.New(pipelineerr.KindTransient, "test", "ctx", errors.New("timeout"))
	err := withRetry(ctx, func() error {
		attempts++
		return transient
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestJitterNeverGoesBelowBase(t *testing.T) {
	base := 2 * time.Second
	for i := 0; i < 20; i++ {
		d := jitter(base)
		assert.GreaterOrEqual(t, d, base)
		assert.Less(t, d, base+base/4+time.Millisecond)
	}
}

func TestAppendSampleCapsAtLimit(t *testing.T) {
	var samples []string
	for i := 0; i < sampleErrorLimit+5; i++ {
		samples = appendSample(samples, "x")
	}
	assert.Len(t, samples, sampleErrorLimit)
}

func TestStatusSuccessWhenNothingSkippedOrBreached(t *testing.T) {
	o := &Orchestrator{}
	result := RunResult{SkippedGroups: map[model.FileGroup]string{}}
	assert.Equal(t, store.StatusSuccess, o.status(result))
}

func TestStatusPartialWhenGroupSkipped(t *testing.T) {
	o := &Orchestrator{}
	result := RunResult{SkippedGroups: map[model.FileGroup]string{model.FileGroupProgramas: "missing"}}
	assert.Equal(t, store.StatusPartial, o.status(result))
}

func TestBuildRunLogDerivesCountsAndTruncatesError(t *testing.T) {
	started := time.Now().Add(-5 * time.Minute)
	result := RunResult{
		RunID:      "run-1",
		Status:     store.StatusFailed,
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Err:        errors.New("database exploded"),
		Counts: load.Counts{
			Programs: store.UpsertCounts{Inserted: 2, Updated: 1},
		},
	}
	log := buildRunLog(result, "")
	assert.Equal(t, "run-1", log.RunID)
	assert.Equal(t, store.TriggerTypeManual, log.TriggerType)
	assert.Equal(t, 2, log.RecordsInserted)
	assert.Equal(t, 1, log.RecordsUpdated)
	require.NotNil(t, log.ErrorMessage)
	assert.Contains(t, *log.ErrorMessage, "database exploded")
}

func TestBuildRunLogDefaultsStatusToFailedWhenUnset(t *testing.T) {
	log := buildRunLog(RunResult{}, "scheduled")
	assert.Equal(t, store.StatusFailed, log.Status)
	assert.Equal(t, store.TriggerTypeScheduled, log.TriggerType)
}

func TestTruncateErrorLeavesShortMessagesUntouched(t *testing.T) {
	assert.Equal(t, "short", truncateError("short", 100))
}

func TestTruncateErrorCutsLongMessages(t *testing.T) {
	long := make([]byte, 50)
	for i := range long {
		long[i] = 'a'
	}
	out := truncateError(string(long), 10)
	assert.Len(t, out, len("...(truncated)")+10)
}
