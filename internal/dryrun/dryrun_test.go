package dryrun

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLatestDataDirectoryPicksMostRecentDatedSubdir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "2026-01-01"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "2026-06-15"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "not-a-date"), 0o755))

	got := FindLatestDataDirectory(root)
	assert.Equal(t, filepath.Join(root, "2026-06-15"), got)
}

func TestFindLatestDataDirectoryFallsBackToRootWithoutDatedSubdirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "misc"), 0o755))

	got := FindLatestDataDirectory(root)
	assert.Equal(t, root, got)
}

func TestRunWarnsWhenDataDirectoryMissing(t *testing.T) {
	report := Run(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.NotEmpty(t, report.Warnings)
	assert.Empty(t, report.EntitiesFound)
}

func TestDetectRelationshipsOnlyWhenBothSidesPresent(t *testing.T) {
	rels := detectRelationships(map[string]int{"propostas": 5, "programas": 2})
	assert.Equal(t, []string{"propostas <-> programas (programa_id)"}, rels)
}

func TestDetectRelationshipsEmptyWhenNothingPairs(t *testing.T) {
	rels := detectRelationships(map[string]int{"apoiadores": 3})
	assert.Empty(t, rels)
}

func TestExitCodeIsTwoOnlyWhenNothingParsedAtAll(t *testing.T) {
	r := Report{ValidationErrors: []string{"bad file"}}
	assert.Equal(t, 2, r.ExitCode())

	r2 := Report{ValidationErrors: []string{"some row error"}, EntitiesFound: map[string]int{"propostas": 3}}
	assert.Equal(t, 0, r2.ExitCode())
}
