package health

import (
	"testing"
	"time"

	"github.com/farxc/projetus/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestDeriveReportHealthyWithin25Hours(t *testing.T) {
	now := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	log := &store.RunLog{StartedAt: now.Add(-1 * time.Hour), Status: store.StatusSuccess, TotalRecords: 10}
	report := deriveReport("projetus", log, now)
	assert.Equal(t, StatusHealthy, report.Status)
	require := *report.RecordsProcessed
	assert.Equal(t, 10, require)
}

func TestDeriveReportDegradedBetween25And48Hours(t *testing.T) {
	now := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	log := &store.RunLog{StartedAt: now.Add(-30 * time.Hour), Status: store.StatusSuccess}
	report := deriveReport("projetus", log, now)
	assert.Equal(t, StatusDegraded, report.Status)
}

func TestDeriveReportUnhealthyPastWindowOrOnFailedStatus(t *testing.T) {
	now := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)

	stale := deriveReport("projetus", &store.RunLog{StartedAt: now.Add(-72 * time.Hour), Status: store.StatusSuccess}, now)
	assert.Equal(t, StatusUnhealthy, stale.Status)

	failed := deriveReport("projetus", &store.RunLog{StartedAt: now.Add(-1 * time.Hour), Status: store.StatusFailed}, now)
	assert.Equal(t, StatusUnhealthy, failed.Status)
}

func TestDeriveReportCarriesErrorMessageFromFailedRun(t *testing.T) {
	now := time.Now()
	msg := "boom"
	log := &store.RunLog{StartedAt: now.Add(-1 * time.Hour), Status: store.StatusFailed, ErrorMessage: &msg}
	report := deriveReport("projetus", log, now)
	require := report.Error
	assert.NotNil(t, require)
	assert.Equal(t, "boom", *require)
}
