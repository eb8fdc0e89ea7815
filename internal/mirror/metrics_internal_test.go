package mirror

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/martenlienen/gogs-github-mirror/internal/gogs"
)

func TestMetricsRecordRun(testInstance *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveListing(3, 250, 41)
	metrics.ObserveOutcome(gogs.OutcomeCreated)
	metrics.ObserveOutcome(gogs.OutcomeCreated)
	metrics.ObserveOutcome(gogs.OutcomeUnknown)
	start := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	metrics.ObserveRun(start, start.Add(90*time.Second))

	expected := `
# HELP gogs_github_mirror_mirror_requests_total Migration requests by outcome
# TYPE gogs_github_mirror_mirror_requests_total counter
gogs_github_mirror_mirror_requests_total{outcome="already_exists"} 0
gogs_github_mirror_mirror_requests_total{outcome="created"} 2
gogs_github_mirror_mirror_requests_total{outcome="unknown"} 1
# HELP gogs_github_mirror_repositories_selected Number of repositories left after filtering during the last run
# TYPE gogs_github_mirror_repositories_selected gauge
gogs_github_mirror_repositories_selected 41
# HELP gogs_github_mirror_source_pages_fetched Number of source API pages requested during the last run
# TYPE gogs_github_mirror_source_pages_fetched gauge
gogs_github_mirror_source_pages_fetched 3
# HELP gogs_github_mirror_last_run_duration_seconds Wall time of the last run
# TYPE gogs_github_mirror_last_run_duration_seconds gauge
gogs_github_mirror_last_run_duration_seconds 90
`
	require.NoError(testInstance, testutil.GatherAndCompare(
		metrics.registry,
		strings.NewReader(expected),
		"gogs_github_mirror_mirror_requests_total",
		"gogs_github_mirror_repositories_selected",
		"gogs_github_mirror_source_pages_fetched",
		"gogs_github_mirror_last_run_duration_seconds",
	))
}

func TestMetricsWriteTextfile(testInstance *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveOutcome(gogs.OutcomeAlreadyExists)

	metricsPath := filepath.Join(testInstance.TempDir(), "gogs_github_mirror.prom")
	require.NoError(testInstance, metrics.WriteTextfile(metricsPath))

	contents, readError := os.ReadFile(metricsPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(contents), `gogs_github_mirror_mirror_requests_total{outcome="already_exists"} 1`)
}

func TestNilMetricsIgnoreObservations(testInstance *testing.T) {
	var metrics *Metrics
	require.NotPanics(testInstance, func() {
		metrics.ObserveListing(1, 1, 1)
		metrics.ObserveOutcome(gogs.OutcomeUnknown)
		metrics.ObserveRun(time.Now(), time.Now())
	})
}
