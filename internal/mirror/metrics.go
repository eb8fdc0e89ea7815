package mirror

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/martenlienen/gogs-github-mirror/internal/gogs"
)

const (
	metricsNamespaceConstant = "gogs_github_mirror"
	outcomeLabelNameConstant = "outcome"
)

// Metrics records run statistics in a dedicated registry so they can be
// written to a node-exporter textfile after the run.
type Metrics struct {
	registry             *prometheus.Registry
	pagesFetched         prometheus.Gauge
	repositoriesListed   prometheus.Gauge
	repositoriesSelected prometheus.Gauge
	outcomes             *prometheus.CounterVec
	lastRunTimestamp     prometheus.Gauge
	runDuration          prometheus.Gauge
}

// NewMetrics registers the run metrics on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	metrics := &Metrics{
		registry: registry,
		pagesFetched: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespaceConstant,
			Name:      "source_pages_fetched",
			Help:      "Number of source API pages requested during the last run",
		}),
		repositoriesListed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespaceConstant,
			Name:      "source_repositories_listed",
			Help:      "Number of repositories returned by the source API during the last run",
		}),
		repositoriesSelected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespaceConstant,
			Name:      "repositories_selected",
			Help:      "Number of repositories left after filtering during the last run",
		}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespaceConstant,
			Name:      "mirror_requests_total",
			Help:      "Migration requests by outcome",
		},
			[]string{
				// created, already_exists or unknown
				outcomeLabelNameConstant,
			},
		),
		lastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespaceConstant,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last run finished",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespaceConstant,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
	}

	for _, kind := range gogs.OutcomeKinds() {
		metrics.outcomes.WithLabelValues(string(kind))
	}

	return metrics
}

// ObserveListing records the size of the fetched and filtered repository sets.
func (metrics *Metrics) ObserveListing(pagesFetched int, listed int, selected int) {
	if metrics == nil {
		return
	}
	metrics.pagesFetched.Set(float64(pagesFetched))
	metrics.repositoriesListed.Set(float64(listed))
	metrics.repositoriesSelected.Set(float64(selected))
}

// ObserveOutcome counts one migration outcome.
func (metrics *Metrics) ObserveOutcome(kind gogs.OutcomeKind) {
	if metrics == nil {
		return
	}
	metrics.outcomes.WithLabelValues(string(kind)).Inc()
}

// ObserveRun records the completion time and duration of a run.
func (metrics *Metrics) ObserveRun(start time.Time, finish time.Time) {
	if metrics == nil {
		return
	}
	metrics.lastRunTimestamp.Set(float64(finish.Unix()))
	metrics.runDuration.Set(finish.Sub(start).Seconds())
}

// WriteTextfile writes the registry in the text exposition format, atomically replacing path.
func (metrics *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, metrics.registry)
}
