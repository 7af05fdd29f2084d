// Package metrics exposes Prometheus metrics for the orchestrator.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	recordingsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airwave_recordings_started_total",
			Help: "Total number of recorder executions launched",
		},
	)

	recordingsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airwave_recordings_settled_total",
			Help: "Total number of recorder executions settled, by outcome",
		},
		[]string{"outcome"},
	)

	recordingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "airwave_recording_duration_seconds",
			Help:    "Recorder execution duration in seconds",
			Buckets: []float64{60, 300, 900, 1800, 3600, 5400, 7200},
		},
	)

	catalogUpserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airwave_catalog_upserts_total",
			Help: "Total number of catalog registrations",
		},
	)

	triggersArmed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "airwave_triggers_armed",
			Help: "Number of currently armed triggers",
		},
	)
)

// RecordingStarted increments the launch counter.
func RecordingStarted() {
	recordingsStarted.Inc()
}

// RecordingSettled records one settled execution and its duration.
func RecordingSettled(outcome string, seconds float64) {
	recordingsSettled.WithLabelValues(outcome).Inc()
	recordingDuration.Observe(seconds)
}

// CatalogUpserted increments the catalog registration counter.
func CatalogUpserted() {
	catalogUpserts.Inc()
}

// SetTriggersArmed sets the armed trigger gauge.
func SetTriggersArmed(n int) {
	triggersArmed.Set(float64(n))
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
