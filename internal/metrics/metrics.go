package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReconcileDuration tracks the latency of render plan computation
	ReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "atlas_reconcile_duration_seconds",
			Help: "Duration of marker reconciliation passes in seconds",
			Buckets: []float64{
				0.0001, // 0.1ms
				0.0005, // 0.5ms
				0.001,  // 1ms
				0.005,  // 5ms
				0.01,   // 10ms
				0.05,   // 50ms
				0.1,    // 100ms
				0.5,    // 500ms
			},
		},
	)

	// FetchPages counts pages fetched from the marker API
	FetchPages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "atlas_fetch_pages_total",
			Help: "Number of marker API pages fetched",
		},
	)

	// FetchFailures counts failed marker API requests by endpoint
	FetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_fetch_failures_total",
			Help: "Number of failed marker API requests",
		},
		[]string{"endpoint"}, // locations or campaign
	)

	// RenderedMarkers reports the size of the last render plan
	RenderedMarkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "atlas_rendered_markers",
			Help: "Markers in the most recent render plan",
		},
	)
)

// ObserveReconcile records the duration of one reconciliation pass and the
// resulting plan size.
func ObserveReconcile(seconds float64, markers int) {
	ReconcileDuration.Observe(seconds)
	RenderedMarkers.Set(float64(markers))
}
