package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	viewsBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eidolon",
			Subsystem: "retina",
			Name:      "views_built_total",
			Help:      "Total views built by the observation scheduler.",
		},
		[]string{"kind", "capability"},
	)
	viewsTornDown = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eidolon",
			Subsystem: "retina",
			Name:      "views_torndown_total",
			Help:      "Total view subtrees torn down by the observation scheduler.",
		},
		[]string{"kind", "capability"},
	)
	tickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "eidolon",
			Subsystem: "retina",
			Name:      "tick_duration_seconds",
			Help:      "Observation tick duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	trackedModels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "eidolon",
			Subsystem: "retina",
			Name:      "tracked_models",
			Help:      "Model entities currently carrying at least one view.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(viewsBuilt, viewsTornDown, tickDuration, trackedModels)
	})
}

func RecordBuild(kind, capability string) {
	RegisterMetrics()
	viewsBuilt.WithLabelValues(kind, capability).Inc()
}

func RecordTeardown(kind, capability string) {
	RegisterMetrics()
	viewsTornDown.WithLabelValues(kind, capability).Inc()
}

func RecordTick(duration time.Duration) {
	RegisterMetrics()
	tickDuration.Observe(duration.Seconds())
}

func SetTrackedModels(count int) {
	RegisterMetrics()
	trackedModels.Set(float64(count))
}
