package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalysesTotal counts analyze requests by outcome: ok, rejected,
	// unparseable, inference_error, storage_error.
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petmood",
		Subsystem: "analyze",
		Name:      "requests_total",
		Help:      "Total number of photo analyses, labeled by outcome.",
	}, []string{"outcome"})

	InferenceDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "petmood",
		Subsystem: "inference",
		Name:      "duration_seconds",
		Help:      "Time spent waiting for the hosted model, labeled by engine and result.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60, 120},
	}, []string{"engine", "result"})

	BlobWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petmood",
		Subsystem: "blob",
		Name:      "writes_total",
		Help:      "Total number of blob writes, labeled by backend and result.",
	}, []string{"backend", "result"})

	// PartialWritesTotal counts uploads where exactly one of image/metadata landed.
	PartialWritesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "petmood",
		Subsystem: "upload",
		Name:      "partial_writes_total",
		Help:      "Total number of uploads that stored only one of image and metadata.",
	})

	EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petmood",
		Subsystem: "events",
		Name:      "recorded_total",
		Help:      "Total number of first-party events recorded, labeled by type.",
	}, []string{"type"})
)

// Register registers the collectors with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysesTotal,
			InferenceDurationSeconds,
			BlobWritesTotal,
			PartialWritesTotal,
			EventsTotal,
		)
	})
}
