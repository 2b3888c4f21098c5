package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for HandVault
var (
	EventsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "handvault_events_created_total",
			Help: "Total number of events created",
		},
	)

	UploadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "handvault_uploads_total",
			Help: "Total number of hand videos uploaded",
		},
	)

	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "handvault_upload_bytes_total",
			Help: "Total bytes of uploaded hand videos",
		},
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handvault_analyses_total",
			Help: "Analyzer runs by outcome",
		},
		[]string{"outcome"}, // success / failure
	)

	AnalysisDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "handvault_analysis_duration_seconds",
			Help:    "Wall-clock duration of analyzer runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)
