// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DocumentsProcessed counts finished processing calls by file type and
	// terminal status.
	DocumentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aireadydata",
		Name:      "documents_processed_total",
		Help:      "Number of processed documents by file type and status.",
	}, []string{"file_type", "status"})

	// StageDuration tracks how long each pipeline stage takes.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "aireadydata",
		Name:      "pipeline_stage_duration_seconds",
		Help:      "Duration of pipeline stages.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"stage"})

	// QuotaRejections counts requests rejected before processing.
	QuotaRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aireadydata",
		Name:      "quota_rejections_total",
		Help:      "Requests rejected by metering, by reason.",
	}, []string{"reason"})
)

// ObserveStage records one stage execution.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
