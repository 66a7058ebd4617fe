// Package monitoring exposes Prometheus metrics for the extraction
// pipeline.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_pipeline_stage_total",
		Help: "Pipeline stage executions by outcome.",
	}, []string{"stage", "outcome"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipe_pipeline_stage_duration_seconds",
		Help:    "Pipeline stage wall-clock durations.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"stage"})
)

// ObserveStage records one stage execution. Call with the stage start
// time and its terminal error (nil for success).
func ObserveStage(stage string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	stageTotal.WithLabelValues(stage, outcome).Inc()
	stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
