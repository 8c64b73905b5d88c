// Package measure collects per-stage timing metrics while a pipeline formats
// data units.
package measure

import "time"

// Measure aggregates the metrics of every stage of one pipeline.
type Measure interface {
	// AddMetric registers a metric for the stage identified by key.
	AddMetric(key string) Metric
	// GetMetric returns the metric registered for key, or nil.
	GetMetric(key string) Metric
	// AllMetrics returns every registered metric, keyed by stage.
	AllMetrics() map[string]Metric
}

// Metric records the invocation durations of one stage.
type Metric interface {
	// AddDuration records one invocation taking elapsed.
	AddDuration(elapsed time.Duration)
	// Count returns the number of recorded invocations.
	Count() int64
	// AVGDuration returns the rounded average invocation duration.
	AVGDuration() time.Duration
	// TotalDuration returns the sum of all recorded durations.
	TotalDuration() time.Duration
}
