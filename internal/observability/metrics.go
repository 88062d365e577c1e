package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsPublishedBySweep counts posts promoted scheduled -> published by
	// the background sweep.
	PostsPublishedBySweep = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_posts_published_by_sweep_total",
		Help: "Total number of scheduled posts auto-published by the sweep",
	})

	// SchedulerTickDuration records the duration of each publish sweep tick.
	SchedulerTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inkwell_scheduler_tick_duration_seconds",
		Help:    "Duration of publish scheduler ticks in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// SchedulerTickErrors counts abandoned ticks.
	SchedulerTickErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_scheduler_tick_errors_total",
		Help: "Total number of publish sweep ticks abandoned due to store errors",
	})

	// ArchiveTransitions counts archive/restore operations by direction and outcome.
	ArchiveTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_archive_transitions_total",
		Help: "Total archive/restore transitions by direction and outcome",
	}, []string{"direction", "outcome"})

	// ImageProcessingDuration records synchronous upload+resize latency.
	ImageProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inkwell_image_processing_duration_seconds",
		Help:    "Duration of synchronous image decode/resize/encode in seconds",
		Buckets: prometheus.DefBuckets,
	})
)
