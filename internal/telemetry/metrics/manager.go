package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	JobRecurrenceExpansion = "recurrence_expansion"
	JobBadgeSweep          = "badge_sweep"

	ModeOnDemand = "on_demand"
	ModeSweep    = "sweep"
)

type Manager struct {
	// counters
	CounterRequests              *prometheus.CounterVec
	CounterHandleRequestPanic    prometheus.Counter
	CounterRateLimitedRequests   prometheus.Counter
	CounterRecurrenceClones      prometheus.Counter
	CounterRecurrenceDuplicates  prometheus.Counter
	CounterRecurrenceFailures    prometheus.Counter
	CounterBadgeUnlocks          *prometheus.CounterVec
	CounterBadgeEvaluationErrors *prometheus.CounterVec
	CounterSkippedTicks          *prometheus.CounterVec

	// gauges
	GaugeRequests   prometheus.Gauge
	GaugeLifeSignal prometheus.Gauge

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
	HistogramJobDuration     *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("gymprogress", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("gymprogress", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})
	counterRecurrenceClones := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recurrence_clones",
		Help:      "Number of recurring training sessions projected forward",
	})
	counterRecurrenceDuplicates := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recurrence_duplicates",
		Help:      "Number of expansions that found the clone already present",
	})
	counterRecurrenceFailures := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recurrence_failures",
		Help:      "Number of recurring sessions skipped because of an error",
	})
	counterBadgeUnlocks := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "badge_unlocks",
		Help:      "Number of badges unlocked, per badge category",
	}, []string{"category"})
	counterBadgeEvaluationErrors := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "badge_evaluation_errors",
		Help:      "Number of failed per user badge evaluations",
	}, []string{"mode"})
	counterSkippedTicks := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "skipped_ticks",
		Help:      "Number of scheduler ticks skipped because the previous run was still going",
	}, []string{"job"})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})
	histogramJobDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "job_duration_seconds",
		Help:      "Duration of a single scheduled job run in seconds",
		Buckets: []float64{
			0.001, 0.01, 0.1, 1, 10,
			60, 120, 240, 480, 1000, 2000,
		},
	}, []string{"job"})

	return &Manager{
		CounterRequests:              counterRequests,
		CounterHandleRequestPanic:    counterHandleRequestPanic,
		CounterRateLimitedRequests:   counterRateLimitedRequests,
		CounterRecurrenceClones:      counterRecurrenceClones,
		CounterRecurrenceDuplicates:  counterRecurrenceDuplicates,
		CounterRecurrenceFailures:    counterRecurrenceFailures,
		CounterBadgeUnlocks:          counterBadgeUnlocks,
		CounterBadgeEvaluationErrors: counterBadgeEvaluationErrors,
		CounterSkippedTicks:          counterSkippedTicks,
		GaugeRequests:                gaugeRequests,
		GaugeLifeSignal:              gaugeLifeSignal,
		HistogramRequestDuration:     histogramRequestDuration,
		HistogramJobDuration:         histogramJobDuration,
	}
}
