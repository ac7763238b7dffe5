package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_model_invocations_total",
		Help: "Total number of model invocations by provider, task and status",
	}, []string{"provider", "task", "status"})

	invocationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "journal_model_invocation_duration_seconds",
		Help:    "Latency of model invocations",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
	}, []string{"provider", "task"})

	extractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_extraction_hypothesis_total",
		Help: "Response envelope shapes matched by the extractor",
	}, []string{"hypothesis"})

	outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_task_outcomes_total",
		Help: "Task dispatch outcomes",
	}, []string{"task", "status"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "journal_active_sessions",
		Help: "Current number of live editing sessions",
	})
)

func ObserveInvocation(provider, task string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	invocations.WithLabelValues(provider, task, status).Inc()
	invocationDuration.WithLabelValues(provider, task).Observe(elapsed.Seconds())
}

func ObserveExtraction(hypothesis string) {
	extractions.WithLabelValues(hypothesis).Inc()
}

func ObserveOutcome(task, status string) {
	outcomes.WithLabelValues(task, status).Inc()
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
