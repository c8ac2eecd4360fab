// Package metrics exposes the ambient Prometheus instrumentation (§4.0
// ambient stack): counters and gauges for reviews performed, escalations,
// tokens saved by summarisation, issue lifecycle events, and LLM queue
// depth. Grounded on r3e-network-service_layer's pkg/metrics (Registry +
// package-level collectors + Record* helpers + promhttp Handler), with
// the collector set narrowed to what this spec's components emit.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds every collector this package registers. A dedicated
	// registry (rather than prometheus.DefaultRegisterer) keeps the
	// exposed surface limited to what this module actually emits.
	Registry = prometheus.NewRegistry()

	reviewsPerformed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ai_sysadmin",
		Subsystem: "review",
		Name:      "performed_total",
		Help:      "Total number of review-layer passes run.",
	})

	escalations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ai_sysadmin",
		Subsystem: "meta",
		Name:      "escalations_total",
		Help:      "Total number of escalations into the meta layer, by reason.",
	}, []string{"reason"})

	tokensSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ai_sysadmin",
		Subsystem: "meta",
		Name:      "tokens_saved_total",
		Help:      "Estimated tokens saved by summarising large tool output instead of passing it through raw.",
	})

	issuesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ai_sysadmin",
		Subsystem: "tracker",
		Name:      "issues_created_total",
		Help:      "Total number of issues created.",
	})

	issuesClosed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ai_sysadmin",
		Subsystem: "tracker",
		Name:      "issues_closed_total",
		Help:      "Total number of issues archived and evicted.",
	})

	queueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ai_sysadmin",
		Subsystem: "llmqueue",
		Name:      "depth",
		Help:      "Current number of requests in each llmqueue directory.",
	}, []string{"status"})

	queueOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ai_sysadmin",
		Subsystem: "llmqueue",
		Name:      "processed_total",
		Help:      "Total number of llmqueue requests the worker has finished processing, by outcome.",
	}, []string{"outcome"})

	actionsExecuted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ai_sysadmin",
		Subsystem: "executor",
		Name:      "actions_executed_total",
		Help:      "Total number of executor actions, by action type and result.",
	}, []string{"action_type", "result"})

	triggerChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ai_sysadmin",
		Subsystem: "trigger",
		Name:      "checks_total",
		Help:      "Total number of trigger-layer probe checks run, by outcome.",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(
		reviewsPerformed,
		escalations,
		tokensSaved,
		issuesCreated,
		issuesClosed,
		queueDepth,
		queueOutcomes,
		actionsExecuted,
		triggerChecks,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered metrics for
// scraping, mounted by cmd/ai-sysadmin at MetricsConfig.Addr when enabled.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordReviewPerformed increments the review-pass counter.
func RecordReviewPerformed() {
	reviewsPerformed.Inc()
}

// RecordEscalation increments the escalation counter for reason. An empty
// reason is recorded as "unspecified" rather than dropped.
func RecordEscalation(reason string) {
	if reason == "" {
		reason = "unspecified"
	}
	escalations.WithLabelValues(reason).Inc()
}

// AddTokensSaved adds n (clamped to zero) to the running tokens-saved
// total. Callers pass the estimated-token difference between raw tool
// output and its summary.
func AddTokensSaved(n int) {
	if n <= 0 {
		return
	}
	tokensSaved.Add(float64(n))
}

// RecordIssueCreated increments the issues-created counter.
func RecordIssueCreated() {
	issuesCreated.Inc()
}

// RecordIssueClosed increments the issues-closed counter.
func RecordIssueClosed() {
	issuesClosed.Inc()
}

// QueueDepths mirrors pkg/llmqueue.Stats without importing it, avoiding a
// dependency cycle risk between the two leaf packages.
type QueueDepths struct {
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// SetQueueDepth publishes the current per-directory llmqueue depth.
func SetQueueDepth(d QueueDepths) {
	queueDepth.WithLabelValues("pending").Set(float64(d.Pending))
	queueDepth.WithLabelValues("processing").Set(float64(d.Processing))
	queueDepth.WithLabelValues("completed").Set(float64(d.Completed))
	queueDepth.WithLabelValues("failed").Set(float64(d.Failed))
}

// RecordQueueOutcome increments the processed-requests counter for a
// worker-observed outcome ("completed" or "failed").
func RecordQueueOutcome(outcome string) {
	queueOutcomes.WithLabelValues(outcome).Inc()
}

// RecordActionExecuted increments the executor's action counter.
func RecordActionExecuted(actionType, result string) {
	actionsExecuted.WithLabelValues(actionType, result).Inc()
}

// RecordTriggerCheck increments the trigger-layer check counter.
func RecordTriggerCheck(outcome string) {
	triggerChecks.WithLabelValues(outcome).Inc()
}
