// Package metrics exports coordinator counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the coordinator's collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted  prometheus.Counter
	ActionsRejected  *prometheus.CounterVec
	RequestsSent     *prometheus.CounterVec
	VerdictsApplied  prometheus.Counter
	SessionsFinished *prometheus.CounterVec
	StaleReplies     prometheus.Counter
	DispatchErrors   prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wordle", Subsystem: "session", Name: "started_total",
			Help: "Sessions started (including overwritten restarts).",
		}),
		ActionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordle", Subsystem: "session", Name: "actions_rejected_total",
			Help: "Actions refused by the coordinator, by error kind.",
		}, []string{"kind"}),
		RequestsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordle", Subsystem: "oracle", Name: "requests_total",
			Help: "Requests dispatched to the oracle, by request kind.",
		}, []string{"kind"}),
		VerdictsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wordle", Subsystem: "session", Name: "verdicts_applied_total",
			Help: "Oracle verdicts applied to sessions.",
		}),
		SessionsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordle", Subsystem: "session", Name: "finished_total",
			Help: "Sessions reaching a terminal result, by result and reason.",
		}, []string{"result", "reason"}),
		StaleReplies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wordle", Subsystem: "oracle", Name: "stale_replies_total",
			Help: "Oracle replies dropped because no matching request was outstanding.",
		}),
		DispatchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wordle", Subsystem: "oracle", Name: "dispatch_errors_total",
			Help: "Requests the evaluator refused to send.",
		}),
	}
	m.registry.MustRegister(
		m.SessionsStarted, m.ActionsRejected, m.RequestsSent, m.VerdictsApplied,
		m.SessionsFinished, m.StaleReplies, m.DispatchErrors,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Started records a new session.
func (m *Metrics) Started() {
	if m != nil {
		m.SessionsStarted.Inc()
	}
}

// Rejected records an action refused with the given error kind.
func (m *Metrics) Rejected(kind string) {
	if m != nil {
		m.ActionsRejected.WithLabelValues(kind).Inc()
	}
}

// Sent records a dispatched oracle request.
func (m *Metrics) Sent(kind string) {
	if m != nil {
		m.RequestsSent.WithLabelValues(kind).Inc()
	}
}

// Applied records an applied verdict.
func (m *Metrics) Applied() {
	if m != nil {
		m.VerdictsApplied.Inc()
	}
}

// Finished records a terminal session.
func (m *Metrics) Finished(result, reason string) {
	if m != nil {
		m.SessionsFinished.WithLabelValues(result, reason).Inc()
	}
}

// Stale records a dropped reply.
func (m *Metrics) Stale() {
	if m != nil {
		m.StaleReplies.Inc()
	}
}

// DispatchFailed records a request the evaluator refused.
func (m *Metrics) DispatchFailed() {
	if m != nil {
		m.DispatchErrors.Inc()
	}
}
