// Package metrics holds the Prometheus collectors for the pipeline engine.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Metrics groups the pipeline collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	vendorMatchRequests   prometheus.Counter
	vendorMatchCandidates prometheus.Histogram
	reconcileTotal        *prometheus.CounterVec
	reconcileDuration     prometheus.Histogram
	sideEffectFailures    *prometheus.CounterVec
	propagations          *prometheus.CounterVec
	stageTransitions      *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		vendorMatchRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vendor_match_requests_total",
			Help: "Vendor matcher invocations.",
		}),
		vendorMatchCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vendor_match_candidates",
			Help:    "Candidate vendors returned by the budget overlap prefilter.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 200, 500},
		}),
		reconcileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "card_reconcile_total",
			Help: "Card reconciliations by outcome.",
		}, []string{"outcome"}),
		reconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "card_reconcile_duration_seconds",
			Help:    "Duration of card reconciliation for one lead.",
			Buckets: prometheus.DefBuckets,
		}),
		sideEffectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "side_effect_failures_total",
			Help: "Best-effort side effects that failed and were swallowed.",
		}, []string{"effect"}),
		propagations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "service_status_propagations_total",
			Help: "Wedding plan service status propagations to proposals by outcome.",
		}, []string{"outcome"}),
		stageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lead_stage_transitions_total",
			Help: "Lead pipeline transitions by target status.",
		}, []string{"status"}),
	}
	reg.MustRegister(
		m.vendorMatchRequests,
		m.vendorMatchCandidates,
		m.reconcileTotal,
		m.reconcileDuration,
		m.sideEffectFailures,
		m.propagations,
		m.stageTransitions,
	)
	return m
}

func (m *Metrics) ObserveVendorMatch(candidates int) {
	if m == nil {
		return
	}
	m.vendorMatchRequests.Inc()
	m.vendorMatchCandidates.Observe(float64(candidates))
}

func (m *Metrics) ObserveReconcile(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.reconcileTotal.WithLabelValues(outcome).Inc()
	m.reconcileDuration.Observe(took.Seconds())
}

func (m *Metrics) IncSideEffectFailure(effect string) {
	if m == nil {
		return
	}
	m.sideEffectFailures.WithLabelValues(normalizeLabel(effect)).Inc()
}

func (m *Metrics) IncPropagation(outcome string) {
	if m == nil {
		return
	}
	m.propagations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncStageTransition(status string) {
	if m == nil {
		return
	}
	m.stageTransitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
