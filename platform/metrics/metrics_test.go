package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveVendorMatch(3)
	m.ObserveReconcile(OutcomeSuccess, time.Second)
	m.IncSideEffectFailure("broadcast")
	m.IncPropagation(OutcomeSkipped)
	m.IncStageTransition("BOOKED")
}

func TestCountersRecordByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncSideEffectFailure("Broadcast")
	m.IncSideEffectFailure("broadcast")
	m.IncSideEffectFailure("")
	m.ObserveReconcile(OutcomeFailure, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sideEffectFailures.WithLabelValues("broadcast")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sideEffectFailures.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconcileTotal.WithLabelValues(OutcomeFailure)))
}
