package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/orgs/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordAndServe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "orgs")

	m.GateDecision("role", "deny", "insufficient_permissions")
	m.GateDecision("role", "deny", "insufficient_permissions")
	m.Operation("invite", "ok")
	m.ObserveHTTP(http.MethodGet, "GET /v1/members", 200, 5*time.Millisecond)
	m.Conflict()

	require.Equal(t, 2.0, testutil.ToFloat64(m.GateDecisions.WithLabelValues("role", "deny", "insufficient_permissions")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("invite", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.TxConflicts))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "orgs_gate_decisions_total"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.GateDecision("identity", "deny", "x")
		m.Operation("invite", "ok")
		m.EventDelivery("invitation.created", "ok")
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
		m.Conflict()
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
