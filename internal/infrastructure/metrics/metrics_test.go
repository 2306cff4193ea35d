package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/restaurante-api/internal/infrastructure/metrics"
)

func TestMetrics_Contadores(t *testing.T) {
	m := metrics.New()
	m.AuthEvent("login", "ok")
	m.AuthEvent("login", "ok")
	m.CheckoutResult("created")
	m.OrderTransition("webhook", "completed")
	m.ObserveHTTP("GET", "/api/menu", 200, 15*time.Millisecond)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, n := range []string{
		"auth_events_total", "checkout_sessions_total", "order_transitions_total",
		"http_requests_total", "http_request_duration_seconds",
	} {
		assert.True(t, names[n], n)
	}

	count, err := testutil.GatherAndCount(m.Registry(), "auth_events_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "una sola serie event=login,result=ok")
}
