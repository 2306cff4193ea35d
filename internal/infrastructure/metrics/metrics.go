// Package metrics colectores Prometheus de la API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/restaurante-api/internal/application/ports"
)

var _ ports.Metrics = (*Metrics)(nil)

// Metrics agrupa los colectores sobre un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	authEvents   *prometheus.CounterVec
	checkouts    *prometheus.CounterVec
	transitions  *prometheus.CounterVec
}

// New registra los colectores de la app más los de Go y proceso.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Eventos de autenticación por tipo y resultado",
		}, []string{"event", "result"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_sessions_total",
			Help: "Intentos de checkout por resultado",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_transitions_total",
			Help: "Transiciones de estado aplicadas a pedidos",
		}, []string{"source", "status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.authEvents, m.checkouts, m.transitions,
	)
	return m
}

// Handler expone /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry para tests y colectores adicionales.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveHTTP registra un request terminado. route es la plantilla (/api/orders/:id), no la URL.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) AuthEvent(event, result string) {
	m.authEvents.WithLabelValues(event, result).Inc()
}

func (m *Metrics) CheckoutResult(result string) {
	m.checkouts.WithLabelValues(result).Inc()
}

func (m *Metrics) OrderTransition(source, status string) {
	m.transitions.WithLabelValues(source, status).Inc()
}
