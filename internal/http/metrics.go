package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "findash"

// appMetrics owns a per-server registry so several servers can coexist in one
// process. Middleware counters are read at scrape time.
type appMetrics struct {
	started             time.Time
	registry            *prometheus.Registry
	transactionsCreated prometheus.Counter
	transactionsUpdated prometheus.Counter
}

func newAppMetrics(s *Server) *appMetrics {
	m := &appMetrics{
		started:  time.Now(),
		registry: prometheus.NewRegistry(),
		transactionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "transactions_created_total",
			Help:      "Transactions created through the API.",
		}),
		transactionsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "transactions_updated_total",
			Help:      "Transactions updated through the API.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.transactionsCreated,
		m.transactionsUpdated,
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, func() float64 {
			total, _ := s.tracer.Stats()
			return float64(total)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}, func() float64 {
			_, inFlight := s.tracer.Stats()
			return float64(inFlight)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter.",
		}, func() float64 { return float64(s.limiter.Hits()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "rate_limit_active_clients",
			Help:      "Clients currently tracked by the rate limiter.",
		}, func() float64 { return float64(s.limiter.ActiveClients()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "suspicious_requests_total",
			Help:      "Requests flagged as suspicious.",
		}, func() float64 { return float64(s.detector.Suspicious()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds.",
		}, func() float64 { return time.Since(m.started).Seconds() }),
	)
	return m
}

func (m *appMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
