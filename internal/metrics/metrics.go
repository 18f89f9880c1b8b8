package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry regroupe les métriques de l'API
type Registry struct {
	reg *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CacheHits       *prometheus.CounterVec
	Insufficient    *prometheus.CounterVec
	ParseDegraded   *prometheus.CounterVec
	RecordsScanned  prometheus.Histogram
}

// NewRegistry crée un registre isolé avec les collecteurs Go et process
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "insights_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "insights_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "insights_cache_lookups_total",
		Help: "Response cache lookups by result.",
	}, []string{"result"})
	insufficient := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "insights_insufficient_data_total",
		Help: "Aggregations that failed for lack of usable rows.",
	}, []string{"aggregation"})
	degraded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "insights_parse_degraded_total",
		Help: "Fields normalized to null because they could not be parsed.",
	}, []string{"field"})
	scanned := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "insights_records_scanned",
		Help:    "Records fetched from storage per aggregation.",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	})

	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		requests, duration, cacheHits, insufficient, degraded, scanned,
	)
	return &Registry{
		reg:             r,
		Requests:        requests,
		RequestDuration: duration,
		CacheHits:       cacheHits,
		Insufficient:    insufficient,
		ParseDegraded:   degraded,
		RecordsScanned:  scanned,
	}
}

// Handler expose le registre au format Prometheus
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
