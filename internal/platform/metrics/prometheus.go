package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds custom Prometheus metrics.
type MetricsManager struct {
	Registry *prometheus.Registry

	SearchRequestsTotal *prometheus.CounterVec // by operation
	SearchResults       prometheus.Histogram
	SearchErrorsTotal   *prometheus.CounterVec // by operation
	CacheLookupsTotal   *prometheus.CounterVec // by cache and result (hit|miss|error)
	CacheInvalidations  *prometheus.CounterVec // by subject
	HTTPRequestLatency  *prometheus.HistogramVec
	HTTPResponsesTotal  *prometheus.CounterVec
}

// NewMetricsManager initializes and registers the service metrics on a
// private registry.
func NewMetricsManager(serviceName string) *MetricsManager {
	namespace := strings.ReplaceAll(serviceName, "-", "_")
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		SearchRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of listing queries by operation.",
		}, []string{"operation"}),
		SearchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of listings returned by a search.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),
		SearchErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_errors_total",
			Help:      "Total number of failed listing queries by operation.",
		}, []string{"operation"}),
		CacheLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache level and result.",
		}, []string{"cache", "result"}),
		CacheInvalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Cache evictions triggered by change events, by subject.",
		}, []string{"subject"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_latency_seconds",
			Help:      "Latency of HTTP requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPResponsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_responses_total",
			Help:      "HTTP responses by route and status code.",
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		m.SearchRequestsTotal,
		m.SearchResults,
		m.SearchErrorsTotal,
		m.CacheLookupsTotal,
		m.CacheInvalidations,
		m.HTTPRequestLatency,
		m.HTTPResponsesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// CacheHit, CacheMiss and CacheError are nil-safe so adapters can run without metrics.
func (m *MetricsManager) CacheHit(cache string) {
	if m != nil {
		m.CacheLookupsTotal.WithLabelValues(cache, "hit").Inc()
	}
}

func (m *MetricsManager) CacheMiss(cache string) {
	if m != nil {
		m.CacheLookupsTotal.WithLabelValues(cache, "miss").Inc()
	}
}

func (m *MetricsManager) CacheError(cache string) {
	if m != nil {
		m.CacheLookupsTotal.WithLabelValues(cache, "error").Inc()
	}
}

func (m *MetricsManager) Invalidated(subject string) {
	if m != nil {
		m.CacheInvalidations.WithLabelValues(subject).Inc()
	}
}

// ObserveSearch records one finished query. results is ignored when err != nil.
func (m *MetricsManager) ObserveSearch(operation string, results int, err error) {
	if m == nil {
		return
	}
	m.SearchRequestsTotal.WithLabelValues(operation).Inc()
	if err != nil {
		m.SearchErrorsTotal.WithLabelValues(operation).Inc()
		return
	}
	if operation == "search" {
		m.SearchResults.Observe(float64(results))
	}
}

func (m *MetricsManager) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
	m.HTTPResponsesTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// NewMetricsServer builds the /metrics server. It returns nil when port is empty.
func NewMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) *http.Server {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server configured", zap.String("port", port), zap.String("path", "/metrics"))
	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
