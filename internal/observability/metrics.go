package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	jobmetrics "github.com/customtruckbeds/site/internal/jobs"
)

// Metrics collects Prometheus metrics for the site.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	quotesTotal      *prometheus.CounterVec
	webhookResponses *prometheus.CounterVec
	webhookDuration  prometheus.Histogram
	jobs             *jobmetrics.Metrics
}

// NewMetrics initialises the registry with HTTP, quote and job collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "truckbeds_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "truckbeds_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "truckbeds_quote_submissions_total",
		Help: "Quote form submissions by outcome.",
	}, []string{"status"})
	responses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "truckbeds_webhook_responses_total",
		Help: "Completed webhook round trips by response status class.",
	}, []string{"class"})
	webhookDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "truckbeds_webhook_duration_seconds",
		Help:    "Time spent waiting on the automation webhook.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
	registry.MustRegister(requests, duration, quotes, responses, webhookDuration)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		quotesTotal:      quotes,
		webhookResponses: responses,
		webhookDuration:  webhookDuration,
		jobs:             jobmetrics.NewMetrics(registry),
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// QuoteSubmitted counts one submit attempt by its status.
func (m *Metrics) QuoteSubmitted(status string) {
	if m == nil {
		return
	}
	m.quotesTotal.WithLabelValues(status).Inc()
}

// WebhookDispatched records a completed webhook round trip.
func (m *Metrics) WebhookDispatched(statusCode int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.webhookResponses.WithLabelValues(statusClass(statusCode)).Inc()
	m.webhookDuration.Observe(elapsed.Seconds())
}

// Jobs exposes the background job collectors registered on this registry.
func (m *Metrics) Jobs() *jobmetrics.Metrics {
	if m == nil {
		return nil
	}
	return m.jobs
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
