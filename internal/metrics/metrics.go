package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Metrics — набор Prometheus метрик приложения с собственным реестром.
type Metrics struct {
	// HTTP API
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec
	APIErrorsTotal            *prometheus.CounterVec

	// Доменные счётчики
	TemplatesCreatedTotal  prometheus.Counter
	TemplateUsesTotal      prometheus.Counter
	EnrollmentsTotal       prometheus.Counter
	RateLimitExceededTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New создаёт реестр и регистрирует все метрики.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reachbase_api_requests_total",
				Help: "Total number of HTTP API requests",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reachbase_api_request_duration_seconds",
				Help:    "HTTP API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		APIErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reachbase_api_errors_total",
				Help: "Total number of HTTP API error responses",
			},
			[]string{"error_type"},
		),
		TemplatesCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reachbase_templates_created_total",
				Help: "Total number of templates created",
			},
		),
		TemplateUsesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reachbase_template_uses_total",
				Help: "Total number of recorded template uses",
			},
		),
		EnrollmentsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reachbase_sequence_enrollments_total",
				Help: "Total number of sequence enrollments",
			},
		),
		RateLimitExceededTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reachbase_ratelimit_exceeded_total",
				Help: "Total number of rate limited requests",
			},
			[]string{"path"},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.APIErrorsTotal,
		m.TemplatesCreatedTotal,
		m.TemplateUsesTotal,
		m.EnrollmentsTotal,
		m.RateLimitExceededTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry возвращает реестр для экспорта через promhttp.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetGlobal устанавливает глобальный экземпляр метрик.
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Global возвращает глобальный экземпляр метрик или nil, если он не инициализирован.
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}
