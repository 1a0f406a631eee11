package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gcsearch"

type Metrics struct {
	InvocationsTotal    *prometheus.CounterVec
	InvocationDuration  *prometheus.HistogramVec
	InvocationsInFlight prometheus.Gauge

	ValidationsTotal *prometheus.CounterVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	RateLimitHitsTotal *prometheus.CounterVec

	StoredCredentialsTotal *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New регистрирует метрики в reg. В тестах передаем prometheus.NewRegistry(),
// иначе повторная регистрация в глобальном реестре паникует.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)

	m := &Metrics{
		InvocationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_invocations_total",
				Help:      "Total number of tool invocations",
			},
			[]string{"source", "status"},
		),
		InvocationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_invocation_duration_seconds",
				Help:      "Tool invocation duration in seconds, remote call included",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source"},
		),
		InvocationsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tool_invocations_in_flight",
				Help:      "Number of tool invocations currently running",
			},
		),

		ValidationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "credential_validations_total",
				Help:      "Total number of credential validations",
			},
			[]string{"status"},
		),

		CacheHitsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of response cache hits",
			},
		),
		CacheMissesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of response cache misses",
			},
		),

		RateLimitHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Total number of rejected invocations due to rate limit",
			},
			[]string{"source"},
		),

		StoredCredentialsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "credential_changes_total",
				Help:      "Total number of stored or removed user credentials",
			},
			[]string{"op"},
		),

		gatherer: reg,
	}

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordInvocation(source, status string, duration time.Duration) {
	m.InvocationsTotal.WithLabelValues(source, status).Inc()
	m.InvocationDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func (m *Metrics) RecordValidation(status string) {
	m.ValidationsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

// source, а не user_id: id пользователей в лейблах раздувают кардинальность
func (m *Metrics) RecordRateLimitHit(source string) {
	m.RateLimitHitsTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordCredentialChange(op string) {
	m.StoredCredentialsTotal.WithLabelValues(op).Inc()
}

func (m *Metrics) IncInFlight() {
	m.InvocationsInFlight.Inc()
}

func (m *Metrics) DecInFlight() {
	m.InvocationsInFlight.Dec()
}
