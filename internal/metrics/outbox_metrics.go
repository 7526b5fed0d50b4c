package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты публикации для метки result.
const (
	OutboxResultSent      = "sent"
	OutboxResultRetry     = "retry_error"
	OutboxResultFailed    = "failed"
	OutboxResultDLQFailed = "dlq_failed"
)

// OutboxMetrics описывает публикацию outbox и размер backlog.
type OutboxMetrics struct {
	attempts     *prometheus.CounterVec
	pending      prometheus.Gauge
	oldestAge    prometheus.Gauge
	batchLatency prometheus.Histogram
}

// NewOutboxMetrics регистрирует метрики outbox в DefaultRegisterer.
func NewOutboxMetrics() *OutboxMetrics {
	return NewOutboxMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOutboxMetricsWithRegisterer регистрирует метрики в указанном реестре.
func NewOutboxMetricsWithRegisterer(registerer prometheus.Registerer) *OutboxMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &OutboxMetrics{
		attempts: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "delivery_outbox_publish_attempts_total",
			Help: "Outbox publish attempts grouped by result",
		}, []string{"result"}),
		pending: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "delivery_outbox_pending_records",
			Help: "Pending records in the transactional outbox",
		}),
		oldestAge: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "delivery_outbox_oldest_pending_age_seconds",
			Help: "Age of the oldest pending outbox record",
		}),
		batchLatency: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "delivery_outbox_batch_duration_seconds",
			Help:    "Time spent relaying one outbox batch",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
}

// RecordAttempt учитывает попытку публикации с результатом result.
func (m *OutboxMetrics) RecordAttempt(result string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(result).Inc()
}

// SetBacklog выставляет размер backlog и возраст самого старого сообщения.
func (m *OutboxMetrics) SetBacklog(pending int, oldest time.Time, now time.Time) {
	if m == nil {
		return
	}
	m.pending.Set(float64(pending))
	if pending == 0 || oldest.IsZero() {
		m.oldestAge.Set(0)
		return
	}
	m.oldestAge.Set(max(now.Sub(oldest).Seconds(), 0))
}

// ObserveBatch учитывает длительность обработки батча.
func (m *OutboxMetrics) ObserveBatch(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.batchLatency.Observe(elapsed.Seconds())
}
