package metrics

import "github.com/prometheus/client_golang/prometheus"

// Исходы запроса с Idempotency-Key для метки outcome.
const (
	IdempotencyOutcomeExecuted   = "executed"
	IdempotencyOutcomeReplayed   = "replayed"
	IdempotencyOutcomeReused     = "key_reused"
	IdempotencyOutcomeInProgress = "in_progress"
	IdempotencyOutcomeReleased   = "released"
)

// IdempotencyMetrics описывает обработку ключей идемпотентности и их очистку.
type IdempotencyMetrics struct {
	requests     *prometheus.CounterVec
	cleanupRuns  *prometheus.CounterVec
	cleanupTotal prometheus.Counter
	cleanupLast  prometheus.Gauge
}

// NewIdempotencyMetrics регистрирует метрики в DefaultRegisterer.
func NewIdempotencyMetrics() *IdempotencyMetrics {
	return NewIdempotencyMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewIdempotencyMetricsWithRegisterer(registerer prometheus.Registerer) *IdempotencyMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &IdempotencyMetrics{
		requests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "delivery_idempotent_requests_total",
			Help: "Requests carrying an Idempotency-Key grouped by outcome",
		}, []string{"outcome"}),
		cleanupRuns: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "delivery_idempotency_cleanup_runs_total",
			Help: "Idempotency cleanup runs grouped by result",
		}, []string{"result"}),
		cleanupTotal: registerCounter(registerer, prometheus.CounterOpts{
			Name: "delivery_idempotency_cleanup_deleted_total",
			Help: "Expired idempotency keys deleted by cleanup",
		}),
		cleanupLast: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "delivery_idempotency_cleanup_last_deleted",
			Help: "Keys deleted during the last cleanup run",
		}),
	}
}

// RecordRequest учитывает исход запроса с ключом идемпотентности.
func (m *IdempotencyMetrics) RecordRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

// RecordCleanup учитывает прогон очистки. При ошибке deleted не публикуется.
func (m *IdempotencyMetrics) RecordCleanup(deleted int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.cleanupRuns.WithLabelValues("error").Inc()
		return
	}
	m.cleanupRuns.WithLabelValues("ok").Inc()
	m.cleanupLast.Set(float64(deleted))
	m.cleanupTotal.Add(float64(deleted))
}
