package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

// OrderMetrics содержит метрики жизненного цикла заказов.
// Методы безопасно вызывать на nil-указателе.
type OrderMetrics struct {
	created     prometheus.Counter
	rejected    *prometheus.CounterVec
	transitions *prometheus.CounterVec
	canceled    prometheus.Counter
	value       prometheus.Histogram
}

// NewOrderMetrics регистрирует метрики заказов в DefaultRegisterer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer регистрирует метрики в указанном реестре.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		created: registerCounter(registerer, prometheus.CounterOpts{
			Name: "delivery_orders_created_total",
			Help: "Total number of orders created",
		}),
		rejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "delivery_orders_rejected_total",
			Help: "Total number of rejected order creations by error kind",
		}, []string{"reason"}),
		transitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "delivery_order_status_transitions_total",
			Help: "Total number of order status transitions",
		}, []string{"from", "to"}),
		canceled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "delivery_orders_canceled_total",
			Help: "Total number of orders canceled",
		}),
		value: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "delivery_order_value",
			Help:    "Order totals at creation time",
			Buckets: []float64{10, 25, 50, 75, 100, 150, 250, 500, 1000},
		}),
	}
}

// RecordCreated учитывает созданный заказ и его сумму.
func (m *OrderMetrics) RecordCreated(total decimal.Decimal) {
	if m == nil {
		return
	}
	m.created.Inc()
	m.value.Observe(total.InexactFloat64())
}

// RecordRejected учитывает отказ в создании заказа.
func (m *OrderMetrics) RecordRejected(kind domain.Kind) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(string(kind)).Inc()
}

// RecordTransition учитывает смену статуса; отмена учитывается отдельно.
func (m *OrderMetrics) RecordTransition(from, to domain.OrderStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
	if to == domain.OrderStatusCanceled {
		m.canceled.Inc()
	}
}
