package metrics

import "github.com/prometheus/client_golang/prometheus"

// Операции каталога для метки op.
const (
	CatalogOpCreate       = "create"
	CatalogOpUpdate       = "update"
	CatalogOpAvailability = "availability"
	CatalogOpDelete       = "delete"
)

// CatalogMetrics считает изменения каталога товаров.
type CatalogMetrics struct {
	mutations *prometheus.CounterVec
}

// NewCatalogMetrics регистрирует метрики каталога в DefaultRegisterer.
func NewCatalogMetrics() *CatalogMetrics {
	return NewCatalogMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCatalogMetricsWithRegisterer регистрирует метрики в указанном реестре.
func NewCatalogMetricsWithRegisterer(registerer prometheus.Registerer) *CatalogMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &CatalogMetrics{
		mutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "delivery_products_mutations_total",
			Help: "Total number of product catalog mutations",
		}, []string{"op"}),
	}
}

// RecordMutation учитывает успешное изменение товара.
func (m *CatalogMetrics) RecordMutation(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op).Inc()
}
