package kafka

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

// EventType определяет тип события
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderCanceled      EventType = "order.canceled"
	EventTypeOrderDeleted       EventType = "order.deleted"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "delivery.order.events"
	TopicDeadLetterQueue = "delivery.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers
const (
	HeaderEventType     = "x-event-type"
	HeaderAggregateType = "x-aggregate-type"
	HeaderOriginalTopic = "x-original-topic"
	HeaderFailedAt      = "x-failed-at"
)

// eventTypes сопоставляет типы событий timeline с типами событий в брокере.
var eventTypes = map[string]EventType{
	domain.TimelineOrderCreated:       EventTypeOrderCreated,
	domain.TimelineOrderStatusChanged: EventTypeOrderStatusChanged,
	domain.TimelineOrderCanceled:      EventTypeOrderCanceled,
	domain.TimelineOrderDeleted:       EventTypeOrderDeleted,
}

// EventTypeFor возвращает тип события брокера для типа события timeline.
func EventTypeFor(timelineType string) (EventType, bool) {
	eventType, ok := eventTypes[timelineType]
	return eventType, ok
}

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType  EventType       `json:"event_type"`
	OrderID    int64           `json:"order_id"`
	CustomerID int64           `json:"customer_id"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Reason     string          `json:"reason,omitempty"`
	Version    int64           `json:"version"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewOrderEvent создает событие по текущему состоянию заказа
func NewOrderEvent(eventType EventType, order domain.Order) *OrderEvent {
	event := &OrderEvent{
		EventType:  eventType,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Status:     string(order.Status),
		Total:      order.Total,
		Version:    order.Version,
		Timestamp:  time.Now().UTC(),
	}
	if order.CancellationReason != nil {
		event.Reason = *order.CancellationReason
	}
	return event
}
