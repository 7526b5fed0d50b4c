package domain

import "time"

const (
	TimelineOrderCreated       = "OrderCreated"
	TimelineOrderStatusChanged = "OrderStatusChanged"
	TimelineOrderCanceled      = "OrderCanceled"
	TimelineOrderDeleted       = "OrderDeleted"
)

// TimelineEvent описывает событие в жизненном цикле заказа.
type TimelineEvent struct {
	OrderID  int64
	Type     string
	Status   OrderStatus
	Reason   string
	Occurred time.Time
}
