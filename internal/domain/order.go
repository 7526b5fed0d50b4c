package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа доставки.
type OrderStatus string

const (
	// OrderStatusCreated — заказ принят, цены зафиксированы.
	OrderStatusCreated OrderStatus = "CRIADO"
	// OrderStatusPreparing — ресторан готовит заказ.
	OrderStatusPreparing OrderStatus = "EM_PREPARO"
	// OrderStatusOutForDelivery — курьер забрал заказ.
	OrderStatusOutForDelivery OrderStatus = "SAIU_PARA_ENTREGA"
	// OrderStatusDelivered — заказ вручён клиенту (конечный статус).
	OrderStatusDelivered OrderStatus = "ENTREGUE"
	// OrderStatusCanceled — заказ отменён (конечный статус).
	OrderStatusCanceled OrderStatus = "CANCELADO"
)

// transitions — единственный источник правил смены статуса.
// Из нетерминальных статусов разрешено только движение вперёд и отмена;
// терминальные статусы не имеют исходящих переходов.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:        {OrderStatusPreparing, OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCanceled},
	OrderStatusPreparing:      {OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCanceled},
	OrderStatusOutForDelivery: {OrderStatusDelivered, OrderStatusCanceled},
	OrderStatusDelivered:      {},
	OrderStatusCanceled:       {},
}

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal сообщает, что из статуса нет исходящих переходов.
func (s OrderStatus) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo сверяет переход с таблицей.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CheckTransition возвращает ошибку, если переход s → next запрещён.
func (s OrderStatus) CheckTransition(next OrderStatus) error {
	switch {
	case !next.Valid():
		return ErrStatusInvalid
	case s.Terminal():
		return ErrTerminalState
	case !s.CanTransitionTo(next):
		return ErrInvalidTransition
	default:
		return nil
	}
}

// OrderItem — строка заказа с ценой, зафиксированной в момент создания.
type OrderItem struct {
	ID        int64
	ProductID int64
	// ProductName фиксируется вместе с ценой, чтобы удалённый товар оставался читаемым.
	ProductName string
	Quantity    int32
	UnitPrice   decimal.Decimal
}

// Subtotal возвращает стоимость строки: цена × количество.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID         int64
	CustomerID int64
	Items      []OrderItem
	Total      decimal.Decimal
	Status     OrderStatus
	// CancellationReason заполняется только операцией отмены; пустая строка допустима.
	CancellationReason *string
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ItemsTotal суммирует стоимость позиций без округления.
func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID <= 0 {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrEmptyOrder)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrStatusInvalid)
	}
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if !item.UnitPrice.IsPositive() {
			errs = append(errs, ErrInvalidPrice)
		}
	}
	if !ItemsTotal(o.Items).Equal(o.Total) {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// OrderDraft — корзина клиента до создания заказа.
type OrderDraft struct {
	CustomerID int64
	Items      []OrderItemDraft
}

// OrderItemDraft ссылается на товар и количество; цена берётся из каталога.
type OrderItemDraft struct {
	ProductID int64
	Quantity  int32
}
