package domain

import (
	"errors"
	"fmt"
)

// Kind классифицирует ошибку ядра для транспортного слоя.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindReferenceNotFound  Kind = "REFERENCE_NOT_FOUND"
	KindInvalidPrice       Kind = "INVALID_PRICE"
	KindEmptyOrder         Kind = "EMPTY_ORDER"
	KindProductUnavailable Kind = "PRODUCT_UNAVAILABLE"
	KindTerminalState      Kind = "TERMINAL_STATE"
	KindInvalidTransition  Kind = "INVALID_TRANSITION"
	KindInvalidArgument    Kind = "INVALID_ARGUMENT"
	KindConflict           Kind = "CONFLICT"
	KindInternal           Kind = "INTERNAL"
)

var (
	// ErrNotFound — сущность с указанным идентификатором отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrReferenceNotFound — связанная сущность (товар позиции, ресторан товара) отсутствует.
	ErrReferenceNotFound = errors.New("referenced entity not found")
	// ErrInvalidPrice — цена отсутствует или не больше нуля.
	ErrInvalidPrice = errors.New("price must be greater than zero")
	// ErrEmptyOrder — заказ без позиций.
	ErrEmptyOrder = errors.New("order must contain at least one item")
	// ErrProductUnavailable — товар снят с продажи и не может попасть в новый заказ.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrTerminalState — заказ в конечном статусе, изменение запрещено.
	ErrTerminalState = errors.New("order is in a terminal state")
	// ErrInvalidTransition — переход статуса не разрешён таблицей переходов.
	ErrInvalidTransition = errors.New("status transition is not allowed")
	// ErrInvalidArgument — некорректные входные данные.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict — конкурентное изменение или нарушение уникальности.
	ErrConflict = errors.New("conflict")

	ErrOrderNotFound      = fmt.Errorf("order %w", ErrNotFound)
	ErrProductNotFound    = fmt.Errorf("product %w", ErrNotFound)
	ErrCustomerNotFound   = fmt.Errorf("customer %w", ErrNotFound)
	ErrRestaurantNotFound = fmt.Errorf("restaurant %w", ErrNotFound)

	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = fmt.Errorf("order version %w", ErrConflict)
	// ErrCustomerEmailTaken — e-mail уже принадлежит другому клиенту (активному или нет).
	ErrCustomerEmailTaken = fmt.Errorf("customer email %w", ErrConflict)

	ErrCustomerRequired   = fmt.Errorf("%w: customer_id is required", ErrInvalidArgument)
	ErrRestaurantRequired = fmt.Errorf("%w: product must belong to a restaurant", ErrInvalidArgument)
	ErrItemQtyInvalid     = fmt.Errorf("%w: item quantity must be greater than zero", ErrInvalidArgument)
	ErrStatusInvalid      = fmt.Errorf("%w: unknown order status", ErrInvalidArgument)
	// ErrAmountMismatch — сумма заказа не совпадает с суммой позиций.
	ErrAmountMismatch = errors.New("order total does not match items sum")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
	// ErrReadOnlyTx — попытка записи внутри read-only единицы работы.
	ErrReadOnlyTx = errors.New("write attempted in read-only transaction")
)

// kindTable упорядочена: ссылочные ошибки проверяются раньше общих.
var kindTable = []struct {
	err  error
	kind Kind
}{
	{ErrReferenceNotFound, KindReferenceNotFound},
	{ErrNotFound, KindNotFound},
	{ErrInvalidPrice, KindInvalidPrice},
	{ErrEmptyOrder, KindEmptyOrder},
	{ErrProductUnavailable, KindProductUnavailable},
	{ErrTerminalState, KindTerminalState},
	{ErrInvalidTransition, KindInvalidTransition},
	{ErrInvalidArgument, KindInvalidArgument},
	{ErrConflict, KindConflict},
}

// KindOf возвращает вид ошибки по цепочке обёрток. Неизвестные ошибки — KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, entry := range kindTable {
		if errors.Is(err, entry.err) {
			return entry.kind
		}
	}
	return KindInternal
}

// IsNotFound проверяет, что ошибка означает отсутствие сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
