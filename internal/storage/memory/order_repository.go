package memory

import (
	"context"
	"sort"
	"time"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

// orderRepository — in-memory реализация OrderRepository.
type orderRepository struct {
	tx *tx
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepository) Get(_ context.Context, id int64) (domain.Order, error) {
	order, ok := r.tx.st.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

// Save создаёт заказ с позициями или обновляет заголовок, проверяя версию (optimistic locking).
func (r *orderRepository) Save(_ context.Context, order domain.Order) (domain.Order, error) {
	if err := r.tx.writable(); err != nil {
		return domain.Order{}, err
	}

	now := time.Now().UTC()
	if order.ID == 0 {
		r.tx.st.seq.order++
		order.ID = r.tx.st.seq.order
		order.Items = copyItems(order.Items)
		for i := range order.Items {
			r.tx.st.seq.orderItem++
			order.Items[i].ID = r.tx.st.seq.orderItem
		}
		order.Version = 0
		order.CreatedAt = now
		order.UpdatedAt = now
		put(r.tx, r.tx.st.orders, order.ID, order)
		return copyOrder(order), nil
	}

	current, ok := r.tx.st.orders[order.ID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.Order{}, domain.ErrOrderVersionConflict
	}

	// Позиции неизменяемы после создания: сохраняем исходные.
	order.Items = current.Items
	order.CreatedAt = current.CreatedAt
	order.UpdatedAt = now
	order.Version++
	put(r.tx, r.tx.st.orders, order.ID, order)
	return copyOrder(order), nil
}

func (r *orderRepository) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.tx.st.orders[id]
	return ok, nil
}

func (r *orderRepository) Delete(_ context.Context, id int64) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	remove(r.tx, r.tx.st.orders, id)
	return nil
}

// List возвращает все заказы в порядке идентификаторов.
func (r *orderRepository) List(context.Context) ([]domain.Order, error) {
	result := make([]domain.Order, 0, len(r.tx.st.orders))
	for _, order := range r.tx.st.orders {
		result = append(result, copyOrder(order))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListByCustomer возвращает заказы клиента, новые первыми.
func (r *orderRepository) ListByCustomer(_ context.Context, customerID int64) ([]domain.Order, error) {
	result := make([]domain.Order, 0)
	for _, order := range r.tx.st.orders {
		if order.CustomerID != customerID {
			continue
		}
		result = append(result, copyOrder(order))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

// copyOrder отвязывает срез позиций и причину отмены от хранимого экземпляра.
func copyOrder(order domain.Order) domain.Order {
	order.Items = copyItems(order.Items)
	if order.CancellationReason != nil {
		reason := *order.CancellationReason
		order.CancellationReason = &reason
	}
	return order
}

func copyItems(items []domain.OrderItem) []domain.OrderItem {
	if items == nil {
		return nil
	}
	result := make([]domain.OrderItem, len(items))
	copy(result, items)
	return result
}

var _ domain.OrderRepository = (*orderRepository)(nil)
