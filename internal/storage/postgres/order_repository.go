package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

const orderColumns = `id, customer_id, total, status, cancellation_reason, version, created_at, updated_at`

type orderRepository struct {
	s *session
}

func (r *orderRepository) Get(ctx context.Context, id int64) (domain.Order, error) {
	row := r.s.q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	return order, nil
}

// Save вставляет заказ вместе с позициями либо обновляет заголовок с проверкой версии.
func (r *orderRepository) Save(ctx context.Context, order domain.Order) (domain.Order, error) {
	if err := r.s.writable(); err != nil {
		return domain.Order{}, err
	}
	if order.ID == 0 {
		return r.create(ctx, order)
	}

	res, err := r.s.q.ExecContext(ctx, `
		UPDATE orders
		SET customer_id = $1,
		    total = $2,
		    status = $3,
		    cancellation_reason = $4,
		    version = version + 1,
		    updated_at = $5
		WHERE id = $6
		  AND version = $7
	`,
		order.CustomerID,
		order.Total,
		string(order.Status),
		nullString(order.CancellationReason),
		time.Now().UTC(),
		order.ID,
		order.Version,
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Order{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		found, err := r.Exists(ctx, order.ID)
		if err != nil {
			return domain.Order{}, err
		}
		if !found {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, domain.ErrOrderVersionConflict
	}

	return r.Get(ctx, order.ID)
}

func (r *orderRepository) create(ctx context.Context, order domain.Order) (domain.Order, error) {
	now := time.Now().UTC()
	order.Version = 0
	order.CreatedAt = now
	order.UpdatedAt = now

	if err := r.s.q.QueryRowContext(ctx, `
		INSERT INTO orders (
			customer_id, total, status, cancellation_reason, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`,
		order.CustomerID, order.Total, string(order.Status), nullString(order.CancellationReason),
		order.Version, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID); err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	for i := range items {
		if err := r.s.q.QueryRowContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name, quantity, unit_price
			) VALUES ($1,$2,$3,$4,$5)
			RETURNING id
		`,
			order.ID, items[i].ProductID, items[i].ProductName, items[i].Quantity, items[i].UnitPrice,
		).Scan(&items[i].ID); err != nil {
			return domain.Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) Exists(ctx context.Context, id int64) (bool, error) {
	found, err := exists(ctx, r.s.q, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check order exists: %w", err)
	}
	return found, nil
}

// Delete удаляет заказ; позиции удаляются каскадно.
func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	if err := r.s.writable(); err != nil {
		return err
	}

	res, err := r.s.q.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id`)
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	return r.query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
	`, customerID)
}

func (r *orderRepository) query(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	// Внутри транзакции нельзя держать открытый курсор, пока грузятся позиции.
	rows.Close()

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := r.s.q.QueryContext(ctx, `
		SELECT id, product_id, product_name, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func scanOrder(row scanner) (domain.Order, error) {
	var (
		order  domain.Order
		status string
		reason sql.NullString
	)
	if err := row.Scan(
		&order.ID, &order.CustomerID, &order.Total, &status, &reason,
		&order.Version, &order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	if reason.Valid {
		r := reason.String
		order.CancellationReason = &r
	}
	return order, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ domain.OrderRepository = (*orderRepository)(nil)
