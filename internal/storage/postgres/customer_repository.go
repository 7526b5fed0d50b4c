package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

const customerColumns = `id, name, email, phone, active, created_at, updated_at`

type customerRepository struct {
	s *session
}

func (r *customerRepository) Get(ctx context.Context, id int64) (domain.Customer, error) {
	row := r.s.q.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return customer, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (domain.Customer, error) {
	row := r.s.q.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE email = $1`, domain.NormalizeEmail(email))
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer by email: %w", err)
	}
	return customer, nil
}

// Save полагается на уникальный индекс по e-mail.
func (r *customerRepository) Save(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	if err := r.s.writable(); err != nil {
		return domain.Customer{}, err
	}

	customer.Email = domain.NormalizeEmail(customer.Email)
	now := time.Now().UTC()

	var err error
	if customer.ID == 0 {
		customer.CreatedAt = now
		customer.UpdatedAt = now
		err = r.s.q.QueryRowContext(ctx, `
			INSERT INTO customers (name, email, phone, active, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id
		`, customer.Name, customer.Email, customer.Phone, customer.Active, customer.CreatedAt, customer.UpdatedAt,
		).Scan(&customer.ID)
	} else {
		customer.UpdatedAt = now
		err = r.s.q.QueryRowContext(ctx, `
			UPDATE customers
			SET name = $2, email = $3, phone = $4, active = $5, updated_at = $6
			WHERE id = $1
			RETURNING created_at
		`, customer.ID, customer.Name, customer.Email, customer.Phone, customer.Active, customer.UpdatedAt,
		).Scan(&customer.CreatedAt)
	}
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.Customer{}, domain.ErrCustomerEmailTaken
		case errors.Is(err, sql.ErrNoRows):
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("save customer: %w", err)
	}

	return customer, nil
}

func (r *customerRepository) Exists(ctx context.Context, id int64) (bool, error) {
	found, err := exists(ctx, r.s.q, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check customer exists: %w", err)
	}
	return found, nil
}

func (r *customerRepository) List(ctx context.Context, activeOnly bool) ([]domain.Customer, error) {
	rows, err := r.s.q.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE NOT $1 OR active
		ORDER BY id
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}
	return customers, nil
}

func scanCustomer(row scanner) (domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
