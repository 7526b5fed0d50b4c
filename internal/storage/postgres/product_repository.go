package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

const productColumns = `id, restaurant_id, name, description, category, price, available, created_at, updated_at`

type productRepository struct {
	s *session
}

func (r *productRepository) Get(ctx context.Context, id int64) (domain.Product, error) {
	row := r.s.q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

func (r *productRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	if err := r.s.writable(); err != nil {
		return domain.Product{}, err
	}

	now := time.Now().UTC()
	product.UpdatedAt = now

	var err error
	if product.ID == 0 {
		product.CreatedAt = now
		err = r.s.q.QueryRowContext(ctx, `
			INSERT INTO products (
				restaurant_id, name, description, category, price, available, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING id
		`,
			product.RestaurantID, product.Name, product.Description, product.Category,
			product.Price, product.Available, product.CreatedAt, product.UpdatedAt,
		).Scan(&product.ID)
	} else {
		err = r.s.q.QueryRowContext(ctx, `
			UPDATE products
			SET restaurant_id = $2,
			    name = $3,
			    description = $4,
			    category = $5,
			    price = $6,
			    available = $7,
			    updated_at = $8
			WHERE id = $1
			RETURNING created_at
		`,
			product.ID, product.RestaurantID, product.Name, product.Description, product.Category,
			product.Price, product.Available, product.UpdatedAt,
		).Scan(&product.CreatedAt)
	}
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return domain.Product{}, domain.ErrProductNotFound
		case isForeignKeyViolation(err):
			return domain.Product{}, domain.ErrRestaurantNotFound
		}
		return domain.Product{}, fmt.Errorf("save product: %w", err)
	}
	return product, nil
}

func (r *productRepository) Exists(ctx context.Context, id int64) (bool, error) {
	found, err := exists(ctx, r.s.q, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check product exists: %w", err)
	}
	return found, nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	if err := r.s.writable(); err != nil {
		return err
	}

	res, err := r.s.q.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

func (r *productRepository) ListByRestaurant(ctx context.Context, restaurantID int64) ([]domain.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products WHERE restaurant_id = $1 ORDER BY id`, restaurantID)
}

func (r *productRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products WHERE lower(category) = lower($1) ORDER BY id`, category)
}

func (r *productRepository) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products WHERE available ORDER BY id`)
}

func (r *productRepository) SearchByName(ctx context.Context, name string) ([]domain.Product, error) {
	return r.query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY id
	`, escapeLike(name))
}

func (r *productRepository) query(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

func scanProduct(row scanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.RestaurantID, &p.Name, &p.Description, &p.Category,
		&p.Price, &p.Available, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

var _ domain.ProductRepository = (*productRepository)(nil)
