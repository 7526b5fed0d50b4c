package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

type restaurantRepository struct {
	s *session
}

func (r *restaurantRepository) Get(ctx context.Context, id int64) (domain.Restaurant, error) {
	var restaurant domain.Restaurant
	err := r.s.q.QueryRowContext(ctx, `
		SELECT id, name, category, created_at
		FROM restaurants
		WHERE id = $1
	`, id).Scan(&restaurant.ID, &restaurant.Name, &restaurant.Category, &restaurant.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Restaurant{}, domain.ErrRestaurantNotFound
		}
		return domain.Restaurant{}, fmt.Errorf("select restaurant: %w", err)
	}
	return restaurant, nil
}

func (r *restaurantRepository) Save(ctx context.Context, restaurant domain.Restaurant) (domain.Restaurant, error) {
	if err := r.s.writable(); err != nil {
		return domain.Restaurant{}, err
	}

	var err error
	if restaurant.ID == 0 {
		restaurant.CreatedAt = time.Now().UTC()
		err = r.s.q.QueryRowContext(ctx, `
			INSERT INTO restaurants (name, category, created_at)
			VALUES ($1,$2,$3)
			RETURNING id
		`, restaurant.Name, restaurant.Category, restaurant.CreatedAt).Scan(&restaurant.ID)
	} else {
		err = r.s.q.QueryRowContext(ctx, `
			UPDATE restaurants SET name = $2, category = $3
			WHERE id = $1
			RETURNING created_at
		`, restaurant.ID, restaurant.Name, restaurant.Category).Scan(&restaurant.CreatedAt)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Restaurant{}, domain.ErrRestaurantNotFound
		}
		return domain.Restaurant{}, fmt.Errorf("save restaurant: %w", err)
	}
	return restaurant, nil
}

func (r *restaurantRepository) List(ctx context.Context) ([]domain.Restaurant, error) {
	rows, err := r.s.q.QueryContext(ctx, `SELECT id, name, category, created_at FROM restaurants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := make([]domain.Restaurant, 0)
	for rows.Next() {
		var restaurant domain.Restaurant
		if err := rows.Scan(&restaurant.ID, &restaurant.Name, &restaurant.Category, &restaurant.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan restaurant row: %w", err)
		}
		restaurants = append(restaurants, restaurant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurant rows: %w", err)
	}
	return restaurants, nil
}

var _ domain.RestaurantRepository = (*restaurantRepository)(nil)
