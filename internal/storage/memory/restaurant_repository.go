package memory

import (
	"context"
	"sort"
	"time"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

type restaurantRepository struct {
	tx *tx
}

func (r *restaurantRepository) Get(_ context.Context, id int64) (domain.Restaurant, error) {
	restaurant, ok := r.tx.st.restaurants[id]
	if !ok {
		return domain.Restaurant{}, domain.ErrRestaurantNotFound
	}
	return restaurant, nil
}

func (r *restaurantRepository) Save(_ context.Context, restaurant domain.Restaurant) (domain.Restaurant, error) {
	if err := r.tx.writable(); err != nil {
		return domain.Restaurant{}, err
	}

	if restaurant.ID == 0 {
		r.tx.st.seq.restaurant++
		restaurant.ID = r.tx.st.seq.restaurant
		restaurant.CreatedAt = time.Now().UTC()
	} else if current, ok := r.tx.st.restaurants[restaurant.ID]; ok {
		restaurant.CreatedAt = current.CreatedAt
	} else {
		return domain.Restaurant{}, domain.ErrRestaurantNotFound
	}

	put(r.tx, r.tx.st.restaurants, restaurant.ID, restaurant)
	return restaurant, nil
}

func (r *restaurantRepository) List(context.Context) ([]domain.Restaurant, error) {
	result := make([]domain.Restaurant, 0, len(r.tx.st.restaurants))
	for _, restaurant := range r.tx.st.restaurants {
		result = append(result, restaurant)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

var _ domain.RestaurantRepository = (*restaurantRepository)(nil)
