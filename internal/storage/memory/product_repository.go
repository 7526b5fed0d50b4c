package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

type productRepository struct {
	tx *tx
}

// Get возвращает товар или ErrProductNotFound.
func (r *productRepository) Get(_ context.Context, id int64) (domain.Product, error) {
	product, ok := r.tx.st.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// Save назначает идентификатор новому товару или перезаписывает существующий.
func (r *productRepository) Save(_ context.Context, product domain.Product) (domain.Product, error) {
	if err := r.tx.writable(); err != nil {
		return domain.Product{}, err
	}

	now := time.Now().UTC()
	if product.ID == 0 {
		r.tx.st.seq.product++
		product.ID = r.tx.st.seq.product
		product.CreatedAt = now
	} else {
		current, ok := r.tx.st.products[product.ID]
		if !ok {
			return domain.Product{}, domain.ErrProductNotFound
		}
		product.CreatedAt = current.CreatedAt
	}
	product.UpdatedAt = now

	put(r.tx, r.tx.st.products, product.ID, product)
	return product, nil
}

func (r *productRepository) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.tx.st.products[id]
	return ok, nil
}

func (r *productRepository) Delete(_ context.Context, id int64) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	remove(r.tx, r.tx.st.products, id)
	return nil
}

func (r *productRepository) List(context.Context) ([]domain.Product, error) {
	return r.filter(func(domain.Product) bool { return true }), nil
}

func (r *productRepository) ListByRestaurant(_ context.Context, restaurantID int64) ([]domain.Product, error) {
	return r.filter(func(p domain.Product) bool { return p.RestaurantID == restaurantID }), nil
}

func (r *productRepository) ListByCategory(_ context.Context, category string) ([]domain.Product, error) {
	return r.filter(func(p domain.Product) bool { return strings.EqualFold(p.Category, category) }), nil
}

func (r *productRepository) ListAvailable(context.Context) ([]domain.Product, error) {
	return r.filter(func(p domain.Product) bool { return p.Available }), nil
}

func (r *productRepository) SearchByName(_ context.Context, name string) ([]domain.Product, error) {
	needle := strings.ToLower(name)
	return r.filter(func(p domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	}), nil
}

// filter возвращает подходящие товары в порядке идентификаторов.
func (r *productRepository) filter(match func(domain.Product) bool) []domain.Product {
	result := make([]domain.Product, 0)
	for _, product := range r.tx.st.products {
		if match(product) {
			result = append(result, product)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

var _ domain.ProductRepository = (*productRepository)(nil)
