package memory

import (
	"context"
	"sort"
	"time"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

type customerRepository struct {
	tx *tx
}

func (r *customerRepository) Get(_ context.Context, id int64) (domain.Customer, error) {
	customer, ok := r.tx.st.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

func (r *customerRepository) GetByEmail(_ context.Context, email string) (domain.Customer, error) {
	email = domain.NormalizeEmail(email)
	for _, customer := range r.tx.st.customers {
		if customer.Email == email {
			return customer, nil
		}
	}
	return domain.Customer{}, domain.ErrCustomerNotFound
}

// Save проверяет уникальность e-mail среди всех клиентов, включая неактивных.
func (r *customerRepository) Save(_ context.Context, customer domain.Customer) (domain.Customer, error) {
	if err := r.tx.writable(); err != nil {
		return domain.Customer{}, err
	}

	customer.Email = domain.NormalizeEmail(customer.Email)
	for _, other := range r.tx.st.customers {
		if other.ID != customer.ID && other.Email == customer.Email {
			return domain.Customer{}, domain.ErrCustomerEmailTaken
		}
	}

	now := time.Now().UTC()
	if customer.ID == 0 {
		r.tx.st.seq.customer++
		customer.ID = r.tx.st.seq.customer
		customer.CreatedAt = now
	} else {
		current, ok := r.tx.st.customers[customer.ID]
		if !ok {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		customer.CreatedAt = current.CreatedAt
	}
	customer.UpdatedAt = now

	put(r.tx, r.tx.st.customers, customer.ID, customer)
	return customer, nil
}

func (r *customerRepository) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.tx.st.customers[id]
	return ok, nil
}

func (r *customerRepository) List(_ context.Context, activeOnly bool) ([]domain.Customer, error) {
	result := make([]domain.Customer, 0, len(r.tx.st.customers))
	for _, customer := range r.tx.st.customers {
		if activeOnly && !customer.Active {
			continue
		}
		result = append(result, customer)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
