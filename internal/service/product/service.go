// Package product управляет каталогом товаров ресторанов.
package product

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
	"github.com/vladislavdragonenkov/deliverytech/internal/metrics"
)

// Option настраивает Service.
type Option func(*Service)

// WithMetrics подключает метрики каталога.
func WithMetrics(m *metrics.CatalogMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service — операции над каталогом. Каждая изменяющая операция
// сохраняет товар ровно один раз и не рассылает уведомлений.
type Service struct {
	tx      domain.Transactor
	logger  *log.Entry
	metrics *metrics.CatalogMetrics
}

// NewService создаёт сервис каталога.
func NewService(tx domain.Transactor, logger *log.Entry, options ...Option) *Service {
	if logger == nil {
		logger = log.WithField("component", "product-service")
	}
	s := &Service{tx: tx, logger: logger}
	for _, option := range options {
		option(s)
	}
	return s
}

// Create проверяет цену и ресторан и сохраняет товар. Без явного флага товар доступен.
func (s *Service) Create(ctx context.Context, draft domain.ProductDraft) (domain.Product, error) {
	if err := domain.ValidatePrice(draft.Price); err != nil {
		return domain.Product{}, err
	}
	if draft.RestaurantID <= 0 {
		return domain.Product{}, domain.ErrRestaurantRequired
	}

	available := true
	if draft.Available != nil {
		available = *draft.Available
	}

	var created domain.Product
	err := s.tx.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		if _, err := repos.Restaurants.Get(ctx, draft.RestaurantID); err != nil {
			if errors.Is(err, domain.ErrRestaurantNotFound) {
				return fmt.Errorf("restaurant %d: %w", draft.RestaurantID, domain.ErrReferenceNotFound)
			}
			return err
		}

		var err error
		created, err = repos.Products.Save(ctx, domain.Product{
			RestaurantID: draft.RestaurantID,
			Name:         draft.Name,
			Description:  draft.Description,
			Category:     draft.Category,
			Price:        *draft.Price,
			Available:    available,
		})
		return err
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.metrics.RecordMutation(metrics.CatalogOpCreate)
	s.logger.WithFields(log.Fields{
		"product_id":    created.ID,
		"restaurant_id": created.RestaurantID,
	}).Info("product created")
	return created, nil
}

// FindByID возвращает товар; found=false, если его нет.
func (s *Service) FindByID(ctx context.Context, id int64) (product domain.Product, found bool, err error) {
	err = s.read(ctx, func(repos domain.Repositories) error {
		var getErr error
		product, getErr = repos.Products.Get(ctx, id)
		return getErr
	})
	if errors.Is(err, domain.ErrProductNotFound) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, err
	}
	return product, true, nil
}

// List возвращает все товары в порядке идентификаторов.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.list(ctx, func(repos domain.Repositories) ([]domain.Product, error) {
		return repos.Products.List(ctx)
	})
}

func (s *Service) ListByRestaurant(ctx context.Context, restaurantID int64) ([]domain.Product, error) {
	return s.list(ctx, func(repos domain.Repositories) ([]domain.Product, error) {
		return repos.Products.ListByRestaurant(ctx, restaurantID)
	})
}

// ListByCategory ищет точное совпадение категории без учёта регистра.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return s.list(ctx, func(repos domain.Repositories) ([]domain.Product, error) {
		return repos.Products.ListByCategory(ctx, category)
	})
}

// SearchByName ищет подстроку в названии без учёта регистра.
func (s *Service) SearchByName(ctx context.Context, name string) ([]domain.Product, error) {
	return s.list(ctx, func(repos domain.Repositories) ([]domain.Product, error) {
		return repos.Products.SearchByName(ctx, name)
	})
}

func (s *Service) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	return s.list(ctx, func(repos domain.Repositories) ([]domain.Product, error) {
		return repos.Products.ListAvailable(ctx)
	})
}

// Update применяет только присутствующие поля патча. Ресторан товара не меняется.
func (s *Service) Update(ctx context.Context, id int64, patch domain.ProductPatch) (domain.Product, error) {
	updated, _, err := s.mutate(ctx, id, func(product *domain.Product) error {
		if patch.Price != nil {
			if err := domain.ValidatePrice(patch.Price); err != nil {
				return err
			}
		}
		patch.Apply(product)
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.metrics.RecordMutation(metrics.CatalogOpUpdate)
	s.logger.WithField("product_id", id).Info("product updated")
	return updated, nil
}

// Deactivate снимает товар с продажи. Идемпотентна.
func (s *Service) Deactivate(ctx context.Context, id int64) (domain.Product, error) {
	return s.SetAvailability(ctx, id, false)
}

// SetAvailability выставляет флаг доступности. Идемпотентна: если флаг
// уже совпадает, товар не перезаписывается и UpdatedAt не меняется.
func (s *Service) SetAvailability(ctx context.Context, id int64, available bool) (domain.Product, error) {
	updated, changed, err := s.mutate(ctx, id, func(product *domain.Product) error {
		if product.Available == available {
			return errUnchanged
		}
		product.Available = available
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	if !changed {
		return updated, nil
	}

	s.metrics.RecordMutation(metrics.CatalogOpAvailability)
	s.logger.WithFields(log.Fields{
		"product_id": id,
		"available":  available,
	}).Info("product availability changed")
	return updated, nil
}

// Delete удаляет товар. Заказы хранят снимок позиций и не затрагиваются.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		return repos.Products.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.metrics.RecordMutation(metrics.CatalogOpDelete)
	s.logger.WithField("product_id", id).Info("product deleted")
	return nil
}

// errUnchanged возвращается из apply, когда сохранять нечего.
var errUnchanged = errors.New("product unchanged")

// mutate читает товар, применяет apply и сохраняет результат в одной
// транзакции. changed=false, если apply вернул errUnchanged.
func (s *Service) mutate(ctx context.Context, id int64, apply func(product *domain.Product) error) (domain.Product, bool, error) {
	var (
		updated domain.Product
		changed bool
	)
	err := s.tx.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		product, err := repos.Products.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(&product); err != nil {
			if errors.Is(err, errUnchanged) {
				updated = product
				return nil
			}
			return err
		}
		updated, err = repos.Products.Save(ctx, product)
		changed = err == nil
		return err
	})
	return updated, changed, err
}

func (s *Service) read(ctx context.Context, fn func(repos domain.Repositories) error) error {
	return s.tx.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, fn)
}

func (s *Service) list(ctx context.Context, query func(repos domain.Repositories) ([]domain.Product, error)) ([]domain.Product, error) {
	var products []domain.Product
	err := s.read(ctx, func(repos domain.Repositories) error {
		var err error
		products, err = query(repos)
		return err
	})
	return products, err
}
