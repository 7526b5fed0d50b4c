// Package customer управляет клиентами сервиса доставки.
package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

var (
	ErrNameRequired  = fmt.Errorf("%w: customer name is required", domain.ErrInvalidArgument)
	ErrEmailRequired = fmt.Errorf("%w: customer email is required", domain.ErrInvalidArgument)
)

// Draft содержит данные для регистрации клиента.
type Draft struct {
	Name  string
	Email string
	Phone string
}

// Service — регистрация и профиль клиента.
type Service struct {
	tx     domain.Transactor
	logger *log.Entry
}

func NewService(tx domain.Transactor, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "customer-service")
	}
	return &Service{tx: tx, logger: logger}
}

// Create регистрирует активного клиента. E-mail приводится к нижнему регистру
// и должен быть свободен среди всех клиентов.
func (s *Service) Create(ctx context.Context, draft Draft) (domain.Customer, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return domain.Customer{}, ErrNameRequired
	}
	if strings.TrimSpace(draft.Email) == "" {
		return domain.Customer{}, ErrEmailRequired
	}

	var created domain.Customer
	err := s.tx.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		var err error
		created, err = repos.Customers.Save(ctx, domain.Customer{
			Name:   strings.TrimSpace(draft.Name),
			Email:  domain.NormalizeEmail(draft.Email),
			Phone:  draft.Phone,
			Active: true,
		})
		return err
	})
	if err != nil {
		return domain.Customer{}, err
	}

	s.logger.WithField("customer_id", created.ID).Info("customer registered")
	return created, nil
}

// FindByID возвращает клиента или ErrCustomerNotFound.
func (s *Service) FindByID(ctx context.Context, id int64) (domain.Customer, error) {
	var customer domain.Customer
	err := s.read(ctx, func(repos domain.Repositories) error {
		var err error
		customer, err = repos.Customers.Get(ctx, id)
		return err
	})
	return customer, err
}

// FindByEmail ищет клиента по нормализованному e-mail.
func (s *Service) FindByEmail(ctx context.Context, email string) (domain.Customer, error) {
	var customer domain.Customer
	err := s.read(ctx, func(repos domain.Repositories) error {
		var err error
		customer, err = repos.Customers.GetByEmail(ctx, email)
		return err
	})
	return customer, err
}

// List возвращает всех клиентов в порядке идентификаторов.
func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	return s.list(ctx, false)
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Customer, error) {
	return s.list(ctx, true)
}

// Update меняет присутствующие поля профиля. Пустое имя или e-mail отклоняются.
func (s *Service) Update(ctx context.Context, id int64, patch domain.CustomerPatch) (domain.Customer, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.Customer{}, ErrNameRequired
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) == "" {
		return domain.Customer{}, ErrEmailRequired
	}

	updated, err := s.mutate(ctx, id, func(customer *domain.Customer) {
		patch.Apply(customer)
	})
	if err != nil {
		return domain.Customer{}, err
	}

	s.logger.WithField("customer_id", id).Info("customer updated")
	return updated, nil
}

// Deactivate помечает клиента неактивным. Идемпотентна.
func (s *Service) Deactivate(ctx context.Context, id int64) (domain.Customer, error) {
	return s.setActive(ctx, id, false)
}

// Activate возвращает клиента в активные. Идемпотентна.
func (s *Service) Activate(ctx context.Context, id int64) (domain.Customer, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id int64, active bool) (domain.Customer, error) {
	updated, err := s.mutate(ctx, id, func(customer *domain.Customer) {
		customer.Active = active
	})
	if err != nil {
		return domain.Customer{}, err
	}

	s.logger.WithFields(log.Fields{
		"customer_id": id,
		"active":      active,
	}).Info("customer activity changed")
	return updated, nil
}

func (s *Service) mutate(ctx context.Context, id int64, apply func(customer *domain.Customer)) (domain.Customer, error) {
	var updated domain.Customer
	err := s.tx.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		customer, err := repos.Customers.Get(ctx, id)
		if err != nil {
			return err
		}
		apply(&customer)
		updated, err = repos.Customers.Save(ctx, customer)
		return err
	})
	return updated, err
}

func (s *Service) list(ctx context.Context, activeOnly bool) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := s.read(ctx, func(repos domain.Repositories) error {
		var err error
		customers, err = repos.Customers.List(ctx, activeOnly)
		return err
	})
	return customers, err
}

func (s *Service) read(ctx context.Context, fn func(repos domain.Repositories) error) error {
	err := s.tx.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, fn)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.WithError(err).Error("customer read failed")
	}
	return err
}
