// Package restaurant ведёт справочник ресторанов, которым принадлежат товары.
package restaurant

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

var ErrNameRequired = fmt.Errorf("%w: restaurant name is required", domain.ErrInvalidArgument)

type Service struct {
	tx     domain.Transactor
	logger *log.Entry
}

func NewService(tx domain.Transactor, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "restaurant-service")
	}
	return &Service{tx: tx, logger: logger}
}

// Create регистрирует ресторан.
func (s *Service) Create(ctx context.Context, name, category string) (domain.Restaurant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Restaurant{}, ErrNameRequired
	}

	var created domain.Restaurant
	err := s.tx.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		var err error
		created, err = repos.Restaurants.Save(ctx, domain.Restaurant{Name: name, Category: category})
		return err
	})
	if err != nil {
		return domain.Restaurant{}, err
	}

	s.logger.WithField("restaurant_id", created.ID).Info("restaurant registered")
	return created, nil
}

// FindByID возвращает ресторан или ErrRestaurantNotFound.
func (s *Service) FindByID(ctx context.Context, id int64) (domain.Restaurant, error) {
	var restaurant domain.Restaurant
	err := s.tx.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, func(repos domain.Repositories) error {
		var err error
		restaurant, err = repos.Restaurants.Get(ctx, id)
		return err
	})
	return restaurant, err
}

func (s *Service) List(ctx context.Context) ([]domain.Restaurant, error) {
	var restaurants []domain.Restaurant
	err := s.tx.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, func(repos domain.Repositories) error {
		var err error
		restaurants, err = repos.Restaurants.List(ctx)
		return err
	})
	return restaurants, err
}
