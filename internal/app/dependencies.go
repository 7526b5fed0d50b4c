package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
	"github.com/vladislavdragonenkov/deliverytech/internal/metrics"
	"github.com/vladislavdragonenkov/deliverytech/internal/service/customer"
	"github.com/vladislavdragonenkov/deliverytech/internal/service/order"
	"github.com/vladislavdragonenkov/deliverytech/internal/service/product"
	"github.com/vladislavdragonenkov/deliverytech/internal/service/restaurant"
	"github.com/vladislavdragonenkov/deliverytech/internal/storage/memory"
	"github.com/vladislavdragonenkov/deliverytech/internal/storage/postgres"
	"github.com/vladislavdragonenkov/deliverytech/internal/transport/rest"
)

// runtimeDependencies держит хранилище, выбранное конфигурацией.
type runtimeDependencies struct {
	tx          domain.Transactor
	outbox      domain.OutboxRepository
	idempotency domain.IdempotencyRepository
	pingFn      func(ctx context.Context) error
	closeFn     func() error
}

func (d *runtimeDependencies) Ping(ctx context.Context) error {
	return d.pingFn(ctx)
}

func (d *runtimeDependencies) close() error {
	if d == nil || d.closeFn == nil {
		return nil
	}
	return d.closeFn()
}

// initRuntimeDependencies открывает хранилище. Для postgres при необходимости применяет миграции.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.StorageDriver)) {
	case StorageDriverMemory:
		store := memory.NewStore()
		logger.Info("using in-memory storage")
		return &runtimeDependencies{
			tx:          store,
			outbox:      store.Outbox(),
			idempotency: store.Idempotency(),
			pingFn:      store.Ping,
		}, nil
	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			version, applied, err := store.MigrationStatus(ctx)
			if err == nil {
				logger.WithFields(log.Fields{"version": version, "applied": applied}).Info("postgres schema is up to date")
			}
		}
		logger.Info("using postgres storage")
		return &runtimeDependencies{
			tx:          store,
			outbox:      store.Outbox(),
			idempotency: store.Idempotency(),
			pingFn:      store.Ping,
			closeFn:     store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// newServices собирает сервисы поверх единицы работы и регистрирует их метрики.
func newServices(deps *runtimeDependencies, cfg Config, logger *log.Entry, registerer prometheus.Registerer) rest.Services {
	tx := deps.tx
	return rest.Services{
		Orders: order.NewService(tx, logger.WithField("component", "order-service"),
			order.WithMetrics(metrics.NewOrderMetricsWithRegisterer(registerer))),
		Products: product.NewService(tx, logger.WithField("component", "product-service"),
			product.WithMetrics(metrics.NewCatalogMetricsWithRegisterer(registerer))),
		Customers:   customer.NewService(tx, logger.WithField("component", "customer-service")),
		Restaurants: restaurant.NewService(tx, logger.WithField("component", "restaurant-service")),
		Idempotency: rest.Idempotency{
			Keys:    deps.idempotency,
			TTL:     cfg.IdempotencyTTL,
			Metrics: metrics.NewIdempotencyMetricsWithRegisterer(registerer),
		},
	}
}
