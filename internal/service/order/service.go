// Package order реализует создание заказов и их жизненный цикл.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
	"github.com/vladislavdragonenkov/deliverytech/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/deliverytech/internal/metrics"
)

const aggregateType = "order"

// Option настраивает Service.
type Option func(*Service)

// WithMetrics подключает метрики заказов.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service управляет заказами. Не хранит состояния между вызовами,
// каждая операция выполняется в собственной единице работы.
type Service struct {
	tx      domain.Transactor
	logger  *log.Entry
	metrics *metrics.OrderMetrics
}

// NewService создаёт сервис заказов.
func NewService(tx domain.Transactor, logger *log.Entry, options ...Option) *Service {
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}
	s := &Service{
		tx:     tx,
		logger: logger,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Create проверяет корзину, фиксирует цены товаров и сохраняет заказ в статусе CRIADO.
// Чтение товаров и запись заказа выполняются в одном согласованном снимке.
func (s *Service) Create(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	if err := validateDraft(draft); err != nil {
		s.reject(draft, err)
		return domain.Order{}, err
	}

	var created domain.Order
	err := s.tx.WithinTx(ctx, domain.TxOptions{Snapshot: true}, func(repos domain.Repositories) error {
		items := make([]domain.OrderItem, 0, len(draft.Items))
		for _, line := range draft.Items {
			product, err := repos.Products.Get(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, domain.ErrProductNotFound) {
					return fmt.Errorf("product %d: %w", line.ProductID, domain.ErrReferenceNotFound)
				}
				return err
			}
			if !product.Available {
				return fmt.Errorf("%w: %s", domain.ErrProductUnavailable, product.Name)
			}
			items = append(items, domain.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   product.Price,
			})
		}

		saved, err := repos.Orders.Save(ctx, domain.Order{
			CustomerID: draft.CustomerID,
			Items:      items,
			Total:      domain.ItemsTotal(items),
			Status:     domain.OrderStatusCreated,
		})
		if err != nil {
			return err
		}
		created = saved

		return s.record(ctx, repos, saved, domain.TimelineOrderCreated, "")
	})
	if err != nil {
		s.reject(draft, err)
		return domain.Order{}, err
	}

	s.metrics.RecordCreated(created.Total)
	s.logger.WithFields(log.Fields{
		"order_id":    created.ID,
		"customer_id": created.CustomerID,
		"items":       len(created.Items),
		"total":       created.Total.String(),
	}).Info("order created")

	return created, nil
}

// UpdateStatus переводит заказ в новый статус по таблице переходов.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("%w: %q", domain.ErrStatusInvalid, status)
	}

	var (
		updated domain.Order
		from    domain.OrderStatus
	)
	err := s.tx.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		order, err := repos.Orders.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := order.Status.CheckTransition(status); err != nil {
			return fmt.Errorf("order %d %s -> %s: %w", id, order.Status, status, err)
		}

		from = order.Status
		order.Status = status
		saved, err := repos.Orders.Save(ctx, order)
		if err != nil {
			return err
		}
		updated = saved

		return s.record(ctx, repos, saved, domain.TimelineOrderStatusChanged, "")
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.metrics.RecordTransition(from, status)
	s.logger.WithFields(log.Fields{
		"order_id": id,
		"from":     from,
		"to":       status,
	}).Info("order status changed")

	return updated, nil
}

// Cancel отменяет заказ с указанием причины. Доставленный заказ отменить нельзя;
// повторная отмена перезаписывает причину.
func (s *Service) Cancel(ctx context.Context, id int64, reason string) (domain.Order, error) {
	var (
		canceled domain.Order
		from     domain.OrderStatus
	)
	err := s.tx.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		order, err := repos.Orders.Get(ctx, id)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderStatusCanceled {
			if err := order.Status.CheckTransition(domain.OrderStatusCanceled); err != nil {
				return fmt.Errorf("cancel order %d in status %s: %w", id, order.Status, err)
			}
		}

		from = order.Status
		order.Status = domain.OrderStatusCanceled
		order.CancellationReason = &reason
		saved, err := repos.Orders.Save(ctx, order)
		if err != nil {
			return err
		}
		canceled = saved

		return s.record(ctx, repos, saved, domain.TimelineOrderCanceled, reason)
	})
	if err != nil {
		return domain.Order{}, err
	}

	if from != domain.OrderStatusCanceled {
		s.metrics.RecordTransition(from, domain.OrderStatusCanceled)
	}
	s.logger.WithFields(log.Fields{
		"order_id": id,
		"from":     from,
		"reason":   reason,
	}).Info("order canceled")

	return canceled, nil
}

// FindByID возвращает заказ; found=false, если его нет.
func (s *Service) FindByID(ctx context.Context, id int64) (order domain.Order, found bool, err error) {
	err = s.tx.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, func(repos domain.Repositories) error {
		var getErr error
		order, getErr = repos.Orders.Get(ctx, id)
		return getErr
	})
	if errors.Is(err, domain.ErrOrderNotFound) {
		return domain.Order{}, false, nil
	}
	if err != nil {
		return domain.Order{}, false, err
	}
	return order, true, nil
}

// List возвращает все заказы.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.tx.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, func(repos domain.Repositories) error {
		var err error
		orders, err = repos.Orders.List(ctx)
		return err
	})
	return orders, err
}

// ListByCustomer возвращает заказы клиента, новые первыми.
func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.tx.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, func(repos domain.Repositories) error {
		var err error
		orders, err = repos.Orders.ListByCustomer(ctx, customerID)
		return err
	})
	return orders, err
}

// ComputeTotal возвращает сохранённую сумму заказа. Сумма не пересчитывается:
// она отражает цены на момент создания.
func (s *Service) ComputeTotal(ctx context.Context, id int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.tx.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, func(repos domain.Repositories) error {
		order, err := repos.Orders.Get(ctx, id)
		if err != nil {
			return err
		}
		total = order.Total
		return nil
	})
	return total, err
}

// Delete удаляет заказ вместе с позициями.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		order, err := repos.Orders.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.Orders.Delete(ctx, id); err != nil {
			return err
		}
		return s.record(ctx, repos, order, domain.TimelineOrderDeleted, "")
	})
	if err != nil {
		return err
	}

	s.logger.WithField("order_id", id).Info("order deleted")
	return nil
}

// Timeline возвращает историю заказа в хронологическом порядке.
// История удалённого заказа остаётся доступной.
func (s *Service) Timeline(ctx context.Context, id int64) ([]domain.TimelineEvent, error) {
	var events []domain.TimelineEvent
	err := s.tx.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, func(repos domain.Repositories) error {
		var err error
		events, err = repos.Timeline.List(ctx, id)
		if err != nil {
			return err
		}
		if len(events) > 0 {
			return nil
		}
		found, err := repos.Orders.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrOrderNotFound
		}
		return nil
	})
	return events, err
}

// record добавляет событие в timeline и ставит его в outbox в той же единице работы.
func (s *Service) record(ctx context.Context, repos domain.Repositories, order domain.Order, eventType, reason string) error {
	now := time.Now().UTC()
	if err := repos.Timeline.Append(ctx, domain.TimelineEvent{
		OrderID:  order.ID,
		Type:     eventType,
		Status:   order.Status,
		Reason:   reason,
		Occurred: now,
	}); err != nil {
		return fmt.Errorf("append timeline event: %w", err)
	}

	brokerType, ok := kafka.EventTypeFor(eventType)
	if !ok {
		return fmt.Errorf("unknown order event type %q", eventType)
	}
	event := kafka.NewOrderEvent(brokerType, order)
	event.Timestamp = now
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	if _, err := repos.Outbox.Enqueue(ctx, domain.OutboxMessage{
		AggregateType: aggregateType,
		AggregateID:   strconv.FormatInt(order.ID, 10),
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}); err != nil {
		return fmt.Errorf("enqueue order event: %w", err)
	}
	return nil
}

func (s *Service) reject(draft domain.OrderDraft, err error) {
	kind := domain.KindOf(err)
	s.metrics.RecordRejected(kind)
	s.logger.WithError(err).WithFields(log.Fields{
		"customer_id": draft.CustomerID,
		"items":       len(draft.Items),
		"kind":        kind,
	}).Warn("order rejected")
}

func validateDraft(draft domain.OrderDraft) error {
	if len(draft.Items) == 0 {
		return domain.ErrEmptyOrder
	}
	if draft.CustomerID <= 0 {
		return domain.ErrCustomerRequired
	}
	for i, line := range draft.Items {
		if line.Quantity <= 0 {
			return fmt.Errorf("item %d (product %d): %w", i, line.ProductID, domain.ErrItemQtyInvalid)
		}
	}
	return nil
}
