package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

func sampleOrder(customerID int64) domain.Order {
	return domain.Order{
		CustomerID: customerID,
		Status:     domain.OrderStatusCreated,
		Total:      decimal.RequireFromString("79.70"),
		Items: []domain.OrderItem{
			{ProductID: 1, ProductName: "Pizza Margherita", Quantity: 2, UnitPrice: decimal.RequireFromString("35.90")},
			{ProductID: 2, ProductName: "Refrigerante", Quantity: 1, UnitPrice: decimal.RequireFromString("7.90")},
		},
	}
}

func TestOrderRepository_PostgresCreateGetListAndSave(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx := context.Background()

	var order1, order2 domain.Order
	withTx(t, store, func(repos domain.Repositories) error {
		var err error
		if order1, err = repos.Orders.Save(ctx, sampleOrder(1)); err != nil {
			return err
		}
		order2, err = repos.Orders.Save(ctx, sampleOrder(1))
		return err
	})

	withTx(t, store, func(repos domain.Repositories) error {
		got, err := repos.Orders.Get(ctx, order1.ID)
		if err != nil {
			return err
		}
		if got.CustomerID != 1 || got.Status != domain.OrderStatusCreated || !got.Total.Equal(order1.Total) {
			t.Fatalf("unexpected order payload: %+v", got)
		}
		if len(got.Items) != 2 || got.Items[0].ProductName != "Pizza Margherita" {
			t.Fatalf("unexpected items: %+v", got.Items)
		}

		listed, err := repos.Orders.ListByCustomer(ctx, 1)
		if err != nil {
			return err
		}
		if len(listed) != 2 || listed[0].ID != order2.ID {
			t.Fatalf("expected newest first, got %+v", listed)
		}
		return nil
	})

	withTx(t, store, func(repos domain.Repositories) error {
		reason := "cliente desistiu"
		update := order1
		update.Status = domain.OrderStatusCanceled
		update.CancellationReason = &reason
		saved, err := repos.Orders.Save(ctx, update)
		if err != nil {
			return err
		}
		if saved.Version != 1 || saved.CancellationReason == nil || *saved.CancellationReason != reason {
			t.Fatalf("unexpected saved order: %+v", saved)
		}
		return nil
	})

	err := store.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		_, err := repos.Orders.Save(ctx, order1)
		return err
	})
	if !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestOrderRepository_PostgresDeleteAndNotFound(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx := context.Background()

	var order domain.Order
	withTx(t, store, func(repos domain.Repositories) error {
		var err error
		order, err = repos.Orders.Save(ctx, sampleOrder(7))
		return err
	})

	withTx(t, store, func(repos domain.Repositories) error {
		return repos.Orders.Delete(ctx, order.ID)
	})

	err := store.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, func(repos domain.Repositories) error {
		_, err := repos.Orders.Get(ctx, order.ID)
		return err
	})
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	err = store.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		missing := sampleOrder(7)
		missing.ID = 424242
		_, err := repos.Orders.Save(ctx, missing)
		return err
	})
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound on update, got %v", err)
	}
}
