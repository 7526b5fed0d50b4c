package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
	"github.com/vladislavdragonenkov/deliverytech/internal/storage/memory"
)

func newOrder(customerID int64) domain.Order {
	return domain.Order{
		CustomerID: customerID,
		Status:     domain.OrderStatusCreated,
		Total:      decimal.RequireFromString("20.00"),
		Items: []domain.OrderItem{
			{ProductID: 1, ProductName: "Pizza", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		},
	}
}

// inTx выполняет fn в изменяющей единице работы и падает при ошибке.
func inTx(t *testing.T, store *memory.Store, fn func(repos domain.Repositories) error) {
	t.Helper()
	if err := store.WithinTx(context.Background(), domain.TxOptions{}, fn); err != nil {
		t.Fatalf("tx failed: %v", err)
	}
}

func TestOrderRepository_SaveGet(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var created domain.Order
	inTx(t, store, func(repos domain.Repositories) error {
		var err error
		created, err = repos.Orders.Save(ctx, newOrder(1))
		return err
	})

	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if created.Items[0].ID == 0 {
		t.Fatal("expected assigned item id")
	}

	inTx(t, store, func(repos domain.Repositories) error {
		stored, err := repos.Orders.Get(ctx, created.ID)
		if err != nil {
			return err
		}
		if stored.ID != created.ID || !stored.Total.Equal(created.Total) {
			t.Fatalf("unexpected stored order: %+v", stored)
		}
		return nil
	})
}

func TestOrderRepository_ListByCustomer(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	inTx(t, store, func(repos domain.Repositories) error {
		for _, customerID := range []int64{1, 1, 2} {
			if _, err := repos.Orders.Save(ctx, newOrder(customerID)); err != nil {
				return err
			}
		}
		return nil
	})

	inTx(t, store, func(repos domain.Repositories) error {
		orders, err := repos.Orders.ListByCustomer(ctx, 1)
		if err != nil {
			return err
		}
		if len(orders) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(orders))
		}
		if orders[0].ID < orders[1].ID {
			t.Fatalf("expected newest first, got %d before %d", orders[0].ID, orders[1].ID)
		}
		all, err := repos.Orders.List(ctx)
		if err != nil {
			return err
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 orders, got %d", len(all))
		}
		return nil
	})
}

func TestOrderRepository_SaveIncrementsVersionAndKeepsItems(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var created domain.Order
	inTx(t, store, func(repos domain.Repositories) error {
		var err error
		created, err = repos.Orders.Save(ctx, newOrder(1))
		return err
	})

	inTx(t, store, func(repos domain.Repositories) error {
		update := created
		update.Status = domain.OrderStatusPreparing
		update.Items = nil
		saved, err := repos.Orders.Save(ctx, update)
		if err != nil {
			return err
		}
		if saved.Version != created.Version+1 {
			t.Fatalf("expected version increment, got %d", saved.Version)
		}
		if len(saved.Items) != 1 {
			t.Fatalf("items must survive header update, got %d", len(saved.Items))
		}
		return nil
	})
}

func TestOrderRepository_SaveVersionConflict(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var created domain.Order
	inTx(t, store, func(repos domain.Repositories) error {
		var err error
		created, err = repos.Orders.Save(ctx, newOrder(1))
		return err
	})

	err := store.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		stale := created
		stale.Version = 42
		_, err := repos.Orders.Save(ctx, stale)
		return err
	})
	if !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestOrderRepository_Delete(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var created domain.Order
	inTx(t, store, func(repos domain.Repositories) error {
		var err error
		created, err = repos.Orders.Save(ctx, newOrder(1))
		return err
	})

	inTx(t, store, func(repos domain.Repositories) error {
		return repos.Orders.Delete(ctx, created.ID)
	})

	err := store.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		return repos.Orders.Delete(ctx, created.ID)
	})
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
