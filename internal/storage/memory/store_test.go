package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
	"github.com/vladislavdragonenkov/deliverytech/internal/storage/memory"
)

func TestStore_RollbackOnError(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		if _, err := repos.Restaurants.Save(ctx, domain.Restaurant{Name: "Cantina"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	inTx(t, store, func(repos domain.Repositories) error {
		restaurants, err := repos.Restaurants.List(ctx)
		if err != nil {
			return err
		}
		if len(restaurants) != 0 {
			t.Fatalf("expected rollback, got %d restaurants", len(restaurants))
		}
		return nil
	})
}

func TestStore_ReadOnlyRejectsWrites(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, func(repos domain.Repositories) error {
		_, err := repos.Products.Save(ctx, domain.Product{Name: "Pizza", Price: decimal.NewFromInt(1)})
		return err
	})
	if !errors.Is(err, domain.ErrReadOnlyTx) {
		t.Fatalf("expected ErrReadOnlyTx, got %v", err)
	}
}

func TestStore_CanceledContext(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.WithinTx(ctx, domain.TxOptions{}, func(domain.Repositories) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatal("fn must not run with canceled context")
	}
}

func TestProductRepository_Queries(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	inTx(t, store, func(repos domain.Repositories) error {
		products := []domain.Product{
			{RestaurantID: 1, Name: "Pizza Margherita", Category: "Pizza", Price: decimal.NewFromInt(30), Available: true},
			{RestaurantID: 1, Name: "Pizza Calabresa", Category: "pizza", Price: decimal.NewFromInt(32), Available: false},
			{RestaurantID: 2, Name: "Suco de Laranja", Category: "Bebidas", Price: decimal.NewFromInt(8), Available: true},
		}
		for _, p := range products {
			if _, err := repos.Products.Save(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})

	err := store.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, func(repos domain.Repositories) error {
		byRestaurant, _ := repos.Products.ListByRestaurant(ctx, 1)
		if len(byRestaurant) != 2 {
			t.Errorf("by restaurant: expected 2, got %d", len(byRestaurant))
		}
		byCategory, _ := repos.Products.ListByCategory(ctx, "PIZZA")
		if len(byCategory) != 2 {
			t.Errorf("by category: expected 2, got %d", len(byCategory))
		}
		byName, _ := repos.Products.SearchByName(ctx, "laran")
		if len(byName) != 1 || byName[0].Name != "Suco de Laranja" {
			t.Errorf("by name: unexpected result %+v", byName)
		}
		available, _ := repos.Products.ListAvailable(ctx)
		if len(available) != 2 {
			t.Errorf("available: expected 2, got %d", len(available))
		}
		all, _ := repos.Products.List(ctx)
		for i := 1; i < len(all); i++ {
			if all[i-1].ID >= all[i].ID {
				t.Errorf("list must be ordered by id")
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read tx failed: %v", err)
	}
}

func TestCustomerRepository_EmailUniqueAcrossInactive(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	inTx(t, store, func(repos domain.Repositories) error {
		_, err := repos.Customers.Save(ctx, domain.Customer{Name: "Ana", Email: "ana@example.com", Active: false})
		return err
	})

	err := store.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		_, err := repos.Customers.Save(ctx, domain.Customer{Name: "Ana B", Email: " ANA@example.com ", Active: true})
		return err
	})
	if !errors.Is(err, domain.ErrCustomerEmailTaken) {
		t.Fatalf("expected ErrCustomerEmailTaken, got %v", err)
	}
}
