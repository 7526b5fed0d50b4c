package product_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
	"github.com/vladislavdragonenkov/deliverytech/internal/metrics"
	"github.com/vladislavdragonenkov/deliverytech/internal/service/product"
	"github.com/vladislavdragonenkov/deliverytech/internal/storage/memory"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func boolPtr(b bool) *bool { return &b }

func newService(t *testing.T) (*product.Service, int64) {
	t.Helper()

	logger, _ := test.NewNullLogger()
	store := memory.NewStore()
	svc := product.NewService(store, logger.WithField("component", "test"),
		product.WithMetrics(metrics.NewCatalogMetricsWithRegisterer(prometheus.NewRegistry())))

	var restaurantID int64
	ctx := context.Background()
	err := store.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		restaurant, err := repos.Restaurants.Save(ctx, domain.Restaurant{Name: "Bella Napoli", Category: "Italiana"})
		restaurantID = restaurant.ID
		return err
	})
	require.NoError(t, err)

	return svc, restaurantID
}

func TestCreate_RequiresRestaurant(t *testing.T) {
	svc, restaurantID := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.ProductDraft{RestaurantID: 999, Name: "Pizza", Price: price("5.00")})
	require.ErrorIs(t, err, domain.ErrReferenceNotFound)
	require.Equal(t, domain.KindReferenceNotFound, domain.KindOf(err))

	_, err = svc.Create(ctx, domain.ProductDraft{RestaurantID: restaurantID, Name: "Pizza", Price: price("0")})
	require.ErrorIs(t, err, domain.ErrInvalidPrice)

	created, err := svc.Create(ctx, domain.ProductDraft{RestaurantID: restaurantID, Name: "Pizza", Price: price("5.00")})
	require.NoError(t, err)
	require.True(t, created.Available)
	require.NotZero(t, created.ID)
}

func TestCreate_ValidationOrder(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	// Цена проверяется раньше ресторана.
	_, err := svc.Create(ctx, domain.ProductDraft{RestaurantID: 999, Name: "Pizza"})
	require.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(ctx, domain.ProductDraft{Name: "Pizza", Price: price("1.00")})
	require.ErrorIs(t, err, domain.ErrRestaurantRequired)
	require.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))
}

func TestCreate_ExplicitUnavailable(t *testing.T) {
	svc, restaurantID := newService(t)

	created, err := svc.Create(context.Background(), domain.ProductDraft{
		RestaurantID: restaurantID, Name: "Calzone", Price: price("12.00"), Available: boolPtr(false),
	})
	require.NoError(t, err)
	require.False(t, created.Available)
}

func TestCreateThenFindByID(t *testing.T) {
	svc, restaurantID := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.ProductDraft{
		RestaurantID: restaurantID, Name: "Pizza", Description: "Molho e queijo", Category: "Pizza", Price: price("35.90"),
	})
	require.NoError(t, err)

	found, ok, err := svc.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, created, found)

	_, ok, err = svc.FindByID(ctx, 999)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpdate_AppliesOnlyPresentFields(t *testing.T) {
	svc, restaurantID := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.ProductDraft{
		RestaurantID: restaurantID, Name: "Pizza", Category: "Pizza", Price: price("35.90"),
	})
	require.NoError(t, err)

	name := "Pizza Grande"
	updated, err := svc.Update(ctx, created.ID, domain.ProductPatch{Name: &name, Price: price("45.00")})
	require.NoError(t, err)
	require.Equal(t, "Pizza Grande", updated.Name)
	require.Equal(t, "Pizza", updated.Category)
	require.True(t, updated.Price.Equal(decimal.RequireFromString("45")))
	require.Equal(t, restaurantID, updated.RestaurantID)

	_, err = svc.Update(ctx, created.ID, domain.ProductPatch{Price: price("-1")})
	require.ErrorIs(t, err, domain.ErrInvalidPrice)

	stored, _, err := svc.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, stored.Price.Equal(decimal.RequireFromString("45")), "rejected patch must not persist")

	_, err = svc.Update(ctx, 999, domain.ProductPatch{Name: &name})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDeactivate_Idempotent(t *testing.T) {
	svc, restaurantID := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.ProductDraft{RestaurantID: restaurantID, Name: "Pizza", Price: price("10")})
	require.NoError(t, err)

	first, err := svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	second, err := svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)

	require.False(t, first.Available)
	require.False(t, second.Available)
	require.Equal(t, first.Name, second.Name)

	_, err = svc.Deactivate(ctx, 999)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestSetAvailability_Idempotent(t *testing.T) {
	svc, restaurantID := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.ProductDraft{RestaurantID: restaurantID, Name: "Pizza", Price: price("10")})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		updated, err := svc.SetAvailability(ctx, created.ID, false)
		require.NoError(t, err)
		require.False(t, updated.Available)
	}

	available, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	require.Empty(t, available)
}

func TestSetAvailability_UnchangedFlagSkipsWrite(t *testing.T) {
	logger, hook := test.NewNullLogger()
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	svc := product.NewService(store, logger.WithField("component", "test"),
		product.WithMetrics(metrics.NewCatalogMetricsWithRegisterer(reg)))
	ctx := context.Background()

	var restaurantID int64
	require.NoError(t, store.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		restaurant, err := repos.Restaurants.Save(ctx, domain.Restaurant{Name: "Sakura", Category: "Japonesa"})
		restaurantID = restaurant.ID
		return err
	}))

	created, err := svc.Create(ctx, domain.ProductDraft{RestaurantID: restaurantID, Name: "Ramen", Price: price("30")})
	require.NoError(t, err)

	first, err := svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	hook.Reset()

	second, err := svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, second.Available)
	require.True(t, first.UpdatedAt.Equal(second.UpdatedAt), "repeated call must not touch updated_at")
	require.Empty(t, hook.AllEntries())

	restored, err := svc.SetAvailability(ctx, created.ID, true)
	require.NoError(t, err)
	require.True(t, restored.Available)
	require.Len(t, hook.AllEntries(), 1)
}

func TestDelete(t *testing.T) {
	svc, restaurantID := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.ProductDraft{RestaurantID: restaurantID, Name: "Pizza", Price: price("10")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, created.ID), domain.ErrProductNotFound)
	require.Equal(t, domain.KindNotFound, domain.KindOf(svc.Delete(ctx, created.ID)))
}

func TestQueries(t *testing.T) {
	svc, restaurantID := newService(t)
	ctx := context.Background()

	for _, d := range []domain.ProductDraft{
		{RestaurantID: restaurantID, Name: "Pizza Margherita", Category: "Pizza", Price: price("35.90")},
		{RestaurantID: restaurantID, Name: "Pizza Calabresa", Category: "PIZZA", Price: price("38.00"), Available: boolPtr(false)},
		{RestaurantID: restaurantID, Name: "Suco de Laranja", Category: "Bebidas", Price: price("8.00")},
	} {
		_, err := svc.Create(ctx, d)
		require.NoError(t, err)
	}

	byCategory, err := svc.ListByCategory(ctx, "pizza")
	require.NoError(t, err)
	require.Len(t, byCategory, 2)

	byName, err := svc.SearchByName(ctx, "CALA")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	require.Equal(t, "Pizza Calabresa", byName[0].Name)

	byRestaurant, err := svc.ListByRestaurant(ctx, restaurantID)
	require.NoError(t, err)
	require.Len(t, byRestaurant, 3)

	none, err := svc.ListByRestaurant(ctx, 999)
	require.NoError(t, err)
	require.Empty(t, none)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}
