package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

func orderEvent(orderID, eventType string) domain.OutboxMessage {
	return domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   orderID,
		EventType:     eventType,
		Payload:       []byte(`{"order_id":` + orderID + `}`),
	}
}

func TestOutboxRepository_RelayLifecycle(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := store.Outbox()
	ctx := context.Background()

	created, err := repo.Enqueue(ctx, orderEvent("1", domain.TimelineOrderCreated))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	fixed := orderEvent("1", domain.TimelineOrderStatusChanged)
	fixed.ID = "fixed-id"
	changed, err := repo.Enqueue(ctx, fixed)
	require.NoError(t, err)
	require.Equal(t, "fixed-id", changed.ID)

	_, err = repo.Enqueue(ctx, fixed)
	require.ErrorIs(t, err, domain.ErrConflict)

	pending, err := repo.PullPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, created.ID, pending[0].ID, "enqueue order is preserved")
	require.Equal(t, "fixed-id", pending[1].ID)
	require.JSONEq(t, `{"order_id":1}`, string(pending[0].Payload))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.PendingCount)
	require.False(t, stats.OldestPendingAt.IsZero())

	require.NoError(t, repo.MarkSent(ctx, created.ID))
	require.NoError(t, repo.MarkFailed(ctx, changed.ID))

	pending, err = repo.PullPending(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)

	stats, err = repo.Stats(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.PendingCount)
	require.True(t, stats.OldestPendingAt.IsZero())
}

func TestOutboxRepository_UnknownMessage(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := store.Outbox()
	ctx := context.Background()

	require.ErrorIs(t, repo.MarkSent(ctx, "missing"), domain.ErrOutboxPublish)
	require.ErrorIs(t, repo.MarkFailed(ctx, "missing"), domain.ErrOutboxPublish)
}

func TestOutboxRepository_EnqueueFollowsTransaction(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx := context.Background()
	boom := errors.New("rollback")

	err := store.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		if _, err := repos.Outbox.Enqueue(ctx, orderEvent("5", domain.TimelineOrderCreated)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	stats, err := store.Outbox().Stats(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.PendingCount, "rolled back event must not reach the relay")

	err = store.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, func(repos domain.Repositories) error {
		_, err := repos.Outbox.Enqueue(ctx, orderEvent("6", domain.TimelineOrderCreated))
		return err
	})
	require.ErrorIs(t, err, domain.ErrReadOnlyTx)
}
