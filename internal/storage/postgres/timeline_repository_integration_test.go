package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

func TestTimelineRepository_PostgresAppendAndList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx := context.Background()
	occurred := time.Now().UTC().Add(time.Minute).Round(time.Microsecond)

	withTx(t, store, func(repos domain.Repositories) error {
		// Нулевое время заполняется автоматически.
		if err := repos.Timeline.Append(ctx, domain.TimelineEvent{
			OrderID: 1,
			Type:    domain.TimelineOrderCreated,
			Status:  domain.OrderStatusCreated,
		}); err != nil {
			return err
		}
		return repos.Timeline.Append(ctx, domain.TimelineEvent{
			OrderID:  1,
			Type:     domain.TimelineOrderCanceled,
			Status:   domain.OrderStatusCanceled,
			Reason:   "sem entregador",
			Occurred: occurred,
		})
	})

	withTx(t, store, func(repos domain.Repositories) error {
		events, err := repos.Timeline.List(ctx, 1)
		if err != nil {
			return err
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].Occurred.IsZero() {
			t.Fatal("expected auto-filled occurred")
		}
		if events[1].Status != domain.OrderStatusCanceled || events[1].Reason != "sem entregador" {
			t.Fatalf("unexpected second event: %+v", events[1])
		}
		if !events[1].Occurred.Equal(occurred) {
			t.Fatalf("unexpected occurred: %s", events[1].Occurred)
		}
		return nil
	})
}
