package memory

import (
	"context"
	"sort"
	"time"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

// timelineRepository хранит события в памяти (для разработки/тестов).
type timelineRepository struct {
	tx *tx
}

// Append добавляет событие, сохраняя хронологический порядок.
func (r *timelineRepository) Append(_ context.Context, event domain.TimelineEvent) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}

	current := r.tx.st.timeline[event.OrderID]
	events := make([]domain.TimelineEvent, len(current), len(current)+1)
	copy(events, current)
	events = append(events, event)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Occurred.Before(events[j].Occurred)
	})

	put(r.tx, r.tx.st.timeline, event.OrderID, events)
	return nil
}

// List возвращает события заказа в хронологическом порядке.
func (r *timelineRepository) List(_ context.Context, orderID int64) ([]domain.TimelineEvent, error) {
	events := r.tx.st.timeline[orderID]
	result := make([]domain.TimelineEvent, len(events))
	copy(result, events)
	return result, nil
}

var _ domain.TimelineRepository = (*timelineRepository)(nil)
