package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
	outboxStatusFailed  = "failed"
)

// outboxRecord хранит сообщение и служебные поля для in-memory реализации.
type outboxRecord struct {
	msg        domain.OutboxMessage
	seq        int64
	status     string
	attemptCnt int
	updatedAt  time.Time
}

// outboxRepository — in-memory хранилище для transactional outbox.
type outboxRepository struct {
	tx *tx
}

// Enqueue сохраняет событие со статусом `pending` и возвращает его идентификатор.
func (r *outboxRepository) Enqueue(_ context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	if err := r.tx.writable(); err != nil {
		return domain.OutboxMessage{}, err
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	if _, exists := r.tx.st.outbox[msg.ID]; exists {
		return domain.OutboxMessage{}, fmt.Errorf("outbox message %s: %w", msg.ID, domain.ErrConflict)
	}
	r.tx.st.seq.outbox++
	put(r.tx, r.tx.st.outbox, msg.ID, outboxRecord{
		msg:       msg,
		seq:       r.tx.st.seq.outbox,
		status:    outboxStatusPending,
		updatedAt: now,
	})
	return msg, nil
}

// PullPending возвращает до limit сообщений со статусом `pending` в порядке постановки.
func (r *outboxRepository) PullPending(_ context.Context, limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	records := r.pending()
	if len(records) > limit {
		records = records[:limit]
	}

	result := make([]domain.OutboxMessage, 0, len(records))
	for _, rec := range records {
		result = append(result, rec.msg)
	}
	return result, nil
}

// Stats возвращает размер backlog и время самого старого pending-сообщения.
func (r *outboxRepository) Stats(context.Context) (domain.OutboxStats, error) {
	records := r.pending()
	stats := domain.OutboxStats{PendingCount: len(records)}
	if len(records) > 0 {
		stats.OldestPendingAt = records[0].msg.CreatedAt
	}
	return stats, nil
}

// MarkSent удаляет доставленное событие из outbox.
func (r *outboxRepository) MarkSent(_ context.Context, id string) error {
	return r.mark(id, outboxStatusSent)
}

// MarkFailed фиксирует ошибку публикации.
func (r *outboxRepository) MarkFailed(_ context.Context, id string) error {
	return r.mark(id, outboxStatusFailed)
}

func (r *outboxRepository) mark(id, status string) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	record, ok := r.tx.st.outbox[id]
	if !ok {
		return fmt.Errorf("outbox message %s: %w", id, domain.ErrOutboxPublish)
	}
	// Доставленные сообщения больше не нужны relay, храним только failed.
	if status == outboxStatusSent {
		remove(r.tx, r.tx.st.outbox, id)
		return nil
	}
	record.status = status
	record.attemptCnt++
	record.updatedAt = time.Now().UTC()
	put(r.tx, r.tx.st.outbox, id, record)
	return nil
}

func (r *outboxRepository) pending() []outboxRecord {
	result := make([]outboxRecord, 0)
	for _, rec := range r.tx.st.outbox {
		if rec.status == outboxStatusPending {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].seq < result[j].seq })
	return result
}

// autoCommitOutbox выполняет каждый вызов в собственной единице работы.
type autoCommitOutbox struct {
	store *Store
}

func (o *autoCommitOutbox) Enqueue(ctx context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	var saved domain.OutboxMessage
	err := o.store.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		var err error
		saved, err = repos.Outbox.Enqueue(ctx, msg)
		return err
	})
	return saved, err
}

func (o *autoCommitOutbox) PullPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	var msgs []domain.OutboxMessage
	err := o.store.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, func(repos domain.Repositories) error {
		var err error
		msgs, err = repos.Outbox.PullPending(ctx, limit)
		return err
	})
	return msgs, err
}

func (o *autoCommitOutbox) Stats(ctx context.Context) (domain.OutboxStats, error) {
	var stats domain.OutboxStats
	err := o.store.WithinTx(ctx, domain.TxOptions{ReadOnly: true}, func(repos domain.Repositories) error {
		var err error
		stats, err = repos.Outbox.Stats(ctx)
		return err
	})
	return stats, err
}

func (o *autoCommitOutbox) MarkSent(ctx context.Context, id string) error {
	return o.store.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		return repos.Outbox.MarkSent(ctx, id)
	})
}

func (o *autoCommitOutbox) MarkFailed(ctx context.Context, id string) error {
	return o.store.WithinTx(ctx, domain.TxOptions{}, func(repos domain.Repositories) error {
		return repos.Outbox.MarkFailed(ctx, id)
	})
}

var (
	_ domain.OutboxRepository = (*outboxRepository)(nil)
	_ domain.OutboxRepository = (*autoCommitOutbox)(nil)
)
