package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

// sequences выдаёт идентификаторы, монотонно растущие в пределах типа сущности.
type sequences struct {
	customer   int64
	restaurant int64
	product    int64
	order      int64
	orderItem  int64
	outbox     int64
}

// state — полное содержимое хранилища.
type state struct {
	customers   map[int64]domain.Customer
	restaurants map[int64]domain.Restaurant
	products    map[int64]domain.Product
	orders      map[int64]domain.Order
	timeline    map[int64][]domain.TimelineEvent
	outbox      map[string]outboxRecord
	seq         sequences
}

func newState() *state {
	return &state{
		customers:   make(map[int64]domain.Customer),
		restaurants: make(map[int64]domain.Restaurant),
		products:    make(map[int64]domain.Product),
		orders:      make(map[int64]domain.Order),
		timeline:    make(map[int64][]domain.TimelineEvent),
		outbox:      make(map[string]outboxRecord),
	}
}

// tx связывает репозитории с состоянием единицы работы. Изменяющая единица
// пишет прямо в state и копит журнал отката, так что стоимость записи
// зависит только от числа изменённых ключей.
type tx struct {
	st       *state
	readOnly bool
	seq      sequences
	undo     []func()
}

func (t *tx) writable() error {
	if t.readOnly {
		return domain.ErrReadOnlyTx
	}
	return nil
}

// rollback отменяет записи в обратном порядке и возвращает счётчики.
func (t *tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.st.seq = t.seq
}

// put записывает value по key и запоминает прежнее значение для отката.
func put[K comparable, V any](t *tx, m map[K]V, key K, value V) {
	prev, existed := m[key]
	t.undo = append(t.undo, func() {
		if existed {
			m[key] = prev
			return
		}
		delete(m, key)
	})
	m[key] = value
}

// remove удаляет key и запоминает значение для отката.
func remove[K comparable, V any](t *tx, m map[K]V, key K) {
	prev, ok := m[key]
	if !ok {
		return
	}
	t.undo = append(t.undo, func() { m[key] = prev })
	delete(m, key)
}

// Store — in-memory хранилище для локальной разработки и тестов.
// Изменяющие единицы работы сериализуются; чтения идут параллельно.
type Store struct {
	mu   sync.RWMutex
	st   *state
	idem *idempotencyRepository
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{st: newState(), idem: newIdempotencyRepository()}
}

// WithinTx выполняет fn атомарно: при ошибке изменения отбрасываются.
func (s *Store) WithinTx(ctx context.Context, opts domain.TxOptions, fn func(repos domain.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if opts.ReadOnly {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return fn(repositories(&tx{st: s.st, readOnly: true}))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{st: s.st, seq: s.st.seq}
	committed := false
	defer func() {
		if !committed {
			t.rollback()
		}
	}()

	if err := fn(repositories(t)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Outbox возвращает outbox-репозиторий, где каждый вызов — отдельная единица работы.
// Используется outbox worker'ом вне сервисных транзакций.
func (s *Store) Outbox() domain.OutboxRepository {
	return &autoCommitOutbox{store: s}
}

// Idempotency возвращает хранилище ключей идемпотентности REST API.
func (s *Store) Idempotency() domain.IdempotencyRepository {
	return s.idem
}

// Ping всегда успешен: хранилище живёт в памяти процесса.
func (s *Store) Ping(context.Context) error {
	return nil
}

func repositories(t *tx) domain.Repositories {
	return domain.Repositories{
		Customers:   &customerRepository{tx: t},
		Restaurants: &restaurantRepository{tx: t},
		Products:    &productRepository{tx: t},
		Orders:      &orderRepository{tx: t},
		Timeline:    &timelineRepository{tx: t},
		Outbox:      &outboxRepository{tx: t},
	}
}

var _ domain.Transactor = (*Store)(nil)
