package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

// dbtx — общее подмножество *sql.DB и *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// session связывает репозитории с транзакцией (или с пулом в режиме autocommit).
type session struct {
	q        dbtx
	readOnly bool
}

func (s *session) writable() error {
	if s.readOnly {
		return domain.ErrReadOnlyTx
	}
	return nil
}

func repositories(s *session) domain.Repositories {
	return domain.Repositories{
		Customers:   &customerRepository{s: s},
		Restaurants: &restaurantRepository{s: s},
		Products:    &productRepository{s: s},
		Orders:      &orderRepository{s: s},
		Timeline:    &timelineRepository{s: s},
		Outbox:      &outboxRepository{s: s},
	}
}

// scanner — общее подмножество *sql.Row и *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// escapeLike экранирует спецсимволы LIKE, чтобы подстрока искалась буквально.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func exists(ctx context.Context, q dbtx, query string, id int64) (bool, error) {
	var found bool
	if err := q.QueryRowContext(ctx, query, id).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}
