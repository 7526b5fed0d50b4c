package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

const defaultIdempotencyTTL = 24 * time.Hour

// idempotencyRepository работает в режиме autocommit: резервирование
// должно быть видно конкурирующим запросам до завершения бизнес-транзакции.
type idempotencyRepository struct {
	db *sql.DB
}

// Idempotency возвращает хранилище ключей идемпотентности REST API.
func (s *Store) Idempotency() domain.IdempotencyRepository {
	return &idempotencyRepository{db: s.db}
}

// Reserve вставляет ключ или перезаписывает просроченный. Ноль затронутых
// строк означает, что живой ключ уже существует.
func (r *idempotencyRepository) Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}

	now := time.Now().UTC()
	if expiresAt.IsZero() {
		expiresAt = now.Add(defaultIdempotencyTTL)
	}

	const q = `
		INSERT INTO idempotency_keys (key, request_hash, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (key) DO UPDATE
		SET request_hash = EXCLUDED.request_hash,
		    status = EXCLUDED.status,
		    http_status = NULL,
		    response_body = NULL,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at,
		    updated_at = EXCLUDED.updated_at
		WHERE idempotency_keys.expires_at <= EXCLUDED.created_at`
	res, err := r.db.ExecContext(ctx, q, key, requestHash, string(domain.IdempotencyStatusProcessing), expiresAt, now)
	if err != nil {
		return domain.IdempotencyRecord{}, fmt.Errorf("reserve idempotency key: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.IdempotencyRecord{}, fmt.Errorf("reserve idempotency key: %w", err)
	}

	if affected == 0 {
		existing, err := r.Get(ctx, key)
		if err != nil {
			return domain.IdempotencyRecord{}, err
		}
		if existing.RequestHash != requestHash {
			return existing, domain.ErrIdempotencyKeyReused
		}
		return existing, domain.ErrIdempotencyKeyExists
	}

	return domain.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Status:      domain.IdempotencyStatusProcessing,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (r *idempotencyRepository) Get(ctx context.Context, key string) (domain.IdempotencyRecord, error) {
	var (
		record     domain.IdempotencyRecord
		status     string
		httpStatus sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT key, request_hash, status, http_status, response_body, expires_at, created_at, updated_at
		FROM idempotency_keys
		WHERE key = $1`, strings.TrimSpace(key),
	).Scan(
		&record.Key, &record.RequestHash, &status, &httpStatus, &record.ResponseBody,
		&record.ExpiresAt, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyNotFound
		}
		return domain.IdempotencyRecord{}, fmt.Errorf("get idempotency key: %w", err)
	}

	record.Status = domain.IdempotencyStatus(status)
	if !record.Status.Valid() {
		return domain.IdempotencyRecord{}, fmt.Errorf("invalid idempotency status %q for key %s", status, record.Key)
	}
	if httpStatus.Valid {
		record.HTTPStatus = int(httpStatus.Int64)
	}
	return record, nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, key string, status domain.IdempotencyStatus, httpStatus int, body []byte) error {
	if !status.Valid() || status == domain.IdempotencyStatusProcessing {
		return domain.ErrInvalidArgument
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE idempotency_keys
		SET status = $2, http_status = $3, response_body = $4, updated_at = NOW()
		WHERE key = $1`,
		strings.TrimSpace(key), string(status), httpStatus, body,
	)
	if err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return requireAffected(res, domain.ErrIdempotencyKeyNotFound)
}

func (r *idempotencyRepository) Release(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM idempotency_keys WHERE key = $1`, strings.TrimSpace(key))
	if err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return requireAffected(res, domain.ErrIdempotencyKeyNotFound)
}

// DeleteExpired удаляет сначала самые старые записи. limit <= 0 снимает ограничение.
func (r *idempotencyRepository) DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	var (
		res sql.Result
		err error
	)
	if limit > 0 {
		res, err = r.db.ExecContext(ctx, `
			DELETE FROM idempotency_keys
			WHERE key IN (
				SELECT key FROM idempotency_keys
				WHERE expires_at <= $1
				ORDER BY expires_at
				LIMIT $2
			)`, before, limit)
	} else {
		res, err = r.db.ExecContext(ctx, `DELETE FROM idempotency_keys WHERE expires_at <= $1`, before)
	}
	if err != nil {
		return 0, fmt.Errorf("delete expired idempotency keys: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired idempotency keys: %w", err)
	}
	return int(affected), nil
}

func requireAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

var _ domain.IdempotencyRepository = (*idempotencyRepository)(nil)
