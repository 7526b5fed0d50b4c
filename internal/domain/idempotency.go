package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// IdempotencyStatus описывает жизненный цикл ключа идемпотентности.
type IdempotencyStatus string

const (
	// IdempotencyStatusProcessing — запрос принят и ещё выполняется.
	IdempotencyStatusProcessing IdempotencyStatus = "processing"
	// IdempotencyStatusDone — запрос выполнен, ответ сохранён для повтора.
	IdempotencyStatusDone IdempotencyStatus = "done"
	// IdempotencyStatusFailed — запрос отклонён с ошибкой клиента, ответ сохранён.
	IdempotencyStatusFailed IdempotencyStatus = "failed"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s IdempotencyStatus) Valid() bool {
	switch s {
	case IdempotencyStatusProcessing, IdempotencyStatusDone, IdempotencyStatusFailed:
		return true
	default:
		return false
	}
}

// IdempotencyRecord хранит результат запроса, выполненного с Idempotency-Key.
type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	Status       IdempotencyStatus
	HTTPStatus   int
	ResponseBody []byte
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Replayable сообщает, что ответ сохранён и его можно вернуть повторно.
func (r IdempotencyRecord) Replayable() bool {
	return r.Status != IdempotencyStatusProcessing && r.HTTPStatus > 0
}

var (
	ErrIdempotencyKeyRequired = fmt.Errorf("%w: idempotency key is required", ErrInvalidArgument)
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	// ErrIdempotencyKeyExists — ключ уже занят тем же запросом; запись возвращается вместе с ошибкой.
	ErrIdempotencyKeyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyKeyReused — ключ занят запросом с другим телом.
	ErrIdempotencyKeyReused = fmt.Errorf("idempotency key is already used with a different request: %w", ErrConflict)
	// ErrIdempotencyInProgress — запрос с тем же ключом ещё выполняется.
	ErrIdempotencyInProgress = fmt.Errorf("request with the same idempotency key is still processing: %w", ErrConflict)
)

// IdempotencyRepository хранит ключи идемпотентности вне единицы работы:
// резервирование видно конкурирующим запросам сразу.
type IdempotencyRepository interface {
	// Reserve занимает key со статусом processing. Если живая запись уже есть,
	// возвращает её вместе с ErrIdempotencyKeyExists или ErrIdempotencyKeyReused.
	// Просроченная запись перезаписывается.
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) (IdempotencyRecord, error)
	Get(ctx context.Context, key string) (IdempotencyRecord, error)
	// Complete сохраняет ответ и переводит ключ в status.
	Complete(ctx context.Context, key string, status IdempotencyStatus, httpStatus int, body []byte) error
	// Release удаляет ключ, чтобы клиент мог повторить запрос.
	Release(ctx context.Context, key string) error
	// DeleteExpired удаляет не больше limit записей с expires_at <= before.
	DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error)
}
