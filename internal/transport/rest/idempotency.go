package rest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
	"github.com/vladislavdragonenkov/deliverytech/internal/metrics"
)

const (
	headerIdempotencyKey     = "Idempotency-Key"
	headerIdempotentReplayed = "Idempotent-Replayed"
	maxIdempotencyKeyLength  = 255
	idempotencyFinishTimeout = 5 * time.Second

	// DefaultIdempotencyKeyTTL — срок хранения ответа, если TTL не задан.
	DefaultIdempotencyKeyTTL = 24 * time.Hour
)

var errIdempotencyKeyTooLong = fmt.Errorf("%w: idempotency key must not exceed %d characters",
	domain.ErrInvalidArgument, maxIdempotencyKeyLength)

// Idempotency подключает повтор ответов по заголовку Idempotency-Key.
// Нулевое значение отключает механизм.
type Idempotency struct {
	Keys    domain.IdempotencyRepository
	TTL     time.Duration
	Metrics *metrics.IdempotencyMetrics
}

// bodyRecorder копирует тело ответа, чтобы сохранить его для повтора.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// idempotent выполняет создающий запрос не больше одного раза на ключ.
// Запрос без заголовка проходит как обычно. Ответ 2xx и 4xx сохраняется
// и возвращается на повтор с тем же телом; после 5xx ключ освобождается.
func (h *handler) idempotent() gin.HandlerFunc {
	cfg := h.idempotency
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultIdempotencyKeyTTL
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(headerIdempotencyKey))
		if cfg.Keys == nil || key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			badRequest(c, errIdempotencyKeyTooLong)
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			badRequest(c, err)
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		ctx := c.Request.Context()
		logger := h.log(c).WithField("idempotency_key", key)

		record, err := cfg.Keys.Reserve(ctx, key, requestHash(c.Request.Method, c.Request.URL.Path, body), time.Now().UTC().Add(ttl))
		if err != nil {
			h.rejectDuplicate(c, cfg.Metrics, record, err)
			c.Abort()
			return
		}

		defer func() {
			if p := recover(); p != nil {
				releaseKey(cfg.Keys, key, logger)
				panic(p)
			}
		}()

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		status := recorder.Status()
		if status >= http.StatusInternalServerError {
			releaseKey(cfg.Keys, key, logger)
			cfg.Metrics.RecordRequest(metrics.IdempotencyOutcomeReleased)
			return
		}

		outcome := domain.IdempotencyStatusDone
		if status >= http.StatusBadRequest {
			outcome = domain.IdempotencyStatusFailed
		}
		finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), idempotencyFinishTimeout)
		defer cancel()
		if err := cfg.Keys.Complete(finishCtx, key, outcome, status, recorder.body.Bytes()); err != nil {
			logger.WithError(err).Warn("failed to store idempotent response")
		}
		cfg.Metrics.RecordRequest(metrics.IdempotencyOutcomeExecuted)
	}
}

// rejectDuplicate отвечает на запрос, ключ которого уже занят.
func (h *handler) rejectDuplicate(c *gin.Context, m *metrics.IdempotencyMetrics, record domain.IdempotencyRecord, err error) {
	switch {
	case errors.Is(err, domain.ErrIdempotencyKeyExists) && record.Replayable():
		m.RecordRequest(metrics.IdempotencyOutcomeReplayed)
		c.Header(headerIdempotentReplayed, "true")
		c.Data(record.HTTPStatus, "application/json; charset=utf-8", record.ResponseBody)
	case errors.Is(err, domain.ErrIdempotencyKeyExists):
		m.RecordRequest(metrics.IdempotencyOutcomeInProgress)
		h.writeError(c, domain.ErrIdempotencyInProgress)
	case errors.Is(err, domain.ErrIdempotencyKeyReused):
		m.RecordRequest(metrics.IdempotencyOutcomeReused)
		h.writeError(c, err)
	default:
		h.writeError(c, err)
	}
}

func releaseKey(keys domain.IdempotencyRepository, key string, logger *log.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), idempotencyFinishTimeout)
	defer cancel()
	if err := keys.Release(ctx, key); err != nil {
		logger.WithError(err).Warn("failed to release idempotency key")
	}
}

// requestHash связывает ключ с конкретным запросом: метод, путь и тело.
func requestHash(method, path string, body []byte) string {
	sum := sha256.New()
	sum.Write([]byte(method))
	sum.Write([]byte{0})
	sum.Write([]byte(path))
	sum.Write([]byte{0})
	sum.Write(body)
	return hex.EncodeToString(sum.Sum(nil))
}
