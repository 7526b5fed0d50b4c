package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

var errInvalidID = errors.New("id must be a positive integer")

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var kindStatus = map[domain.Kind]int{
	domain.KindNotFound:           http.StatusNotFound,
	domain.KindReferenceNotFound:  http.StatusUnprocessableEntity,
	domain.KindInvalidPrice:       http.StatusBadRequest,
	domain.KindEmptyOrder:         http.StatusBadRequest,
	domain.KindInvalidArgument:    http.StatusBadRequest,
	domain.KindProductUnavailable: http.StatusConflict,
	domain.KindTerminalState:      http.StatusConflict,
	domain.KindInvalidTransition:  http.StatusConflict,
	domain.KindConflict:           http.StatusConflict,
}

// statusFor возвращает HTTP-статус для вида ошибки.
func statusFor(kind domain.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError отвечает {"code","message"}. Текст внутренних ошибок наружу не уходит.
func (h *handler) writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	message := err.Error()
	if kind == domain.KindInternal {
		h.logger.WithError(err).WithField("request_id", c.GetString(ctxRequestID)).Error("request failed")
		message = "internal error"
	}
	c.JSON(statusFor(kind), errorResponse{Code: string(kind), Message: message})
}

// badRequest отвечает 400 на некорректное тело или параметры.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{
		Code:    string(domain.KindInvalidArgument),
		Message: err.Error(),
	})
}

func notFound(c *gin.Context, err error) {
	c.JSON(http.StatusNotFound, errorResponse{
		Code:    string(domain.KindNotFound),
		Message: err.Error(),
	})
}

// log возвращает запись с идентификатором текущего запроса.
func (h *handler) log(c *gin.Context) *log.Entry {
	return h.logger.WithField("request_id", c.GetString(ctxRequestID))
}
