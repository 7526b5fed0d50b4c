package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

func (h *handler) createOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.services.Orders.Create(c.Request.Context(), req.draft())
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.log(c).WithField("order_id", created.ID).Debug("order accepted")
	c.JSON(http.StatusCreated, fromOrder(created))
}

// listOrders поддерживает ?customer_id=.
func (h *handler) listOrders(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		orders []domain.Order
		err    error
	)
	if raw := c.Query("customer_id"); raw != "" {
		customerID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			badRequest(c, errInvalidID)
			return
		}
		orders, err = h.services.Orders.ListByCustomer(ctx, customerID)
	} else {
		orders, err = h.services.Orders.List(ctx)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	result := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, fromOrder(o))
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) getOrder(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	order, found, err := h.services.Orders.FindByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !found {
		notFound(c, domain.ErrOrderNotFound)
		return
	}
	c.JSON(http.StatusOK, fromOrder(order))
}

func (h *handler) updateOrderStatus(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.services.Orders.UpdateStatus(c.Request.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrder(updated))
}

// cancelOrder принимает пустое тело: причина отмены необязательна.
func (h *handler) cancelOrder(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	canceled, err := h.services.Orders.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrder(canceled))
}

func (h *handler) orderTotal(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	total, err := h.services.Orders.ComputeTotal(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, totalResponse{OrderID: id, Total: total})
}

func (h *handler) orderTimeline(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	events, err := h.services.Orders.Timeline(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	result := make([]timelineEventResponse, 0, len(events))
	for _, e := range events {
		result = append(result, timelineEventResponse{Type: e.Type, Status: e.Status, Reason: e.Reason, Occurred: e.Occurred})
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) deleteOrder(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.services.Orders.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	h.log(c).WithField("order_id", id).Info("order deleted via api")
	c.Status(http.StatusNoContent)
}
