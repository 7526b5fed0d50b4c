package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
	"github.com/vladislavdragonenkov/deliverytech/internal/service/customer"
)

func (h *handler) createCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.services.Customers.Create(c.Request.Context(), customer.Draft{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromCustomer(created))
}

// listCustomers поддерживает ?active=true и ?email=. Поиск по e-mail
// возвращает список из одного клиента или пустой список.
func (h *handler) listCustomers(c *gin.Context) {
	if email := c.Query("email"); email != "" {
		found, err := h.services.Customers.FindByEmail(c.Request.Context(), email)
		switch {
		case domain.IsNotFound(err):
			c.JSON(http.StatusOK, []customerResponse{})
		case err != nil:
			h.writeError(c, err)
		default:
			c.JSON(http.StatusOK, []customerResponse{fromCustomer(found)})
		}
		return
	}

	list := h.services.Customers.List
	if c.Query("active") == "true" {
		list = h.services.Customers.ListActive
	}

	customers, err := list(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	result := make([]customerResponse, 0, len(customers))
	for _, cu := range customers {
		result = append(result, fromCustomer(cu))
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) getCustomer(c *gin.Context) {
	h.customerByID(c, h.services.Customers.FindByID)
}

func (h *handler) updateCustomer(c *gin.Context) {
	var req customerPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.customerByID(c, func(ctx context.Context, id int64) (domain.Customer, error) {
		return h.services.Customers.Update(ctx, id, domain.CustomerPatch{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		})
	})
}

func (h *handler) deactivateCustomer(c *gin.Context) {
	h.customerByID(c, h.services.Customers.Deactivate)
}

func (h *handler) activateCustomer(c *gin.Context) {
	h.customerByID(c, h.services.Customers.Activate)
}

func (h *handler) customerByID(c *gin.Context, fn func(ctx context.Context, id int64) (domain.Customer, error)) {
	id, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	result, err := fn(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromCustomer(result))
}
