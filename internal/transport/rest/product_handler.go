package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

var errAvailableRequired = errors.New("available is required")

func (h *handler) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.services.Products.Create(c.Request.Context(), domain.ProductDraft{
		RestaurantID: req.RestaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price,
		Available:    req.Available,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromProduct(created))
}

// listProducts выбирает один фильтр по приоритету: restaurant_id, category, name, available.
func (h *handler) listProducts(c *gin.Context) {
	ctx := c.Request.Context()
	products := h.services.Products

	var (
		result []domain.Product
		err    error
	)
	switch {
	case c.Query("restaurant_id") != "":
		restaurantID, parseErr := strconv.ParseInt(c.Query("restaurant_id"), 10, 64)
		if parseErr != nil {
			badRequest(c, errInvalidID)
			return
		}
		result, err = products.ListByRestaurant(ctx, restaurantID)
	case c.Query("category") != "":
		result, err = products.ListByCategory(ctx, c.Query("category"))
	case c.Query("name") != "":
		result, err = products.SearchByName(ctx, c.Query("name"))
	case c.Query("available") == "true":
		result, err = products.ListAvailable(ctx)
	default:
		result, err = products.List(ctx)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromProducts(result))
}

func (h *handler) getProduct(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	product, found, err := h.services.Products.FindByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !found {
		notFound(c, domain.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, fromProduct(product))
}

func (h *handler) updateProduct(c *gin.Context) {
	var req productPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.productByID(c, func(ctx context.Context, id int64) (domain.Product, error) {
		return h.services.Products.Update(ctx, id, domain.ProductPatch{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Price:       req.Price,
			Available:   req.Available,
		})
	})
}

func (h *handler) setProductAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Available == nil {
		badRequest(c, errAvailableRequired)
		return
	}
	h.productByID(c, func(ctx context.Context, id int64) (domain.Product, error) {
		return h.services.Products.SetAvailability(ctx, id, *req.Available)
	})
}

func (h *handler) deactivateProduct(c *gin.Context) {
	h.productByID(c, h.services.Products.Deactivate)
}

func (h *handler) deleteProduct(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.services.Products.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) productByID(c *gin.Context, fn func(ctx context.Context, id int64) (domain.Product, error)) {
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
	c.JSON(http.StatusOK, fromProduct(result))
}
