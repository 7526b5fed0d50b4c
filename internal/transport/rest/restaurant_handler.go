package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handler) createRestaurant(c *gin.Context) {
	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	restaurant, err := h.services.Restaurants.Create(c.Request.Context(), req.Name, req.Category)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromRestaurant(restaurant))
}

func (h *handler) listRestaurants(c *gin.Context) {
	restaurants, err := h.services.Restaurants.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	result := make([]restaurantResponse, 0, len(restaurants))
	for _, r := range restaurants {
		result = append(result, fromRestaurant(r))
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) getRestaurant(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	restaurant, err := h.services.Restaurants.FindByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromRestaurant(restaurant))
}

// listRestaurantProducts отвечает 404 для неизвестного ресторана, а не пустым списком.
func (h *handler) listRestaurantProducts(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.services.Restaurants.FindByID(ctx, id); err != nil {
		h.writeError(c, err)
		return
	}
	products, err := h.services.Products.ListByRestaurant(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromProducts(products))
}
