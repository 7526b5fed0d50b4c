// Package rest публикует сервисы доставки как REST API на gin.
package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
	"github.com/vladislavdragonenkov/deliverytech/internal/metrics"
	"github.com/vladislavdragonenkov/deliverytech/internal/service/customer"
)

// BasePath задаёт префикс всех маршрутов API.
const BasePath = "/api/v1"

// OrderService — операции над заказами, доступные через API.
type OrderService interface {
	Create(ctx context.Context, draft domain.OrderDraft) (domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error)
	Cancel(ctx context.Context, id int64, reason string) (domain.Order, error)
	FindByID(ctx context.Context, id int64) (domain.Order, bool, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
	ComputeTotal(ctx context.Context, id int64) (decimal.Decimal, error)
	Delete(ctx context.Context, id int64) error
	Timeline(ctx context.Context, id int64) ([]domain.TimelineEvent, error)
}

type ProductService interface {
	Create(ctx context.Context, draft domain.ProductDraft) (domain.Product, error)
	FindByID(ctx context.Context, id int64) (domain.Product, bool, error)
	List(ctx context.Context) ([]domain.Product, error)
	ListByRestaurant(ctx context.Context, restaurantID int64) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	SearchByName(ctx context.Context, name string) ([]domain.Product, error)
	ListAvailable(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (domain.Product, error)
	Deactivate(ctx context.Context, id int64) (domain.Product, error)
	SetAvailability(ctx context.Context, id int64, available bool) (domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type CustomerService interface {
	Create(ctx context.Context, draft customer.Draft) (domain.Customer, error)
	FindByID(ctx context.Context, id int64) (domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	ListActive(ctx context.Context) ([]domain.Customer, error)
	Update(ctx context.Context, id int64, patch domain.CustomerPatch) (domain.Customer, error)
	Deactivate(ctx context.Context, id int64) (domain.Customer, error)
	Activate(ctx context.Context, id int64) (domain.Customer, error)
}

type RestaurantService interface {
	Create(ctx context.Context, name, category string) (domain.Restaurant, error)
	FindByID(ctx context.Context, id int64) (domain.Restaurant, error)
	List(ctx context.Context) ([]domain.Restaurant, error)
}

// Services собирает зависимости роутера.
type Services struct {
	Orders      OrderService
	Products    ProductService
	Customers   CustomerService
	Restaurants RestaurantService
	// Idempotency включает Idempotency-Key для POST /orders и POST /products.
	Idempotency Idempotency
}

type handler struct {
	services    Services
	idempotency Idempotency
	logger      *log.Entry
}

// NewRouter собирает gin.Engine со всеми маршрутами и middleware.
// httpMetrics может быть nil.
func NewRouter(services Services, logger *log.Entry, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if logger == nil {
		logger = log.WithField("component", "http")
	}

	router := gin.New()
	router.Use(
		requestID(),
		accessLog(logger),
		observe(httpMetrics),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.WithField("panic", recovered).Error("recovered from panic")
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
				Code:    string(domain.KindInternal),
				Message: "internal error",
			})
		}),
	)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Code: string(domain.KindNotFound), Message: "route not found"})
	})

	h := &handler{services: services, idempotency: services.Idempotency, logger: logger}
	v1 := router.Group(BasePath)
	addRestaurantRoutes(v1, h)
	addCustomerRoutes(v1, h)
	addProductRoutes(v1, h)
	addOrderRoutes(v1, h)

	return router
}

func addRestaurantRoutes(rg *gin.RouterGroup, h *handler) {
	restaurants := rg.Group("/restaurants")
	{
		restaurants.POST("", h.createRestaurant)
		restaurants.GET("", h.listRestaurants)
		restaurants.GET("/:id", h.getRestaurant)
		restaurants.GET("/:id/products", h.listRestaurantProducts)
	}
}

func addCustomerRoutes(rg *gin.RouterGroup, h *handler) {
	customers := rg.Group("/customers")
	{
		customers.POST("", h.createCustomer)
		customers.GET("", h.listCustomers)
		customers.GET("/:id", h.getCustomer)
		customers.PATCH("/:id", h.updateCustomer)
		customers.POST("/:id/deactivate", h.deactivateCustomer)
		customers.POST("/:id/activate", h.activateCustomer)
	}
}

func addProductRoutes(rg *gin.RouterGroup, h *handler) {
	products := rg.Group("/products")
	{
		products.POST("", h.idempotent(), h.createProduct)
		products.GET("", h.listProducts)
		products.GET("/:id", h.getProduct)
		products.PATCH("/:id", h.updateProduct)
		products.PUT("/:id/availability", h.setProductAvailability)
		products.POST("/:id/deactivate", h.deactivateProduct)
		products.DELETE("/:id", h.deleteProduct)
	}
}

func addOrderRoutes(rg *gin.RouterGroup, h *handler) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.idempotent(), h.createOrder)
		orders.GET("", h.listOrders)
		orders.GET("/:id", h.getOrder)
		orders.PATCH("/:id/status", h.updateOrderStatus)
		orders.POST("/:id/cancel", h.cancelOrder)
		orders.GET("/:id/total", h.orderTotal)
		orders.GET("/:id/timeline", h.orderTimeline)
		orders.DELETE("/:id", h.deleteOrder)
	}
}
