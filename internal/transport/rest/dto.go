package rest

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

type restaurantRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type restaurantResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func fromRestaurant(r domain.Restaurant) restaurantResponse {
	return restaurantResponse{ID: r.ID, Name: r.Name, Category: r.Category, CreatedAt: r.CreatedAt}
}

type customerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type customerPatchRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type customerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func fromCustomer(c domain.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// productRequest принимает цену строкой или числом; decimal разбирает оба варианта без потерь.
type productRequest struct {
	RestaurantID int64            `json:"restaurant_id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Category     string           `json:"category"`
	Price        *decimal.Decimal `json:"price"`
	Available    *bool            `json:"available"`
}

type productPatchRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Available   *bool            `json:"available"`
}

type availabilityRequest struct {
	Available *bool `json:"available"`
}

type productResponse struct {
	ID           int64           `json:"id"`
	RestaurantID int64           `json:"restaurant_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Available    bool            `json:"available"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func fromProduct(p domain.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		RestaurantID: p.RestaurantID,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Price:        p.Price,
		Available:    p.Available,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func fromProducts(products []domain.Product) []productResponse {
	result := make([]productResponse, 0, len(products))
	for _, p := range products {
		result = append(result, fromProduct(p))
	}
	return result
}

type orderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type orderRequest struct {
	CustomerID int64              `json:"customer_id"`
	Items      []orderItemRequest `json:"items"`
}

func (r orderRequest) draft() domain.OrderDraft {
	items := make([]domain.OrderItemDraft, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.OrderItemDraft{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return domain.OrderDraft{CustomerID: r.CustomerID, Items: items}
}

type statusRequest struct {
	Status string `json:"status"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type orderItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type orderResponse struct {
	ID                 int64               `json:"id"`
	CustomerID         int64               `json:"customer_id"`
	Status             domain.OrderStatus  `json:"status"`
	Total              decimal.Decimal     `json:"total"`
	CancellationReason *string             `json:"cancellation_reason,omitempty"`
	Items              []orderItemResponse `json:"items"`
	Version            int64               `json:"version"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func fromOrder(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		})
	}
	return orderResponse{
		ID:                 o.ID,
		CustomerID:         o.CustomerID,
		Status:             o.Status,
		Total:              o.Total,
		CancellationReason: o.CancellationReason,
		Items:              items,
		Version:            o.Version,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

type totalResponse struct {
	OrderID int64           `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
}

type timelineEventResponse struct {
	Type     string             `json:"type"`
	Status   domain.OrderStatus `json:"status"`
	Reason   string             `json:"reason,omitempty"`
	Occurred time.Time          `json:"occurred"`
}

// pathID читает положительный идентификатор из параметра пути.
func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
