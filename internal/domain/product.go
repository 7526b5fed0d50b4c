package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product — позиция меню, принадлежащая ресторану.
type Product struct {
	ID           int64
	RestaurantID int64
	Name         string
	Description  string
	Category     string
	Price        decimal.Decimal
	// Available=false скрывает товар из новых заказов; существующие заказы не меняются.
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductDraft — входные данные для создания товара.
// Nil-поля означают «не передано»: Price=nil не проходит валидацию, Available=nil даёт true.
type ProductDraft struct {
	RestaurantID int64
	Name         string
	Description  string
	Category     string
	Price        *decimal.Decimal
	Available    *bool
}

// ProductPatch описывает частичное обновление товара: nil-поле оставляет значение без изменений.
// Ресторан после создания не меняется, поэтому в патче его нет.
type ProductPatch struct {
	Name        *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	Available   *bool
}

// Apply применяет присутствующие поля патча к товару.
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Available != nil {
		product.Available = *p.Available
	}
}
