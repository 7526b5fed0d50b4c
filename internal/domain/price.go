package domain

import "github.com/shopspring/decimal"

// ValidatePrice отклоняет отсутствующую, нулевую и отрицательную цену.
func ValidatePrice(price *decimal.Decimal) error {
	if price == nil || !price.IsPositive() {
		return ErrInvalidPrice
	}
	return nil
}
