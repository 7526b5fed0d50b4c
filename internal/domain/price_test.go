package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/deliverytech/internal/domain"
)

func TestValidatePrice(t *testing.T) {
	price := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	cases := []struct {
		name    string
		price   *decimal.Decimal
		wantErr bool
	}{
		{name: "absent", price: nil, wantErr: true},
		{name: "zero", price: price("0"), wantErr: true},
		{name: "zero with scale", price: price("0.00"), wantErr: true},
		{name: "negative", price: price("-0.01"), wantErr: true},
		{name: "one cent", price: price("0.01"), wantErr: false},
		{name: "regular", price: price("27.50"), wantErr: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := domain.ValidatePrice(tc.price)
			if tc.wantErr && !errors.Is(err, domain.ErrInvalidPrice) {
				t.Fatalf("expected ErrInvalidPrice, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}
