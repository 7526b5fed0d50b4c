package domain

import (
	"strings"
	"time"
)

// Customer — клиент сервиса доставки. E-mail уникален среди активных и неактивных клиентов.
type Customer struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomerPatch — частичное обновление профиля клиента.
type CustomerPatch struct {
	Name  *string
	Email *string
	Phone *string
}

// Apply применяет присутствующие поля патча.
func (p CustomerPatch) Apply(customer *Customer) {
	if p.Name != nil {
		customer.Name = *p.Name
	}
	if p.Email != nil {
		customer.Email = NormalizeEmail(*p.Email)
	}
	if p.Phone != nil {
		customer.Phone = *p.Phone
	}
}

// NormalizeEmail приводит e-mail к каноническому виду для проверки уникальности.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
