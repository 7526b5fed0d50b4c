package domain

import "time"

// Restaurant — владелец позиций меню. Ядру нужен только его идентификатор.
type Restaurant struct {
	ID        int64
	Name      string
	Category  string
	CreatedAt time.Time
}
