package domain

import "context"

// CustomerRepository описывает хранилище клиентов.
type CustomerRepository interface {
	// Get возвращает клиента или ErrCustomerNotFound.
	Get(ctx context.Context, id int64) (Customer, error)
	// GetByEmail ищет клиента по нормализованному e-mail.
	GetByEmail(ctx context.Context, email string) (Customer, error)
	// Save создаёт клиента при ID == 0, иначе перезаписывает. Дубликат e-mail — ErrCustomerEmailTaken.
	Save(ctx context.Context, customer Customer) (Customer, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, activeOnly bool) ([]Customer, error)
}

// RestaurantRepository описывает хранилище ресторанов.
type RestaurantRepository interface {
	// Get возвращает ресторан или ErrRestaurantNotFound.
	Get(ctx context.Context, id int64) (Restaurant, error)
	Save(ctx context.Context, restaurant Restaurant) (Restaurant, error)
	List(ctx context.Context) ([]Restaurant, error)
}

// ProductRepository описывает хранилище каталога.
type ProductRepository interface {
	// Get возвращает товар или ErrProductNotFound.
	Get(ctx context.Context, id int64) (Product, error)
	// Save создаёт товар при ID == 0 (назначая идентификатор), иначе перезаписывает.
	Save(ctx context.Context, product Product) (Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	// List возвращает все товары в порядке идентификаторов.
	List(ctx context.Context) ([]Product, error)
	ListByRestaurant(ctx context.Context, restaurantID int64) ([]Product, error)
	// ListByCategory сравнивает категорию без учёта регистра.
	ListByCategory(ctx context.Context, category string) ([]Product, error)
	ListAvailable(ctx context.Context) ([]Product, error)
	// SearchByName ищет подстроку в названии без учёта регистра.
	SearchByName(ctx context.Context, name string) ([]Product, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(ctx context.Context, id int64) (Order, error)
	// Save создаёт заказ вместе с позициями при ID == 0; иначе обновляет заголовок
	// с учётом optimistic locking. Позиции после создания не меняются.
	Save(ctx context.Context, order Order) (Order, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Order, error)
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(ctx context.Context, event TimelineEvent) error
	List(ctx context.Context, orderID int64) ([]TimelineEvent, error)
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// Repositories — набор хранилищ, привязанных к одной единице работы.
type Repositories struct {
	Customers   CustomerRepository
	Restaurants RestaurantRepository
	Products    ProductRepository
	Orders      OrderRepository
	Timeline    TimelineRepository
	Outbox      OutboxRepository
}

// TxOptions задаёт режим единицы работы.
type TxOptions struct {
	// ReadOnly запрещает запись.
	ReadOnly bool
	// Snapshot требует согласованного снимка для всех чтений внутри единицы работы.
	Snapshot bool
}

// Transactor выполняет fn в одной транзакции: все записи фиксируются вместе или не фиксируются вовсе.
type Transactor interface {
	WithinTx(ctx context.Context, opts TxOptions, fn func(repos Repositories) error) error
}
