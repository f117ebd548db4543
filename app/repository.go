package app

import (
	"context"
	"errors"
	"storefront/domain"
)

// ErrDuplicate is returned by repositories when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate record")

// ErrInUse is returned when a record cannot be removed because others still reference it.
var ErrInUse = errors.New("record in use")

type ItemFilter struct {
	Status     string
	CategoryID *int64
}

// Repository is the catalog and order store. GetItems with a non-positive limit returns every match.
// Lookups of missing records fail with sql.ErrNoRows.
type Repository interface {
	Close() error

	GetItems(ctx context.Context, filter ItemFilter, limit, offset int) ([]domain.Item, error)
	GetItemsByIDs(ctx context.Context, ids []int64) ([]domain.Item, error)
	CountItems(ctx context.Context, filter ItemFilter) (int, error)
	GetItem(ctx context.Context, id int64) (domain.Item, error)
	ItemTitleTaken(ctx context.Context, title string, excludeID int64) (bool, error)
	CreateItem(ctx context.Context, item domain.Item) (domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) (domain.Item, error)
	UpdateItemStatus(ctx context.Context, id int64, status string) error
	DeleteItem(ctx context.Context, id int64) error

	GetCategories(ctx context.Context, limit, offset int) ([]domain.Category, error)
	GetCategoriesWithItems(ctx context.Context, status string) ([]domain.CategoryWithItems, error)
	CountCategories(ctx context.Context) (int, error)
	GetCategoryByID(ctx context.Context, id int64) (domain.Category, error)
	CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error)

	CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	GetOrder(ctx context.Context, id int64) (domain.Order, error)
	GetItemOrders(ctx context.Context, itemID int64) ([]domain.Order, error)
}

// CartStore keeps guest carts between requests. AddItem and RemoveItem change one
// line atomically and return the cart as stored afterwards.
type CartStore interface {
	Get(ctx context.Context, id string) (*domain.Cart, error)
	AddItem(ctx context.Context, id string, itemID int64) (*domain.Cart, error)
	RemoveItem(ctx context.Context, id string, itemID int64) (*domain.Cart, error)
	Delete(ctx context.Context, id string) error
}

// ImageStore persists uploaded item images.
type ImageStore interface {
	Upload(key string, data []byte) error
	Delete(key string) error
	URL(key string) string
}
