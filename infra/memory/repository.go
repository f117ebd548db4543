// Package memory holds process-local implementations of the storage ports, used for
// local development (STORAGE_DRIVER=memory) and tests.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"storefront/app"
	"storefront/domain"
	"sync"
	"time"
)

type Repository struct {
	mu         sync.RWMutex
	items      map[int64]domain.Item
	categories map[int64]domain.Category
	orders     map[int64]domain.Order
	itemSeq    int64
	catSeq     int64
	orderSeq   int64
}

func NewRepository() *Repository {
	return &Repository{
		items:      make(map[int64]domain.Item),
		categories: make(map[int64]domain.Category),
		orders:     make(map[int64]domain.Order),
	}
}

func (r *Repository) Close() error {
	return nil
}

func (r *Repository) GetItems(_ context.Context, filter app.ItemFilter, limit, offset int) ([]domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.filterItems(filter)
	if offset < 0 || offset >= len(items) {
		return []domain.Item{}, nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func (r *Repository) GetItemsByIDs(_ context.Context, ids []int64) ([]domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			items = append(items, item)
		}
	}
	sortItems(items)
	return items, nil
}

func (r *Repository) CountItems(_ context.Context, filter app.ItemFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.filterItems(filter)), nil
}

func (r *Repository) GetItem(_ context.Context, id int64) (domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return domain.Item{}, sql.ErrNoRows
	}
	return item, nil
}

func (r *Repository) ItemTitleTaken(_ context.Context, title string, excludeID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.titleTaken(title, excludeID), nil
}

func (r *Repository) CreateItem(_ context.Context, item domain.Item) (domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.titleTaken(item.Title, 0) {
		return domain.Item{}, fmt.Errorf("create item %q: %w", item.Title, app.ErrDuplicate)
	}

	r.itemSeq++
	now := time.Now().UTC()
	item.ID = r.itemSeq
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = item
	return item, nil
}

func (r *Repository) UpdateItem(_ context.Context, item domain.Item) (domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok {
		return domain.Item{}, sql.ErrNoRows
	}
	if r.titleTaken(item.Title, item.ID) {
		return domain.Item{}, fmt.Errorf("update item %d: %w", item.ID, app.ErrDuplicate)
	}

	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now().UTC()
	r.items[item.ID] = item
	return item, nil
}

func (r *Repository) UpdateItemStatus(_ context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Status = status
	item.UpdatedAt = time.Now().UTC()
	r.items[id] = item
	return nil
}

func (r *Repository) DeleteItem(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, order := range r.orders {
		for _, line := range order.Items {
			if line.ItemID == id {
				return fmt.Errorf("delete item %d: %w", id, app.ErrInUse)
			}
		}
	}

	delete(r.items, id)
	return nil
}

func (r *Repository) GetCategories(_ context.Context, limit, offset int) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := r.sortedCategories()
	if offset < 0 || offset >= len(categories) {
		return []domain.Category{}, nil
	}
	categories = categories[offset:]
	if limit > 0 && limit < len(categories) {
		categories = categories[:limit]
	}
	return categories, nil
}

func (r *Repository) GetCategoriesWithItems(_ context.Context, status string) ([]domain.CategoryWithItems, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := r.sortedCategories()
	result := make([]domain.CategoryWithItems, 0, len(categories))
	for _, category := range categories {
		id := category.ID
		result = append(result, domain.CategoryWithItems{
			Category: category,
			Items:    r.filterItems(app.ItemFilter{Status: status, CategoryID: &id}),
		})
	}
	return result, nil
}

func (r *Repository) CountCategories(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.categories), nil
}

func (r *Repository) GetCategoryByID(_ context.Context, id int64) (domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[id]
	if !ok {
		return domain.Category{}, sql.ErrNoRows
	}
	return category, nil
}

func (r *Repository) CreateCategory(_ context.Context, category domain.Category) (domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.categories {
		if existing.Name == category.Name {
			return domain.Category{}, fmt.Errorf("create category %q: %w", category.Name, app.ErrDuplicate)
		}
	}

	r.catSeq++
	now := time.Now().UTC()
	category.ID = r.catSeq
	category.CreatedAt = now
	category.UpdatedAt = now
	r.categories[category.ID] = category
	return category, nil
}

func (r *Repository) CreateOrder(_ context.Context, order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range order.Items {
		if _, ok := r.items[line.ItemID]; !ok {
			return domain.Order{}, fmt.Errorf("create order: item %d: %w", line.ItemID, sql.ErrNoRows)
		}
	}

	r.orderSeq++
	now := time.Now().UTC()
	order.ID = r.orderSeq
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	for idx := range order.Items {
		order.Items[idx].OrderID = order.ID
	}
	r.orders[order.ID] = order
	return order, nil
}

func (r *Repository) GetOrder(_ context.Context, id int64) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, sql.ErrNoRows
	}
	return order, nil
}

func (r *Repository) GetItemOrders(_ context.Context, itemID int64) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]domain.Order, 0)
	for _, order := range r.orders {
		for _, line := range order.Items {
			if line.ItemID == itemID {
				orders = append(orders, order)
				break
			}
		}
	}
	sort.Slice(orders, func(a, b int) bool { return orders[a].ID < orders[b].ID })
	return orders, nil
}

func (r *Repository) filterItems(filter app.ItemFilter) []domain.Item {
	items := make([]domain.Item, 0, len(r.items))
	for _, item := range r.items {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.CategoryID != nil && (item.CategoryID == nil || *item.CategoryID != *filter.CategoryID) {
			continue
		}
		items = append(items, item)
	}
	sortItems(items)
	return items
}

func (r *Repository) titleTaken(title string, excludeID int64) bool {
	for _, item := range r.items {
		if item.Title == title && item.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *Repository) sortedCategories() []domain.Category {
	categories := make([]domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(a, b int) bool { return categories[a].ID < categories[b].ID })
	return categories
}

func sortItems(items []domain.Item) {
	sort.Slice(items, func(a, b int) bool { return items[a].ID < items[b].ID })
}
