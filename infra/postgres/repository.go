package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"storefront/app"
	"storefront/domain"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

const itemColumns = `id, category_id, title, description, price, status, image_url, created_at, updated_at`

const orderItemColumns = `order_id, item_id, title, price, quantity`

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type PgRepository struct {
	db *sqlx.DB
}

func NewPgRepository(dsn string) *PgRepository {
	db := sqlx.MustConnect("postgres", dsn)

	db.SetMaxOpenConns(15)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &PgRepository{db: db}
}

// NewPgRepositoryFromDB wraps an already opened handle.
func NewPgRepositoryFromDB(db *sqlx.DB) *PgRepository {
	return &PgRepository{db: db}
}

func (r *PgRepository) Close() error {
	return r.db.Close()
}

// Migrate applies the bootstrap schema. Every statement is idempotent.
func (r *PgRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// GetPoolStats returns current connection pool statistics
func (r *PgRepository) GetPoolStats() sql.DBStats {
	return r.db.Stats()
}

func (r *PgRepository) GetItems(ctx context.Context, filter app.ItemFilter, limit, offset int) ([]domain.Item, error) {
	items := make([]domain.Item, 0)
	where, args := itemWhere(filter)
	query := `SELECT ` + itemColumns + ` FROM items` + where + ` ORDER BY id`

	if limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	return items, nil
}

func (r *PgRepository) GetItemsByIDs(ctx context.Context, ids []int64) ([]domain.Item, error) {
	items := make([]domain.Item, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	query, args, err := sqlx.In(`SELECT `+itemColumns+` FROM items WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("get items by ids: %w", err)
	}

	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get items by ids: %w", err)
	}

	return items, nil
}

func (r *PgRepository) CountItems(ctx context.Context, filter app.ItemFilter) (int, error) {
	var count int
	where, args := itemWhere(filter)

	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM items`+where, args...); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}

	return count, nil
}

func (r *PgRepository) GetItem(ctx context.Context, id int64) (domain.Item, error) {
	var i domain.Item
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	if err := r.db.GetContext(ctx, &i, query, id); err != nil {
		return i, fmt.Errorf("get item %d: %w", id, err)
	}

	return i, nil
}

func (r *PgRepository) ItemTitleTaken(ctx context.Context, title string, excludeID int64) (bool, error) {
	var taken bool
	query := `SELECT EXISTS (SELECT 1 FROM items WHERE title = $1 AND id <> $2)`

	if err := r.db.GetContext(ctx, &taken, query, title, excludeID); err != nil {
		return false, fmt.Errorf("check item title: %w", err)
	}

	return taken, nil
}

func (r *PgRepository) CreateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	query := `
		INSERT INTO items (
			category_id, title, description, price, status, image_url
		) VALUES (
			:category_id, :title, :description, :price, :status, :image_url
		) RETURNING ` + itemColumns

	created, err := r.namedItem(ctx, query, item)
	if err != nil {
		return created, fmt.Errorf("create item: %w", err)
	}

	return created, nil
}

func (r *PgRepository) UpdateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	query := `
		UPDATE items SET
			category_id = :category_id,
			title = :title,
			description = :description,
			price = :price,
			status = :status,
			image_url = :image_url,
			updated_at = NOW()
		WHERE id = :id
		RETURNING ` + itemColumns

	updated, err := r.namedItem(ctx, query, item)
	if err != nil {
		return updated, fmt.Errorf("update item %d: %w", item.ID, err)
	}

	return updated, nil
}

func (r *PgRepository) UpdateItemStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE items SET status = $1, updated_at = NOW() WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update item %d status: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item %d status: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("update item %d status: %w", id, sql.ErrNoRows)
	}

	return nil
}

func (r *PgRepository) DeleteItem(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete item %d: %w", id, mapError(err))
	}

	return nil
}

func (r *PgRepository) GetCategories(ctx context.Context, limit, offset int) ([]domain.Category, error) {
	categories := make([]domain.Category, 0)
	query := `SELECT id, name, created_at, updated_at FROM categories ORDER BY id LIMIT $1 OFFSET $2`

	if err := r.db.SelectContext(ctx, &categories, query, limit, offset); err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}

	return categories, nil
}

func (r *PgRepository) GetCategoriesWithItems(ctx context.Context, status string) ([]domain.CategoryWithItems, error) {
	categories := make([]domain.Category, 0)
	if err := r.db.SelectContext(ctx, &categories, `SELECT id, name, created_at, updated_at FROM categories ORDER BY id`); err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}

	items := make([]domain.Item, 0)
	query := `SELECT ` + itemColumns + ` FROM items WHERE category_id IS NOT NULL`
	args := []any{}
	if status != "" {
		query += ` AND status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("get category items: %w", err)
	}

	byCategory := make(map[int64][]domain.Item, len(categories))
	for _, item := range items {
		byCategory[*item.CategoryID] = append(byCategory[*item.CategoryID], item)
	}

	result := make([]domain.CategoryWithItems, 0, len(categories))
	for _, category := range categories {
		categoryItems := byCategory[category.ID]
		if categoryItems == nil {
			categoryItems = []domain.Item{}
		}
		result = append(result, domain.CategoryWithItems{Category: category, Items: categoryItems})
	}

	return result, nil
}

func (r *PgRepository) CountCategories(ctx context.Context) (int, error) {
	var count int

	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM categories`); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}

	return count, nil
}

func (r *PgRepository) GetCategoryByID(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	query := `SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`

	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		return c, fmt.Errorf("get category %d: %w", id, err)
	}

	return c, nil
}

func (r *PgRepository) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	var c domain.Category
	query := `INSERT INTO categories (name) VALUES ($1) RETURNING id, name, created_at, updated_at`

	if err := r.db.GetContext(ctx, &c, query, category.Name); err != nil {
		return c, fmt.Errorf("create category: %w", mapError(err))
	}

	return c, nil
}

func (r *PgRepository) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var created domain.Order
	err = tx.GetContext(ctx, &created,
		`INSERT INTO orders (user_id) VALUES ($1) RETURNING id, user_id, created_at, updated_at`,
		order.UserID,
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	created.Items = make([]domain.OrderItem, 0, len(order.Items))
	for _, line := range order.Items {
		line.OrderID = created.ID
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO order_items (`+orderItemColumns+`) VALUES (:order_id, :item_id, :title, :price, :quantity)`,
			line,
		)
		if err != nil {
			return domain.Order{}, fmt.Errorf("create order: item %d: %w", line.ItemID, mapError(err))
		}
		created.Items = append(created.Items, line)
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("create order: commit: %w", err)
	}

	return created, nil
}

func (r *PgRepository) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	var o domain.Order
	query := `SELECT id, user_id, created_at, updated_at FROM orders WHERE id = $1`

	if err := r.db.GetContext(ctx, &o, query, id); err != nil {
		return o, fmt.Errorf("get order %d: %w", id, err)
	}

	o.Items = make([]domain.OrderItem, 0)
	lines := `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY item_id`
	if err := r.db.SelectContext(ctx, &o.Items, lines, id); err != nil {
		return o, fmt.Errorf("get order %d items: %w", id, err)
	}

	return o, nil
}

func (r *PgRepository) GetItemOrders(ctx context.Context, itemID int64) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	query := `
		SELECT o.id, o.user_id, o.created_at, o.updated_at
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE oi.item_id = $1
		ORDER BY o.id`

	if err := r.db.SelectContext(ctx, &orders, query, itemID); err != nil {
		return nil, fmt.Errorf("get item %d orders: %w", itemID, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	linesQuery, args, err := sqlx.In(`SELECT `+orderItemColumns+` FROM order_items WHERE order_id IN (?) ORDER BY order_id, item_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("get item %d orders: %w", itemID, err)
	}

	lines := make([]domain.OrderItem, 0)
	if err := r.db.SelectContext(ctx, &lines, r.db.Rebind(linesQuery), args...); err != nil {
		return nil, fmt.Errorf("get item %d order lines: %w", itemID, err)
	}

	byOrder := make(map[int64][]domain.OrderItem, len(orders))
	for _, line := range lines {
		byOrder[line.OrderID] = append(byOrder[line.OrderID], line)
	}
	for idx := range orders {
		orders[idx].Items = byOrder[orders[idx].ID]
	}

	return orders, nil
}

func (r *PgRepository) namedItem(ctx context.Context, query string, item domain.Item) (domain.Item, error) {
	var i domain.Item

	rows, err := r.db.NamedQueryContext(ctx, query, item)
	if err != nil {
		return i, mapError(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return i, mapError(err)
		}
		return i, sql.ErrNoRows
	}

	if err := rows.StructScan(&i); err != nil {
		return i, err
	}

	return i, nil
}

func itemWhere(filter app.ItemFilter) (string, []any) {
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 2)

	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// mapError translates constraint violations into the app level sentinel errors.
func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case uniqueViolation:
		return fmt.Errorf("%s: %w", pqErr.Constraint, app.ErrDuplicate)
	case foreignKeyViolation:
		return fmt.Errorf("%s: %w", pqErr.Constraint, app.ErrInUse)
	default:
		return err
	}
}
