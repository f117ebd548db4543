package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"storefront/app"
	"storefront/domain"
	"storefront/infra/memory"
	"storefront/pkg/httperror"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireHTTPError(t *testing.T, err error, status int, code string) *httperror.Error {
	t.Helper()

	var httpErr *httperror.Error
	require.True(t, errors.As(err, &httpErr), "expected httperror, got %v", err)
	assert.Equal(t, status, httpErr.Status)
	assert.Equal(t, code, httpErr.Code)
	return httpErr
}

func seedItems(t *testing.T, repo *memory.Repository, titles ...string) []domain.Item {
	t.Helper()

	items := make([]domain.Item, 0, len(titles))
	for _, title := range titles {
		item, err := repo.CreateItem(context.Background(), domain.NewItem(title, title+" description", 2000))
		require.NoError(t, err)
		items = append(items, item)
	}
	return items
}

func TestCreateItemPriceMustBeWholeNumber(t *testing.T) {
	handler := app.NewCreateItemHandler(memory.NewRepository(), nil)

	for _, price := range []json.Number{"werwsd", "10.5", "1e3"} {
		_, err := handler.Handle(context.Background(), &app.CreateItemRequest{
			Title:       "Muffin",
			Description: "Blueberry",
			Price:       price,
		})

		httpErr := requireHTTPError(t, err, http.StatusBadRequest, "item.create.validation_failed")
		assert.Equal(t, map[string]string{"price": "is not a number"}, httpErr.Details, string(price))
	}
}

func TestCreateItemCollectsEveryFailure(t *testing.T) {
	handler := app.NewCreateItemHandler(memory.NewRepository(), nil)
	empty := ""

	_, err := handler.Handle(context.Background(), &app.CreateItemRequest{Status: &empty})

	httpErr := requireHTTPError(t, err, http.StatusBadRequest, "item.create.validation_failed")
	fields := httpErr.Details.(map[string]string)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "description")
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "status")
}

func TestGetItemsPagination(t *testing.T) {
	repo := memory.NewRepository()
	seedItems(t, repo, "a", "b", "c")
	handler := app.NewGetItemsHandler(repo)

	res, err := handler.Handle(context.Background(), &app.GetItemsRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 3, res.TotalItems)
	assert.Equal(t, 2, res.TotalPages)

	_, err = handler.Handle(context.Background(), &app.GetItemsRequest{Status: "sold"})
	requireHTTPError(t, err, http.StatusBadRequest, "item.index.validation_failed")
}

func TestListPastTheLastPageIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	seedItems(t, repo, "a", "b", "c")
	_, err := repo.CreateCategory(ctx, domain.Category{Name: "Snacks"})
	require.NoError(t, err)

	items, err := app.NewGetItemsHandler(repo).Handle(ctx, &app.GetItemsRequest{Page: 100000000000000000, PageSize: 100})
	require.NoError(t, err)
	assert.Empty(t, items.Items)
	assert.Equal(t, 3, items.TotalItems)
	assert.Positive(t, items.Page)

	categories, err := app.NewGetCategoriesHandler(repo).Handle(ctx, &app.GetCategoriesRequest{Page: math.MaxInt, PageSize: 1})
	require.NoError(t, err)
	assert.Empty(t, categories.Categories)
	assert.Equal(t, 1, categories.TotalItems)
}

func TestCartRequiresSession(t *testing.T) {
	repo := memory.NewRepository()
	seedItems(t, repo, "Scone")
	handler := app.NewAddToCartHandler(repo, memory.NewCartStore(0))

	_, err := handler.Handle(context.Background(), &app.AddToCartRequest{ItemID: 1})
	requireHTTPError(t, err, http.StatusBadRequest, "cart.add.missing_cart")
}

func TestAddHiddenItemToCartIsNotFound(t *testing.T) {
	ctx := app.WithCartID(context.Background(), "cart-1")
	repo := memory.NewRepository()
	items := seedItems(t, repo, "Scone")
	require.NoError(t, repo.UpdateItemStatus(ctx, items[0].ID, domain.ItemStatusHidden))

	_, err := app.NewAddToCartHandler(repo, memory.NewCartStore(0)).Handle(ctx, &app.AddToCartRequest{ItemID: items[0].ID})
	requireHTTPError(t, err, http.StatusNotFound, "cart.add.not_found")
}

func TestCheckoutDropsItemsHiddenSinceAdded(t *testing.T) {
	ctx := app.WithUser(app.WithCartID(context.Background(), "cart-1"), "u-1", "u-1@example.com")
	repo := memory.NewRepository()
	carts := memory.NewCartStore(0)
	items := seedItems(t, repo, "Scone", "Croissant")

	add := app.NewAddToCartHandler(repo, carts)
	for _, item := range items {
		_, err := add.Handle(ctx, &app.AddToCartRequest{ItemID: item.ID})
		require.NoError(t, err)
	}
	require.NoError(t, repo.UpdateItemStatus(ctx, items[1].ID, domain.ItemStatusHidden))

	res, err := app.NewCheckoutHandler(repo, carts, nil).Handle(ctx, &app.CheckoutRequest{})
	require.NoError(t, err)
	require.Len(t, res.Order.Items, 1)
	assert.Equal(t, items[0].ID, res.Order.Items[0].ItemID)
	assert.Equal(t, "20.00", res.Total)

	cart, err := carts.Get(ctx, "cart-1")
	require.NoError(t, err)
	assert.Zero(t, cart.Count())
}

func TestRemoveFromCartNeverGoesNegative(t *testing.T) {
	ctx := app.WithCartID(context.Background(), "cart-1")
	handler := app.NewRemoveFromCartHandler(memory.NewCartStore(0))

	res, err := handler.Handle(ctx, &app.RemoveFromCartRequest{ItemID: 1})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
}
