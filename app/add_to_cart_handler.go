package app

import (
	"context"
	"database/sql"
	"errors"
	"storefront/pkg/httperror"
)

type AddToCartHandler struct {
	repository Repository
	carts      CartStore
}

func NewAddToCartHandler(repository Repository, carts CartStore) *AddToCartHandler {
	return &AddToCartHandler{
		repository: repository,
		carts:      carts,
	}
}

type AddToCartRequest struct {
	ItemID int64 `params:"id"`
}

type CartCountResponse struct {
	CartID string `json:"cartId"`
	Count  int    `json:"count"`
}

func (h AddToCartHandler) Handle(ctx context.Context, req *AddToCartRequest) (*CartCountResponse, error) {
	item, err := h.repository.GetItem(ctx, req.ItemID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, httperror.InternalServerError(
			"cart.add.failed",
			"Failed to retrieve item",
			nil,
		)
	}
	if err != nil || !item.Visible() {
		return nil, httperror.NotFound(
			"cart.add.not_found",
			"Item not found",
			nil,
		)
	}

	cartID, err := sessionCartID(ctx, "cart.add")
	if err != nil {
		return nil, err
	}

	cart, err := h.carts.AddItem(ctx, cartID, item.ID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"cart.add.save_failed",
			"Failed to save cart",
			nil,
		)
	}

	return &CartCountResponse{
		CartID: cart.ID,
		Count:  cart.Count(),
	}, nil
}
