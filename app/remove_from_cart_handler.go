package app

import (
	"context"
	"storefront/pkg/httperror"
)

type RemoveFromCartHandler struct {
	carts CartStore
}

func NewRemoveFromCartHandler(carts CartStore) *RemoveFromCartHandler {
	return &RemoveFromCartHandler{
		carts: carts,
	}
}

type RemoveFromCartRequest struct {
	ItemID int64 `params:"id"`
}

func (h RemoveFromCartHandler) Handle(ctx context.Context, req *RemoveFromCartRequest) (*CartCountResponse, error) {
	cartID, err := sessionCartID(ctx, "cart.remove")
	if err != nil {
		return nil, err
	}

	cart, err := h.carts.RemoveItem(ctx, cartID, req.ItemID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"cart.remove.save_failed",
			"Failed to save cart",
			nil,
		)
	}

	return &CartCountResponse{
		CartID: cart.ID,
		Count:  cart.Count(),
	}, nil
}
