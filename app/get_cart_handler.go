package app

import (
	"context"
	"storefront/domain"
	"storefront/pkg/httperror"
)

type GetCartHandler struct {
	repository Repository
	carts      CartStore
}

func NewGetCartHandler(repository Repository, carts CartStore) *GetCartHandler {
	return &GetCartHandler{
		repository: repository,
		carts:      carts,
	}
}

type GetCartRequest struct{}

type CartLine struct {
	Item     domain.Item `json:"item"`
	Quantity int         `json:"quantity"`
}

type GetCartResponse struct {
	CartID string     `json:"cartId"`
	Lines  []CartLine `json:"lines"`
	Count  int        `json:"count"`
	Total  string     `json:"total"`
}

func (h GetCartHandler) Handle(ctx context.Context, _ *GetCartRequest) (*GetCartResponse, error) {
	cart, err := currentCart(ctx, h.carts, "cart.show")
	if err != nil {
		return nil, err
	}

	items, err := h.repository.GetItemsByIDs(ctx, cart.ItemIDs())
	if err != nil {
		return nil, httperror.InternalServerError(
			"cart.show.items_failed",
			"Failed to retrieve cart items",
			nil,
		)
	}

	order := domain.Order{}
	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		qty := cart.Lines[item.ID]
		lines = append(lines, CartLine{Item: item, Quantity: qty})
		order.AddItem(item, qty)
	}

	return &GetCartResponse{
		CartID: cart.ID,
		Lines:  lines,
		Count:  cart.Count(),
		Total:  order.Total().StringFixed(2),
	}, nil
}

func sessionCartID(ctx context.Context, action string) (string, error) {
	cartID, ok := CartIDFrom(ctx)
	if !ok {
		return "", httperror.BadRequest(
			action+".missing_cart",
			"Cart session not found",
			nil,
		)
	}
	return cartID, nil
}

func currentCart(ctx context.Context, carts CartStore, action string) (*domain.Cart, error) {
	cartID, err := sessionCartID(ctx, action)
	if err != nil {
		return nil, err
	}

	cart, err := carts.Get(ctx, cartID)
	if err != nil {
		return nil, httperror.InternalServerError(
			action+".load_failed",
			"Failed to load cart",
			nil,
		)
	}

	return cart, nil
}
