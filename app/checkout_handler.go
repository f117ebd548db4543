package app

import (
	"context"
	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/httperror"

	"go.uber.org/zap"
)

type CheckoutHandler struct {
	repository     Repository
	carts          CartStore
	eventPublisher events.Publisher
}

func NewCheckoutHandler(repository Repository, carts CartStore, eventPublisher events.Publisher) *CheckoutHandler {
	return &CheckoutHandler{
		repository:     repository,
		carts:          carts,
		eventPublisher: eventPublisher,
	}
}

type CheckoutRequest struct{}

type OrderResponse struct {
	Order domain.Order `json:"order"`
	Total string       `json:"total"`
}

func (h CheckoutHandler) Handle(ctx context.Context, _ *CheckoutRequest) (*OrderResponse, error) {
	userID, ok := UserIDFrom(ctx)
	if !ok {
		return nil, httperror.Unauthorized("cart.checkout.unauthorized", "User identity required", nil)
	}

	cart, err := currentCart(ctx, h.carts, "cart.checkout")
	if err != nil {
		return nil, err
	}

	items, err := h.repository.GetItemsByIDs(ctx, cart.ItemIDs())
	if err != nil {
		return nil, httperror.InternalServerError(
			"cart.checkout.items_failed",
			"Failed to retrieve cart items",
			nil,
		)
	}

	order := domain.Order{UserID: userID}
	for _, item := range items {
		if !item.Visible() {
			zap.L().Warn("Dropping hidden item from checkout",
				zap.String("cartId", cart.ID),
				zap.Int64("itemId", item.ID),
			)
			continue
		}
		order.AddItem(item, cart.Lines[item.ID])
	}

	if len(order.Items) == 0 {
		return nil, httperror.UnprocessableEntity("cart.checkout.empty", "Cart is empty", nil)
	}

	created, err := h.repository.CreateOrder(ctx, order)
	if err != nil {
		return nil, httperror.InternalServerError(
			"cart.checkout.create_failed",
			"An error occurred while creating the order",
			nil,
		)
	}

	if err := h.carts.Delete(ctx, cart.ID); err != nil {
		zap.L().Error("Failed to clear cart after checkout",
			zap.String("cartId", cart.ID),
			zap.Int64("orderId", created.ID),
			zap.Error(err),
		)
	}

	publish(ctx, h.eventPublisher, events.OrderExchange, events.OrderCreatedEvent, orderPayload(created))

	return &OrderResponse{
		Order: created,
		Total: created.Total().StringFixed(2),
	}, nil
}
