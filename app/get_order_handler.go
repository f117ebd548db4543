package app

import (
	"context"
	"database/sql"
	"errors"
	"storefront/pkg/httperror"
)

type GetOrderHandler struct {
	repository Repository
}

func NewGetOrderHandler(repository Repository) *GetOrderHandler {
	return &GetOrderHandler{
		repository: repository,
	}
}

type GetOrderRequest struct {
	OrderID int64 `params:"id"`
}

func (h GetOrderHandler) Handle(ctx context.Context, req *GetOrderRequest) (*OrderResponse, error) {
	userID, ok := UserIDFrom(ctx)
	if !ok {
		return nil, httperror.Unauthorized("order.show.unauthorized", "User identity required", nil)
	}

	order, err := h.repository.GetOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound("order.show.not_found", "Order not found", nil)
		}

		return nil, httperror.InternalServerError(
			"order.show.failed",
			"Failed to retrieve order",
			nil,
		)
	}

	if order.UserID != userID {
		return nil, httperror.Forbidden("order.show.forbidden", "You are not allowed to view this order", nil)
	}

	return &OrderResponse{
		Order: order,
		Total: order.Total().StringFixed(2),
	}, nil
}
