package app

import (
	"context"
	"database/sql"
	"errors"
	"storefront/domain"
	"storefront/pkg/httperror"
)

type GetItemOrdersHandler struct {
	repository Repository
}

func NewGetItemOrdersHandler(repository Repository) *GetItemOrdersHandler {
	return &GetItemOrdersHandler{
		repository: repository,
	}
}

type GetItemOrdersRequest struct {
	ItemID int64 `params:"id"`
}

type GetItemOrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

func (h GetItemOrdersHandler) Handle(ctx context.Context, req *GetItemOrdersRequest) (*GetItemOrdersResponse, error) {
	if _, err := h.repository.GetItem(ctx, req.ItemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound("item.orders.not_found", "Item not found", nil)
		}
		return nil, httperror.InternalServerError("item.orders.failed", "Failed to retrieve item", nil)
	}

	orders, err := h.repository.GetItemOrders(ctx, req.ItemID)
	if err != nil {
		return nil, httperror.InternalServerError("item.orders.failed", "Failed to retrieve orders", nil)
	}

	return &GetItemOrdersResponse{
		Orders: orders,
	}, nil
}
