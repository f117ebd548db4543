package app

import (
	"context"
	"database/sql"
	"errors"
	"storefront/domain"
	"storefront/pkg/httperror"
)

type GetItemHandler struct {
	repository Repository
}

func NewGetItemHandler(repository Repository) *GetItemHandler {
	return &GetItemHandler{
		repository: repository,
	}
}

type GetItemRequest struct {
	ItemID int64 `params:"id"`
}

type GetItemResponse struct {
	Item     domain.Item `json:"item"`
	Currency string      `json:"currency"`
}

func (h GetItemHandler) Handle(ctx context.Context, req *GetItemRequest) (*GetItemResponse, error) {
	item, err := h.repository.GetItem(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"item.show.not_found",
				"Item not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"item.show.failed",
			"Failed to retrieve item",
			nil,
		)
	}

	return &GetItemResponse{
		Item:     item,
		Currency: item.Currency().StringFixed(2),
	}, nil
}
