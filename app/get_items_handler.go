package app

import (
	"context"
	"storefront/domain"
	"storefront/pkg/httperror"
)

type GetItemsHandler struct {
	repository Repository
}

func NewGetItemsHandler(repository Repository) *GetItemsHandler {
	return &GetItemsHandler{
		repository: repository,
	}
}

type GetItemsRequest struct {
	Page       int    `query:"page"`
	PageSize   int    `query:"pageSize"`
	Status     string `query:"status" validate:"omitempty,oneof=active hidden all"`
	CategoryID *int64 `query:"categoryId"`
}

type GetItemsResponse struct {
	Items      []domain.Item `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalItems int           `json:"totalItems"`
	TotalPages int           `json:"totalPages"`
}

func (h GetItemsHandler) Handle(ctx context.Context, req *GetItemsRequest) (*GetItemsResponse, error) {
	if err := validateRequest(req, "item.index"); err != nil {
		return nil, err
	}

	page, pageSize, offset := pagination(req.Page, req.PageSize)
	filter := ItemFilter{Status: listingStatus(req.Status), CategoryID: req.CategoryID}

	items, err := h.repository.GetItems(ctx, filter, pageSize, offset)
	if err != nil {
		return nil, httperror.InternalServerError(
			"item.index.failed",
			"Failed to retrieve items",
			nil,
		)
	}

	totalItems, err := h.repository.CountItems(ctx, filter)
	if err != nil {
		return nil, httperror.InternalServerError(
			"item.count_items.failed",
			"Failed to count items",
			nil,
		)
	}

	totalPages := (totalItems + pageSize - 1) / pageSize

	return &GetItemsResponse{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// listingStatus hides hidden items unless a status is asked for explicitly.
func listingStatus(status string) string {
	switch status {
	case "":
		return domain.ItemStatusActive
	case "all":
		return ""
	default:
		return status
	}
}
