package app

import (
	"context"
	"database/sql"
	"errors"
	"storefront/domain"
	"storefront/pkg/httperror"
)

type GetCategoryHandler struct {
	repository Repository
}

func NewGetCategoryHandler(repository Repository) *GetCategoryHandler {
	return &GetCategoryHandler{
		repository: repository,
	}
}

type GetCategoryRequest struct {
	ID int64 `params:"id"`
}

type GetCategoryResponse struct {
	Category domain.Category `json:"category"`
	Items    []domain.Item   `json:"items"`
}

func (h GetCategoryHandler) Handle(ctx context.Context, req *GetCategoryRequest) (*GetCategoryResponse, error) {
	category, err := h.repository.GetCategoryByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"category.show.not_found",
				"Category not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"category.show.failed",
			"Failed to retrieve category",
			nil,
		)
	}

	filter := ItemFilter{Status: domain.ItemStatusActive, CategoryID: &category.ID}
	items, err := h.repository.GetItems(ctx, filter, 0, 0)
	if err != nil {
		return nil, httperror.InternalServerError(
			"category.show.items_failed",
			"Failed to retrieve category items",
			nil,
		)
	}

	return &GetCategoryResponse{
		Category: category,
		Items:    items,
	}, nil
}
