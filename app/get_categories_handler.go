package app

import (
	"context"
	"storefront/domain"
	"storefront/pkg/httperror"
)

type GetCategoriesHandler struct {
	repository Repository
}

func NewGetCategoriesHandler(repository Repository) *GetCategoriesHandler {
	return &GetCategoriesHandler{
		repository: repository,
	}
}

type GetCategoriesRequest struct {
	Page     int `query:"page"`
	PageSize int `query:"pageSize"`
}

type GetCategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalItems int               `json:"totalItems"`
	TotalPages int               `json:"totalPages"`
}

func (h GetCategoriesHandler) Handle(ctx context.Context, req *GetCategoriesRequest) (*GetCategoriesResponse, error) {
	page, pageSize, offset := pagination(req.Page, req.PageSize)

	categories, err := h.repository.GetCategories(ctx, pageSize, offset)
	if err != nil {
		return nil, httperror.InternalServerError(
			"category.index.failed",
			"Failed to retrieve categories",
			nil,
		)
	}

	totalItems, err := h.repository.CountCategories(ctx)
	if err != nil {
		return nil, httperror.InternalServerError(
			"category.count_categories.failed",
			"Failed to count categories",
			nil,
		)
	}

	totalPages := (totalItems + pageSize - 1) / pageSize

	return &GetCategoriesResponse{
		Categories: categories,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}
