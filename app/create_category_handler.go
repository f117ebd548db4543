package app

import (
	"context"
	"errors"
	"storefront/domain"
	"storefront/pkg/httperror"
	"strings"
)

type CreateCategoryHandler struct {
	repository Repository
}

func NewCreateCategoryHandler(repository Repository) *CreateCategoryHandler {
	return &CreateCategoryHandler{
		repository: repository,
	}
}

type CreateCategoryRequest struct {
	Name string `json:"name" form:"name"`
}

type CreateCategoryResponse struct {
	Category domain.Category `json:"category"`
}

func (h CreateCategoryHandler) Handle(ctx context.Context, req *CreateCategoryRequest) (*CreateCategoryResponse, error) {
	category := domain.Category{Name: strings.TrimSpace(req.Name)}

	fields := map[string]string{}
	if err := mergeValidation(fields, category.Validate()); err != nil {
		return nil, httperror.InternalServerError(
			"category.create.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}
	if len(fields) > 0 {
		return nil, validationFailed("category.create", fields)
	}

	created, err := h.repository.CreateCategory(ctx, category)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, validationFailed("category.create", map[string]string{"name": "has already been taken"})
		}

		return nil, httperror.InternalServerError(
			"category.create.create_failed",
			"An error occurred while creating the category",
			nil,
		)
	}

	return &CreateCategoryResponse{
		Category: created,
	}, nil
}
