package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/httperror"
)

type CreateItemHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type CreateItemRequest struct {
	Title       string      `json:"title" form:"title"`
	Description string      `json:"description" form:"description"`
	Price       json.Number `json:"price" form:"price"`
	Status      *string     `json:"status,omitempty" form:"status"`
	CategoryID  *int64      `json:"categoryId,omitempty" form:"categoryId"`
}

type CreateItemResponse struct {
	Item domain.Item `json:"item"`
}

func NewCreateItemHandler(repository Repository, eventPublisher events.Publisher) *CreateItemHandler {
	return &CreateItemHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (h CreateItemHandler) Handle(ctx context.Context, req *CreateItemRequest) (*CreateItemResponse, error) {
	fields := map[string]string{}

	price, ok := parsePrice(req.Price)
	if !ok {
		fields["price"] = "is not a number"
	}

	item := domain.NewItem(req.Title, req.Description, price)
	item.CategoryID = req.CategoryID
	if req.Status != nil {
		item.Status = *req.Status
	}

	if err := checkItem(ctx, h.repository, item, fields); err != nil {
		return nil, httperror.InternalServerError(
			"item.create.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}
	if len(fields) > 0 {
		return nil, validationFailed("item.create", fields)
	}

	created, err := h.repository.CreateItem(ctx, item)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, validationFailed("item.create", map[string]string{"title": "has already been taken"})
		}

		return nil, httperror.InternalServerError(
			"item.create.create_failed",
			"An error occurred while creating the item",
			nil,
		)
	}

	publish(ctx, h.eventPublisher, events.ItemExchange, events.ItemCreatedEvent, itemPayload(created))

	return &CreateItemResponse{
		Item: created,
	}, nil
}

// checkItem collects model, uniqueness and category failures into fields.
func checkItem(ctx context.Context, repository Repository, item domain.Item, fields map[string]string) error {
	if err := mergeValidation(fields, item.Validate()); err != nil {
		return err
	}

	if _, invalid := fields["title"]; !invalid {
		taken, err := repository.ItemTitleTaken(ctx, item.Title, item.ID)
		if err != nil {
			return err
		}
		if taken {
			fields["title"] = "has already been taken"
		}
	}

	if item.CategoryID != nil {
		if _, err := repository.GetCategoryByID(ctx, *item.CategoryID); err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			fields["categoryId"] = "does not exist"
		}
	}

	return nil
}
