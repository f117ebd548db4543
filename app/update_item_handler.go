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

type UpdateItemHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type UpdateItemRequest struct {
	ItemID      int64        `params:"id"`
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Price       *json.Number `json:"price,omitempty"`
	Status      *string      `json:"status,omitempty"`
	CategoryID  *int64       `json:"categoryId,omitempty"`
}

type UpdateItemResponse struct {
	Item domain.Item `json:"item"`
}

func NewUpdateItemHandler(repository Repository, eventPublisher events.Publisher) *UpdateItemHandler {
	return &UpdateItemHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (h UpdateItemHandler) Handle(ctx context.Context, req *UpdateItemRequest) (*UpdateItemResponse, error) {
	item, err := h.repository.GetItem(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"item.update.not_found",
				"Item not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"item.update.failed",
			"Failed to get item",
			nil,
		)
	}

	fields := map[string]string{}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		price, ok := parsePrice(*req.Price)
		if !ok {
			fields["price"] = "is not a number"
		}
		item.Price = price
	}
	if req.Status != nil {
		item.Status = *req.Status
	}
	if req.CategoryID != nil {
		item.CategoryID = req.CategoryID
	}

	if err := checkItem(ctx, h.repository, item, fields); err != nil {
		return nil, httperror.InternalServerError(
			"item.update.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}
	if len(fields) > 0 {
		return nil, validationFailed("item.update", fields)
	}

	updated, err := h.repository.UpdateItem(ctx, item)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, validationFailed("item.update", map[string]string{"title": "has already been taken"})
		}

		return nil, httperror.InternalServerError(
			"item.update.update_failed",
			"An error occurred while updating the item",
			nil,
		)
	}

	publish(ctx, h.eventPublisher, events.ItemExchange, events.ItemUpdatedEvent, itemPayload(updated))

	return &UpdateItemResponse{
		Item: updated,
	}, nil
}
