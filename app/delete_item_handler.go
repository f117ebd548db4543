package app

import (
	"context"
	"database/sql"
	"errors"
	"storefront/pkg/events"
	"storefront/pkg/httperror"
	"time"
)

type DeleteItemHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewDeleteItemHandler(repository Repository, eventPublisher events.Publisher) *DeleteItemHandler {
	return &DeleteItemHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type DeleteItemRequest struct {
	ItemID int64 `params:"id"`
}

type DeleteItemResponse struct {
}

func (h DeleteItemHandler) Handle(ctx context.Context, req *DeleteItemRequest) (*DeleteItemResponse, error) {
	item, err := h.repository.GetItem(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"item.destroy.not_found",
				"Item not found",
				nil,
			)
		}
		return nil, httperror.InternalServerError(
			"item.destroy.failed",
			"Failed to retrieve item",
			nil,
		)
	}

	if err := h.repository.DeleteItem(ctx, item.ID); err != nil {
		if errors.Is(err, ErrInUse) {
			return nil, httperror.Conflict(
				"item.destroy.has_orders",
				"Item belongs to existing orders; hide it instead",
				nil,
			)
		}
		return nil, httperror.InternalServerError(
			"item.destroy.failed",
			"Failed to delete item",
			nil,
		)
	}

	publish(ctx, h.eventPublisher, events.ItemExchange, events.ItemDeletedEvent, events.ItemDeletedPayload{
		ID:        item.ID,
		DeletedAt: time.Now().UTC(),
	})

	return nil, httperror.NoContent(
		"item.destroy.success",
		"Item deleted successfully",
		nil,
	)
}
