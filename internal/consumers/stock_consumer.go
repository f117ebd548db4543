package consumers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"storefront/app"
	"storefront/domain"
	"storefront/pkg/events"

	"go.uber.org/zap"
)

// StockEventHandler hides items the inventory service reports as depleted and shows them again once restocked.
type StockEventHandler struct {
	repository app.Repository
}

func NewStockEventHandler(repository app.Repository) *StockEventHandler {
	return &StockEventHandler{
		repository: repository,
	}
}

func (h *StockEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	switch event.Event {
	case events.StockDepletedEvent:
		return h.setStatus(ctx, event, domain.ItemStatusHidden)
	case events.StockRestockedEvent:
		return h.setStatus(ctx, event, domain.ItemStatusActive)
	default:
		zap.L().Warn("Unknown stock event type",
			zap.String("event", event.Event),
			zap.String("traceId", event.TraceID),
		)
		return nil
	}
}

func (h *StockEventHandler) setStatus(ctx context.Context, event *events.Event, status string) error {
	var payload events.StockPayload
	if err := event.DecodePayload(&payload); err != nil {
		return err
	}
	if payload.ItemID <= 0 {
		return fmt.Errorf("malformed payload - itemId missing or invalid")
	}

	if err := h.repository.UpdateItemStatus(ctx, payload.ItemID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			zap.L().Warn("Stock event for unknown item",
				zap.Int64("itemId", payload.ItemID),
				zap.String("event", event.Event),
				zap.String("traceId", event.TraceID),
			)
			return nil
		}
		return fmt.Errorf("failed to update item %d status: %w", payload.ItemID, err)
	}

	zap.L().Info("Item status updated from stock event",
		zap.Int64("itemId", payload.ItemID),
		zap.String("status", status),
		zap.String("traceId", event.TraceID),
	)
	return nil
}
