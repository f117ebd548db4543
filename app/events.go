package app

import (
	"context"
	"storefront/domain"
	"storefront/pkg/events"
	"time"

	"go.uber.org/zap"
)

const serviceName = "storefront"

// publish sends an event when a publisher is configured. Failures are logged, never returned.
func publish(ctx context.Context, publisher events.Publisher, exchange, name string, payload any) {
	if publisher == nil {
		return
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       serviceName,
	}

	event := events.NewEvent(name, events.EventVersionV1, payload, headers)

	if err := publisher.Publish(ctx, exchange, event, headers); err != nil {
		zap.L().Error("Failed to publish event",
			zap.String("event", name),
			zap.String("traceId", headers.TraceID),
			zap.Error(err),
		)
	}
}

func itemPayload(item domain.Item) events.ItemPayload {
	return events.ItemPayload{
		ID:          item.ID,
		CategoryID:  item.CategoryID,
		Title:       item.Title,
		Description: item.Description,
		Price:       item.Price,
		Currency:    item.Currency(),
		Status:      item.Status,
		OccurredAt:  time.Now().UTC(),
	}
}

func orderPayload(order domain.Order) events.OrderCreatedPayload {
	lines := make([]events.OrderLinePayload, 0, len(order.Items))
	for _, line := range order.Items {
		lines = append(lines, events.OrderLinePayload{
			ItemID:   line.ItemID,
			Price:    line.Price,
			Quantity: line.Quantity,
		})
	}

	return events.OrderCreatedPayload{
		ID:        order.ID,
		UserID:    order.UserID,
		Items:     lines,
		Total:     order.Total(),
		CreatedAt: order.CreatedAt,
	}
}
