package app

import (
	"context"
	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/httperror"
	"strconv"
)

type CreateOrderHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewCreateOrderHandler(repository Repository, eventPublisher events.Publisher) *CreateOrderHandler {
	return &CreateOrderHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type CreateOrderRequest struct {
	ItemIDs []int64 `json:"itemIds" validate:"required,min=1,dive,gt=0"`
}

func (h CreateOrderHandler) Handle(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error) {
	userID, ok := UserIDFrom(ctx)
	if !ok {
		return nil, httperror.Unauthorized("order.create.unauthorized", "User identity required", nil)
	}

	if err := validateRequest(req, "order.create"); err != nil {
		return nil, err
	}

	quantities := make(map[int64]int, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		quantities[id]++
	}

	ids := make([]int64, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}

	items, err := h.repository.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, httperror.InternalServerError(
			"order.create.items_failed",
			"Failed to retrieve items",
			nil,
		)
	}

	found := make(map[int64]bool, len(items))
	for _, item := range items {
		found[item.ID] = true
	}
	missing := map[string]string{}
	for _, id := range ids {
		if !found[id] {
			missing["itemIds"] = "item " + strconv.FormatInt(id, 10) + " does not exist"
		}
	}
	if len(missing) > 0 {
		return nil, validationFailed("order.create", missing)
	}

	order := domain.Order{UserID: userID}
	for _, item := range items {
		order.AddItem(item, quantities[item.ID])
	}

	created, err := h.repository.CreateOrder(ctx, order)
	if err != nil {
		return nil, httperror.InternalServerError(
			"order.create.create_failed",
			"An error occurred while creating the order",
			nil,
		)
	}

	publish(ctx, h.eventPublisher, events.OrderExchange, events.OrderCreatedEvent, orderPayload(created))

	return &OrderResponse{
		Order: created,
		Total: created.Total().StringFixed(2),
	}, nil
}
