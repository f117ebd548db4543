package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Domain constants
const (
	ItemDomain    = "item"
	ItemExchange  = "storefront.item"
	OrderExchange = "storefront.order"
	StockExchange = "inventory.stock"
)

// Event names
const (
	ItemCreatedEvent       = "item.created"
	ItemUpdatedEvent       = "item.updated"
	ItemDeletedEvent       = "item.deleted"
	ItemImageUploadedEvent = "item.image.uploaded"
	OrderCreatedEvent      = "order.created"
	StockDepletedEvent     = "stock.depleted"
	StockRestockedEvent    = "stock.restocked"
)

// Event versions
const (
	EventVersionV1 = "v1"
)

// ItemPayload is shared by item.created and item.updated.
type ItemPayload struct {
	ID          int64           `json:"id"`
	CategoryID  *int64          `json:"categoryId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       int64           `json:"price"`
	Currency    decimal.Decimal `json:"currency"`
	Status      string          `json:"status"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

type ItemDeletedPayload struct {
	ID        int64     `json:"id"`
	DeletedAt time.Time `json:"deletedAt"`
}

type ItemImageUploadedPayload struct {
	ItemID    int64     `json:"itemId"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type OrderLinePayload struct {
	ItemID   int64 `json:"itemId"`
	Price    int64 `json:"price"`
	Quantity int   `json:"quantity"`
}

type OrderCreatedPayload struct {
	ID        int64              `json:"id"`
	UserID    string             `json:"userId"`
	Items     []OrderLinePayload `json:"items"`
	Total     decimal.Decimal    `json:"total"`
	CreatedAt time.Time          `json:"createdAt"`
}

// StockPayload is published by the inventory service when an item runs out or comes back.
type StockPayload struct {
	ItemID int64 `json:"itemId"`
}
