package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID        int64       `json:"id" db:"id"`
	UserID    string      `json:"userId" db:"user_id"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

type OrderItem struct {
	OrderID  int64  `json:"-" db:"order_id"`
	ItemID   int64  `json:"itemId" db:"item_id"`
	Title    string `json:"title" db:"title"`
	Price    int64  `json:"price" db:"price"`
	Quantity int    `json:"quantity" db:"quantity"`
}

// AddItem appends item to the order, bumping the quantity when it is already present.
func (o *Order) AddItem(item Item, quantity int) {
	for idx := range o.Items {
		if o.Items[idx].ItemID == item.ID {
			o.Items[idx].Quantity += quantity
			return
		}
	}

	o.Items = append(o.Items, OrderItem{
		ItemID:   item.ID,
		Title:    item.Title,
		Price:    item.Price,
		Quantity: quantity,
	})
}

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Items {
		total = total.Add(decimal.New(line.Price, -2).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
