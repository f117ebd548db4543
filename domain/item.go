package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ItemStatusActive = "active"
	ItemStatusHidden = "hidden"
)

type Item struct {
	ID          int64   `db:"id" json:"id"`
	CategoryID  *int64  `db:"category_id" json:"categoryId"`
	Title       string  `db:"title" json:"title" validate:"required"`
	Description string  `db:"description" json:"description" validate:"notblank"`
	Price       int64   `db:"price" json:"price" validate:"required,gt=0"`
	Status      string  `db:"status" json:"status" validate:"required,oneof=active hidden"`
	ImageURL    *string `db:"image_url" json:"imageUrl"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewItem returns an item in the default visible state.
func NewItem(title, description string, price int64) Item {
	return Item{
		Title:       title,
		Description: description,
		Price:       price,
		Status:      ItemStatusActive,
	}
}

func (i Item) Validate() error {
	return validateStruct(i)
}

// Currency converts the price in cents to whole currency units.
func (i Item) Currency() decimal.Decimal {
	return decimal.New(i.Price, -2)
}

func (i Item) Visible() bool {
	return i.Status == ItemStatusActive
}
