package domain

import "time"

type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" validate:"notblank"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (c Category) Validate() error {
	return validateStruct(c)
}

// CategoryWithItems is a category together with the items it owns.
type CategoryWithItems struct {
	Category
	Items []Item `json:"items"`
}
