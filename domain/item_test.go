package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validItem() Item {
	return NewItem("title", "desc", 10)
}

func TestItemValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Item)
		field  string
	}{
		{name: "valid", mutate: func(*Item) {}},
		{name: "missing title", mutate: func(i *Item) { i.Title = "" }, field: "title"},
		{name: "missing description", mutate: func(i *Item) { i.Description = "" }, field: "description"},
		{name: "blank description", mutate: func(i *Item) { i.Description = "   " }, field: "description"},
		{name: "missing price", mutate: func(i *Item) { i.Price = 0 }, field: "price"},
		{name: "negative price", mutate: func(i *Item) { i.Price = -5 }, field: "price"},
		{name: "missing status", mutate: func(i *Item) { i.Status = "" }, field: "status"},
		{name: "unknown status", mutate: func(i *Item) { i.Status = "archived" }, field: "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(&item)

			err := item.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var ve ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestNewItemDefaultsToVisible(t *testing.T) {
	item := NewItem("Bacon and Eggs", "The classic breakfast dish", 1000)

	assert.Equal(t, ItemStatusActive, item.Status)
	assert.True(t, item.Visible())

	item.Status = ItemStatusHidden
	assert.False(t, item.Visible())
}

func TestItemCurrency(t *testing.T) {
	assert.True(t, decimal.NewFromInt(20).Equal(NewItem("next item", "desc", 2000).Currency()))
	assert.Equal(t, "10.5", NewItem("half", "desc", 1050).Currency().String())
}

func TestValidationErrorMessage(t *testing.T) {
	item := Item{}
	err := item.Validate()

	require.Error(t, err)
	assert.Equal(t,
		"validation failed: description can't be blank, price can't be blank, status can't be blank, title can't be blank",
		err.Error(),
	)
}

func TestCategoryValidate(t *testing.T) {
	assert.NoError(t, Category{Name: "Breakfast"}.Validate())
	assert.Error(t, Category{Name: " "}.Validate())
}
