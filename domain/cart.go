package domain

import "sort"

type Cart struct {
	ID    string        `json:"id"`
	Lines map[int64]int `json:"lines"`
}

func NewCart(id string) *Cart {
	return &Cart{ID: id, Lines: make(map[int64]int)}
}

func (c *Cart) Add(itemID int64) {
	if c.Lines == nil {
		c.Lines = make(map[int64]int)
	}
	c.Lines[itemID]++
}

// Remove takes one unit of itemID out of the cart. Items not in the cart are ignored.
func (c *Cart) Remove(itemID int64) {
	qty, ok := c.Lines[itemID]
	if !ok {
		return
	}
	if qty <= 1 {
		delete(c.Lines, itemID)
		return
	}
	c.Lines[itemID] = qty - 1
}

func (c *Cart) Count() int {
	count := 0
	for _, qty := range c.Lines {
		count += qty
	}
	return count
}

// ItemIDs returns the ids in the cart in ascending order.
func (c *Cart) ItemIDs() []int64 {
	ids := make([]int64, 0, len(c.Lines))
	for id := range c.Lines {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	return ids
}
