package services

import (
	"mymenu-bot/models"

	"github.com/shopspring/decimal"
)

// Cart holds the confirmed lines of one session, in insertion order.
// It is not safe for concurrent use; the owning session serializes access.
type Cart struct {
	items []models.OrderItem
}

// OrderItemPatch lists the fields UpdateItem may change. Nil fields are left alone.
type OrderItemPatch struct {
	Observation *string
}

func NewCart() *Cart {
	return &Cart{items: []models.OrderItem{}}
}

// AddItem appends a committed line. Lines for the same food are never merged.
func (c *Cart) AddItem(item models.OrderItem) {
	c.items = append(c.items, item.Clone())
}

// RemoveItem drops the line with id and reports whether it existed.
func (c *Cart) RemoveItem(id string) bool {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateItem applies patch to the line with id and reports whether it existed.
func (c *Cart) UpdateItem(id string, patch OrderItemPatch) bool {
	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		if patch.Observation != nil {
			c.items[i].Observation = *patch.Observation
		}
		return true
	}
	return false
}

// Items returns a copy of the lines; mutating it does not touch the cart.
func (c *Cart) Items() []models.OrderItem {
	out := make([]models.OrderItem, len(c.items))
	for i, it := range c.items {
		out[i] = it.Clone()
	}
	return out
}

func (c *Cart) Item(id string) (models.OrderItem, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it.Clone(), true
		}
	}
	return models.OrderItem{}, false
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Clear() {
	c.items = []models.OrderItem{}
}

// Total sums every line's ComputeTotal times its quantity.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(ComputeTotal(it).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Restore replaces the contents with items, e.g. from a saved snapshot.
func (c *Cart) Restore(items []models.OrderItem) {
	c.items = make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		c.items = append(c.items, it.Clone())
	}
}
