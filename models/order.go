package models

import "github.com/shopspring/decimal"

// OrderSubItem is an add-on picked for an OrderItem. Display fields are copied
// from the FoodItem at selection time.
type OrderSubItem struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// OrderItem is both the draft being customized and the committed cart line.
type OrderItem struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Discount    *Discount       `json:"discount,omitempty"`
	Quantity    int             `json:"quantity"`
	Items       []OrderSubItem  `json:"items"`
	Observation string          `json:"observation,omitempty"`
}

// Clone returns a copy that shares no slices or pointers with o.
func (o OrderItem) Clone() OrderItem {
	c := o
	c.Items = make([]OrderSubItem, len(o.Items))
	copy(c.Items, o.Items)
	if o.Discount != nil {
		d := *o.Discount
		c.Discount = &d
	}
	return c
}
