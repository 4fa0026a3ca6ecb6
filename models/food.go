package models

import "github.com/shopspring/decimal"

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

type Discount struct {
	ID    string          `json:"id"`
	Type  string          `json:"type"` // "percentage" or "fixed"
	Value decimal.Decimal `json:"value"`
}

type Food struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Price          decimal.Decimal    `json:"price"`
	ActiveDiscount *Discount          `json:"active_discount,omitempty"`
	GlutenFree     bool               `json:"gluten_free"`
	LactoseFree    bool               `json:"lactose_free"`
	Vegan          bool               `json:"vegan"`
	Vegetarian     bool               `json:"vegetarian"`
	Image          *Image             `json:"image,omitempty"`
	ItemCategories []FoodItemCategory `json:"item_categories"`
}

// FoodItemCategory groups the add-ons of a food. MinItems and MaxItems bound the
// summed quantity selected across FoodItems, both inclusive.
type FoodItemCategory struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	MinItems    int        `json:"min_items"`
	MaxItems    int        `json:"max_items"`
	FoodItems   []FoodItem `json:"food_items"`
}

type FoodItem struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	PriceIncrease *decimal.Decimal `json:"price_increase,omitempty"`
	Image         *Image           `json:"image,omitempty"`
}

// Has reports whether itemID is one of the category's food items.
func (c FoodItemCategory) Has(itemID string) bool {
	for _, it := range c.FoodItems {
		if it.ID == itemID {
			return true
		}
	}
	return false
}

// CategoryOf returns the category that owns itemID.
func (f Food) CategoryOf(itemID string) (FoodItemCategory, bool) {
	for _, c := range f.ItemCategories {
		if c.Has(itemID) {
			return c, true
		}
	}
	return FoodItemCategory{}, false
}

// Item looks up a food item by id across all categories.
func (f Food) Item(itemID string) (FoodItem, bool) {
	for _, c := range f.ItemCategories {
		for _, it := range c.FoodItems {
			if it.ID == itemID {
				return it, true
			}
		}
	}
	return FoodItem{}, false
}
