package services

import (
	"strings"

	"mymenu-bot/lang"
	"mymenu-bot/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InitDraft starts a fresh draft for food. Calling it again for another food
// discards whatever was selected before.
func InitDraft(food models.Food) models.OrderItem {
	var discount *models.Discount
	if food.ActiveDiscount != nil {
		d := *food.ActiveDiscount
		discount = &d
	}
	return models.OrderItem{
		ID:          uuid.NewString(),
		ItemID:      food.ID,
		Title:       food.Name,
		Description: food.Description,
		Image:       food.Image.ImageURL(),
		Price:       food.Price,
		Discount:    discount,
		Quantity:    1,
		Items:       []models.OrderSubItem{},
	}
}

// AddSubItem increments the entry for item or appends a new one with quantity 1.
// It does not look at the category maximum; callers gate it with CanAddSubItem.
func AddSubItem(draft models.OrderItem, item models.FoodItem) models.OrderItem {
	next := draft.Clone()
	for i := range next.Items {
		if next.Items[i].ItemID == item.ID {
			next.Items[i].Quantity++
			return next
		}
	}
	price := decimal.Zero
	if item.PriceIncrease != nil {
		price = *item.PriceIncrease
	}
	next.Items = append(next.Items, models.OrderSubItem{
		ID:          uuid.NewString(),
		ItemID:      item.ID,
		Title:       item.Title,
		Description: item.Description,
		Image:       item.Image.ImageURL(),
		Price:       price,
		Quantity:    1,
	})
	return next
}

// RemoveSubItem decrements the entry for itemID and drops it at zero.
// Unknown ids leave the draft unchanged.
func RemoveSubItem(draft models.OrderItem, itemID string) models.OrderItem {
	next := draft.Clone()
	items := next.Items[:0]
	for _, it := range next.Items {
		if it.ItemID == itemID {
			it.Quantity--
		}
		if it.Quantity > 0 {
			items = append(items, it)
		}
	}
	next.Items = items
	return next
}

// SubItemQuantity is the selected quantity of one food item (0 if absent).
func SubItemQuantity(draft models.OrderItem, itemID string) int {
	for _, it := range draft.Items {
		if it.ItemID == itemID {
			return it.Quantity
		}
	}
	return 0
}

// SelectedCountForCategory sums the quantities of draft entries that belong to category.
func SelectedCountForCategory(category models.FoodItemCategory, draft models.OrderItem) int {
	total := 0
	for _, fi := range category.FoodItems {
		total += SubItemQuantity(draft, fi.ID)
	}
	return total
}

// CanAddSubItem is the guard every caller checks before AddSubItem.
func CanAddSubItem(category models.FoodItemCategory, draft models.OrderItem) bool {
	return SelectedCountForCategory(category, draft) < category.MaxItems
}

// Validate returns the titles of the categories whose minimum is not met, in
// the food's category order. An empty result means the draft can be committed.
func Validate(food models.Food, draft models.OrderItem) []string {
	var invalid []string
	for _, c := range food.ItemCategories {
		if len(c.FoodItems) == 0 || c.MinItems <= 0 {
			continue
		}
		if SelectedCountForCategory(c, draft) < c.MinItems {
			invalid = append(invalid, c.Title)
		}
	}
	return invalid
}

// ValidationMessage is the text shown in language l when Validate reports violations.
func ValidationMessage(l string, titles []string) string {
	if len(titles) == 0 {
		return ""
	}
	return lang.T(l, "min_not_met", strings.Join(titles, ", "))
}

// ComputeTotal is the base price plus every sub-item price times its quantity.
func ComputeTotal(draft models.OrderItem) decimal.Decimal {
	total := draft.Price
	for _, it := range draft.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Commit freezes the draft into a cart line: observation attached, new identity.
// Only call it once Validate returned nothing.
func Commit(draft models.OrderItem, observation string) models.OrderItem {
	line := draft.Clone()
	line.ID = uuid.NewString()
	line.Observation = strings.TrimSpace(observation)
	return line
}

// DiscountedPrice applies an active discount for display. Never below zero.
func DiscountedPrice(price decimal.Decimal, d *models.Discount) decimal.Decimal {
	if d == nil {
		return price
	}
	var out decimal.Decimal
	switch d.Type {
	case models.DiscountPercentage:
		out = price.Sub(price.Mul(d.Value).Div(decimal.NewFromInt(100))).Round(2)
	case models.DiscountFixed:
		out = price.Sub(d.Value)
	default:
		return price
	}
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}
