package bot

import (
	"strings"
	"testing"

	"mymenu-bot/lang"
	"mymenu-bot/models"
	"mymenu-bot/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buttonData(kb tgbotapi.InlineKeyboardMarkup) []string {
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				out = append(out, *btn.CallbackData)
			}
		}
	}
	return out
}

func buttonTexts(kb tgbotapi.InlineKeyboardMarkup) []string {
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			out = append(out, btn.Text)
		}
	}
	return out
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data, action, arg string
	}{
		{"food:burger", actFood, "burger"},
		{"add:9f1c-uuid", actAdd, "9f1c-uuid"},
		{"cart", actCart, ""},
		{"del:a:b", actDelLine, "a:b"},
		{"", "", ""},
	}
	for _, tt := range tests {
		action, arg := parseCallback(tt.data)
		if action != tt.action || arg != tt.arg {
			t.Errorf("parseCallback(%q) = (%q, %q), want (%q, %q)", tt.data, action, arg, tt.action, tt.arg)
		}
	}
	a, g := parseCallback(callbackData(actRemove, "B"))
	assert.Equal(t, actRemove, a)
	assert.Equal(t, "B", g)
	assert.Equal(t, actConfirm, callbackData(actConfirm, ""))
}

func TestRenderCategories(t *testing.T) {
	c := renderWelcome(sampleMenu(), lang.Pt)
	assert.True(t, strings.HasPrefix(c.Text, "Bem-vindo ao cardápio de Acme Burgers!"))
	assert.Equal(t, []string{"cat:c1", "cat:c2", "cart"}, buttonData(c.Keyboard))
}

func TestRenderCategory(t *testing.T) {
	menu := sampleMenu()
	menu.Categories[0].Foods[1].ActiveDiscount = &models.Discount{Type: models.DiscountFixed, Value: decimal.NewFromInt(2)}

	c := renderCategory(&menu.Categories[0], lang.Pt)
	assert.Equal(t, []string{"food:burger", "food:fries", "menu", "cart"}, buttonData(c.Keyboard))
	texts := buttonTexts(c.Keyboard)
	assert.Contains(t, texts, "Burger · R$ 10,00")
	assert.Contains(t, texts, "Fritas · R$ 5,00")

	empty := renderCategory(&menu.Categories[1], lang.Pt)
	assert.Contains(t, empty.Text, lang.T(lang.Pt, "category_empty"))
}

func TestRenderFood(t *testing.T) {
	food := sampleFood(t)
	draft := services.InitDraft(food)
	draft = services.AddSubItem(draft, food.ItemCategories[0].FoodItems[1])
	draft = services.AddSubItem(draft, food.ItemCategories[0].FoodItems[1])

	c := renderFood(&food, &draft, "sem sal", lang.Pt)
	assert.Contains(t, c.Text, "Molhos 2/2")
	assert.Contains(t, c.Text, "Extras 0/1")
	assert.NotContains(t, c.Text, "Sem itens", "categories without items are hidden")
	assert.Contains(t, c.Text, "Sem glúten")
	assert.Contains(t, c.Text, "Observações: sem sal")
	assert.Contains(t, c.Text, "Total: R$ 16,00")

	data := buttonData(c.Keyboard)
	assert.Contains(t, data, "add:A")
	assert.Contains(t, data, "rem:B")
	assert.Contains(t, data, "add:E")
	assert.Contains(t, data, actConfirm)
	assert.Contains(t, data, actObserve)
	assert.Contains(t, data, actClose)
	assert.Contains(t, buttonTexts(c.Keyboard), "Cheddar +R$ 3,00 (2)")
}

func TestRenderFood_DiscountedPriceLine(t *testing.T) {
	food := sampleFood(t)
	food.ActiveDiscount = &models.Discount{Type: models.DiscountPercentage, Value: decimal.NewFromInt(10)}
	draft := services.InitDraft(food)

	c := renderFood(&food, &draft, "", lang.Pt)
	assert.Contains(t, c.Text, "R$ 10,00 → R$ 9,00")
	assert.NotContains(t, c.Text, "Observações:")
}

func TestRenderCart(t *testing.T) {
	cart := services.NewCart()
	empty := renderCart(cart, lang.Pt)
	assert.Equal(t, lang.T(lang.Pt, "cart_empty"), empty.Text)
	assert.Equal(t, []string{actMenu}, buttonData(empty.Keyboard))

	food := sampleFood(t)
	line := services.Commit(services.AddSubItem(services.InitDraft(food), food.ItemCategories[0].FoodItems[0]), "bem passado")
	cart.AddItem(line)
	cart.AddItem(services.Commit(services.InitDraft(food), ""))

	c := renderCart(cart, lang.Pt)
	assert.Contains(t, c.Text, "1. Burger · R$ 12,00")
	assert.Contains(t, c.Text, "1x Barbecue")
	assert.Contains(t, c.Text, "Observações: bem passado")
	assert.Contains(t, c.Text, "2. Burger · R$ 10,00")
	assert.Contains(t, c.Text, "Total: R$ 22,00")

	data := buttonData(c.Keyboard)
	require.Len(t, data, 4)
	assert.Equal(t, "del:"+line.ID, data[0])
	assert.Equal(t, []string{actClear, actMenu}, data[2:])
}
