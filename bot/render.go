package bot

import (
	"fmt"
	"strings"

	"mymenu-bot/lang"
	"mymenu-bot/models"
	"mymenu-bot/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// card is a message body plus its inline keyboard.
type card struct {
	Text     string
	Keyboard tgbotapi.InlineKeyboardMarkup
}

func renderWelcome(menu *models.Menu, l string) card {
	text := lang.T(l, "welcome", menu.Company.Name, menu.Company.Description)
	c := renderCategories(menu, l)
	c.Text = strings.TrimSpace(text) + "\n\n" + c.Text
	return c
}

// companyCaption is the company name followed by its category names.
func companyCaption(menu *models.Menu) string {
	names := make([]string, 0, len(menu.Categories))
	for _, mc := range menu.Categories {
		names = append(names, mc.Name)
	}
	if len(names) == 0 {
		return menu.Company.Name
	}
	return menu.Company.Name + "\n" + strings.Join(names, " · ")
}

func renderCategories(menu *models.Menu, l string) card {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, mc := range menu.Categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mc.Name, callbackData(actCategory, mc.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "btn_cart"), actCart),
	))
	return card{Text: lang.T(l, "choose_category"), Keyboard: tgbotapi.NewInlineKeyboardMarkup(rows...)}
}

func renderCategory(mc *models.MenuCategory, l string) card {
	text := mc.Name
	if mc.Description != "" {
		text += "\n" + mc.Description
	}
	if len(mc.Foods) == 0 {
		text += "\n\n" + lang.T(l, "category_empty")
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, f := range mc.Foods {
		label := fmt.Sprintf("%s · %s", f.Name, lang.Currency(l, services.DiscountedPrice(f.Price, f.ActiveDiscount)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackData(actFood, f.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "btn_back"), actMenu),
		tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "btn_cart"), actCart),
	))
	return card{Text: text, Keyboard: tgbotapi.NewInlineKeyboardMarkup(rows...)}
}

// renderFood is the customization card: one block per category with items,
// a -/count/+ row per item and the running total.
func renderFood(food *models.Food, draft *models.OrderItem, observation, l string) card {
	var b strings.Builder
	b.WriteString(food.Name)
	if food.Description != "" {
		b.WriteString("\n" + food.Description)
	}
	if tags := dietaryTags(food, l); tags != "" {
		b.WriteString("\n" + tags)
	}
	b.WriteString("\n" + priceLine(food, l))

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, cat := range food.ItemCategories {
		if len(cat.FoodItems) == 0 {
			continue
		}
		header := fmt.Sprintf("%s %d/%d", cat.Title, services.SelectedCountForCategory(cat, *draft), cat.MaxItems)
		b.WriteString("\n\n" + header)
		if cat.Description != "" {
			b.WriteString("\n" + cat.Description)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(header, actNoop),
		))
		for _, it := range cat.FoodItems {
			qty := services.SubItemQuantity(*draft, it.ID)
			label := it.Title
			if it.PriceIncrease != nil && it.PriceIncrease.IsPositive() {
				label += " +" + lang.Currency(l, *it.PriceIncrease)
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("−", callbackData(actRemove, it.ID)),
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s (%d)", label, qty), actNoop),
				tgbotapi.NewInlineKeyboardButtonData("+", callbackData(actAdd, it.ID)),
			))
		}
	}
	if observation != "" {
		fmt.Fprintf(&b, "\n\n%s: %s", lang.T(l, "observations"), observation)
	}
	fmt.Fprintf(&b, "\n\n%s: %s", lang.T(l, "total"), lang.Currency(l, services.ComputeTotal(*draft)))

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "btn_observation"), actObserve),
			tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "btn_add_to_cart"), actConfirm),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "btn_close"), actClose),
		),
	)
	return card{Text: b.String(), Keyboard: tgbotapi.NewInlineKeyboardMarkup(rows...)}
}

func renderCart(cart *services.Cart, l string) card {
	items := cart.Items()
	if len(items) == 0 {
		return card{
			Text: lang.T(l, "cart_empty"),
			Keyboard: tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "btn_menu"), actMenu),
			)),
		}
	}

	var b strings.Builder
	b.WriteString(lang.T(l, "cart_title"))
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, it := range items {
		fmt.Fprintf(&b, "\n\n%d. %s · %s", i+1, it.Title, lang.Currency(l, services.ComputeTotal(it)))
		for _, sub := range it.Items {
			fmt.Fprintf(&b, "\n   %dx %s", sub.Quantity, sub.Title)
		}
		if it.Observation != "" {
			fmt.Fprintf(&b, "\n   %s: %s", lang.T(l, "observations"), it.Observation)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %d. %s", lang.T(l, "btn_remove"), i+1, it.Title), callbackData(actDelLine, it.ID)),
		))
	}
	fmt.Fprintf(&b, "\n\n%s: %s", lang.T(l, "total"), lang.Currency(l, cart.Total()))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "btn_clear"), actClear),
		tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "btn_menu"), actMenu),
	))
	return card{Text: b.String(), Keyboard: tgbotapi.NewInlineKeyboardMarkup(rows...)}
}

func dietaryTags(food *models.Food, l string) string {
	var tags []string
	if food.GlutenFree {
		tags = append(tags, lang.T(l, "gluten_free"))
	}
	if food.LactoseFree {
		tags = append(tags, lang.T(l, "lactose_free"))
	}
	if food.Vegan {
		tags = append(tags, lang.T(l, "vegan"))
	}
	if food.Vegetarian {
		tags = append(tags, lang.T(l, "vegetarian"))
	}
	return strings.Join(tags, " · ")
}

func priceLine(food *models.Food, l string) string {
	final := services.DiscountedPrice(food.Price, food.ActiveDiscount)
	if final.Equal(food.Price) {
		return lang.Currency(l, food.Price)
	}
	return fmt.Sprintf("%s → %s", lang.Currency(l, food.Price), lang.Currency(l, final))
}
