package lang

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Pt = "pt"
	En = "en"
)

var messages = map[string]map[string]string{
	Pt: {
		"welcome":             "Bem-vindo ao cardápio de %s!\n%s",
		"no_company":          "Informe o restaurante: /start <id>",
		"menu_unavailable":    "Não foi possível carregar o cardápio agora. Tente novamente em instantes.",
		"menu_not_found":      "Cardápio não encontrado.",
		"choose_category":     "Escolha uma categoria:",
		"category_empty":      "Nenhum prato nesta categoria.",
		"food_not_found":      "Prato não encontrado no cardápio.",
		"no_draft":            "Abra um prato do cardápio primeiro.",
		"max_reached":         "Máximo de %d item(ns) em %s.",
		"min_not_met":         "A categoria(s) %s não atingiu o mínimo de itens selecionados.",
		"ask_observation":     "Escreva suas observações (ex: sem cebola, ponto da carne).",
		"observation_saved":   "Observação anotada.",
		"added_to_cart":       "Adicionado ao carrinho!",
		"cart_empty":          "Seu carrinho está vazio.",
		"cart_title":          "Carrinho",
		"cart_cleared":        "Carrinho esvaziado.",
		"line_removed":        "Item removido.",
		"total":               "Total",
		"observations":        "Observações",
		"btn_add_to_cart":     "Adicionar ao carrinho",
		"btn_observation":     "Observações",
		"btn_close":           "Fechar",
		"btn_cart":            "Carrinho",
		"btn_menu":            "Cardápio",
		"btn_back":            "Voltar",
		"btn_clear":           "Esvaziar",
		"btn_remove":          "Remover",
		"gluten_free":         "Sem glúten",
		"lactose_free":        "Sem lactose",
		"vegan":               "Vegano",
		"vegetarian":          "Vegetariano",
		"cmd_start":           "Abrir cardápio",
		"cmd_menu":            "Categorias",
		"cmd_cart":            "Ver carrinho",
		"cmd_clear":           "Esvaziar carrinho",
		"currency_symbol":     "R$",
		"decimal_separator":   ",",
		"thousands_separator": ".",
	},
	En: {
		"welcome":             "Welcome to the %s menu!\n%s",
		"no_company":          "Tell me the restaurant: /start <id>",
		"menu_unavailable":    "The menu could not be loaded right now. Please try again shortly.",
		"menu_not_found":      "Menu not found.",
		"choose_category":     "Pick a category:",
		"category_empty":      "No dishes in this category.",
		"food_not_found":      "Dish not found on the menu.",
		"no_draft":            "Open a dish from the menu first.",
		"max_reached":         "At most %d item(s) in %s.",
		"min_not_met":         "Category(ies) %s did not reach the minimum number of selected items.",
		"ask_observation":     "Write your notes (e.g. no onion, medium rare).",
		"observation_saved":   "Note saved.",
		"added_to_cart":       "Added to cart!",
		"cart_empty":          "Your cart is empty.",
		"cart_title":          "Cart",
		"cart_cleared":        "Cart cleared.",
		"line_removed":        "Item removed.",
		"total":               "Total",
		"observations":        "Notes",
		"btn_add_to_cart":     "Add to cart",
		"btn_observation":     "Notes",
		"btn_close":           "Close",
		"btn_cart":            "Cart",
		"btn_menu":            "Menu",
		"btn_back":            "Back",
		"btn_clear":           "Clear",
		"btn_remove":          "Remove",
		"gluten_free":         "Gluten free",
		"lactose_free":        "Lactose free",
		"vegan":               "Vegan",
		"vegetarian":          "Vegetarian",
		"cmd_start":           "Open the menu",
		"cmd_menu":            "Categories",
		"cmd_cart":            "Show cart",
		"cmd_clear":           "Clear cart",
		"currency_symbol":     "R$",
		"decimal_separator":   ".",
		"thousands_separator": ",",
	},
}

// Normalize maps a Telegram language code ("pt-BR", "en-US") to a supported one.
func Normalize(code string) string {
	code = strings.ToLower(code)
	switch {
	case strings.HasPrefix(code, En):
		return En
	default:
		return Pt
	}
}

// T returns the message for key in l, falling back to Portuguese and then the key.
func T(l, key string, args ...interface{}) string {
	msg, ok := messages[l][key]
	if !ok {
		msg, ok = messages[Pt][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Currency formats an amount the way the menu shows prices: "R$ 1.234,50".
func Currency(l string, amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(T(l, "thousands_separator"))
		}
		b.WriteRune(r)
	}
	out := T(l, "currency_symbol") + " " + b.String() + T(l, "decimal_separator") + frac
	if neg {
		return "-" + out
	}
	return out
}
