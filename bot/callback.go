package bot

import "strings"

// Callback actions carried in inline button data as "<action>:<arg>".
const (
	actMenu     = "menu"  // list categories
	actCategory = "cat"   // cat:<menuCategoryID>
	actFood     = "food"  // food:<foodID>, opens a draft
	actAdd      = "add"   // add:<foodItemID>
	actRemove   = "rem"   // rem:<foodItemID>
	actObserve  = "obs"   // ask for a free-text observation
	actConfirm  = "ok"    // validate and add to cart
	actClose    = "close" // discard the draft
	actCart     = "cart"
	actDelLine  = "del" // del:<orderItemID>
	actClear    = "clear"
	actNoop     = "noop" // counters and headers
)

// callbackData must stay within Telegram's 64 bytes; catalog ids are uuids.
func callbackData(action, arg string) string {
	if arg == "" {
		return action
	}
	return action + ":" + arg
}

func parseCallback(data string) (action, arg string) {
	action, arg, _ = strings.Cut(data, ":")
	return action, arg
}
