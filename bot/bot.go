package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"mymenu-bot/config"
	"mymenu-bot/lang"
	"mymenu-bot/models"
	"mymenu-bot/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const storeTimeout = 5 * time.Second

// MenuSource is where the bot gets company menus from.
type MenuSource interface {
	GetMenu(ctx context.Context, companyID string) (*models.Menu, error)
	// Invalidate forgets a cached menu so the next GetMenu refetches it.
	Invalidate(companyID string)
}

// sender is the part of *tgbotapi.BotAPI the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	tg       *tgbotapi.BotAPI
	api      sender
	cfg      *config.Config
	catalog  MenuSource
	sessions *Sessions
	logger   *zap.Logger
}

func New(cfg *config.Config, catalog MenuSource, logger *zap.Logger) (*Bot, error) {
	tg, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	b := newBot(tg, cfg, catalog, logger)
	b.tg = tg
	logger.Info("telegram bot authorized", zap.String("username", tg.Self.UserName))
	return b, nil
}

func newBot(api sender, cfg *config.Config, catalog MenuSource, logger *zap.Logger) *Bot {
	return &Bot{
		api:      api,
		cfg:      cfg,
		catalog:  catalog,
		sessions: NewSessions(cfg.Session.TTL),
		logger:   logger,
	}
}

// Sessions exposes the registry, e.g. for the ops server.
func (b *Bot) Sessions() *Sessions {
	return b.sessions
}

func (b *Bot) setBotCommands() error {
	l := lang.Pt
	cfg := tgbotapi.SetMyCommandsConfig{
		Commands: []tgbotapi.BotCommand{
			{Command: "start", Description: lang.T(l, "cmd_start")},
			{Command: "menu", Description: lang.T(l, "cmd_menu")},
			{Command: "cart", Description: lang.T(l, "cmd_cart")},
			{Command: "clear", Description: lang.T(l, "cmd_clear")},
		},
	}
	_, err := b.api.Request(cfg)
	return err
}

// Start polls Telegram until ctx is cancelled. Updates are handled one at a
// time, so every event runs to completion before the next one.
func (b *Bot) Start(ctx context.Context) {
	if err := b.setBotCommands(); err != nil {
		b.logger.Warn("set bot commands", zap.Error(err))
	}
	go b.sweepSessions(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.tg.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) sweepSessions(ctx context.Context) {
	every := b.cfg.Session.TTL / 4
	if every < time.Minute {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if gone := b.sessions.Sweep(); len(gone) > 0 {
				b.logger.Info("sessions expired", zap.Int("count", len(gone)))
			}
			sctx, cancel := context.WithTimeout(ctx, storeTimeout)
			if n, err := services.PurgeStaleCarts(sctx, b.cfg.Session.TTL); err != nil {
				b.logger.Warn("purge stale carts", zap.Error(err))
			} else if n > 0 {
				b.logger.Info("stale carts purged", zap.Int64("count", n))
			}
			cancel()
		}
	}
}

// purgeStaleCarts drops stored carts older than the session TTL. A TTL <= 0
// keeps sessions forever, so stored carts are kept too.
func (b *Bot) purgeStaleCarts(ctx context.Context) {
	if b.cfg.Session.TTL <= 0 {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if n, err := services.PurgeStaleCarts(sctx, b.cfg.Session.TTL); err != nil {
		b.logger.Warn("purge stale carts", zap.Error(err))
	} else if n > 0 {
		b.logger.Info("stale carts purged", zap.Int64("count", n))
	}
}

// session locks and returns the chat's session, restoring a saved cart the
// first time the chat is seen.
func (b *Bot) session(ctx context.Context, chatID int64, from *tgbotapi.User) (*Session, func()) {
	sess, created, unlock := b.sessions.Acquire(chatID)
	if created {
		b.restoreCart(ctx, sess)
	}
	if sess.Lang == "" {
		code := ""
		if from != nil {
			code = from.LanguageCode
		}
		sess.Lang = lang.Normalize(code)
	}
	return sess, unlock
}

func (b *Bot) restoreCart(ctx context.Context, sess *Session) {
	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	snap, err := services.GetCart(sctx, sess.ChatID, b.cfg.Session.TTL)
	if err != nil {
		b.logger.Warn("restore cart", zap.Int64("chat_id", sess.ChatID), zap.Error(err))
		return
	}
	if snap == nil {
		return
	}
	sess.CompanyID = snap.CompanyID
	sess.Cart.Restore(snap.Items)
	b.logger.Debug("cart restored", zap.Int64("chat_id", sess.ChatID), zap.Int("lines", len(snap.Items)))
}

// persistCart mirrors the cart into the store. Failures are logged only; the
// in-memory cart stays authoritative.
func (b *Bot) persistCart(ctx context.Context, sess *Session) {
	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	var err error
	if sess.Cart.Len() == 0 {
		err = services.DeleteCart(sctx, sess.ChatID)
	} else {
		err = services.SaveCart(sctx, sess.ChatID, sess.CompanyID, sess.Cart)
	}
	if err != nil {
		b.logger.Warn("persist cart", zap.Int64("chat_id", sess.ChatID), zap.Error(err))
	}
}

func (b *Bot) loadMenu(ctx context.Context, sess *Session) (*models.Menu, string) {
	if sess.CompanyID == "" {
		return nil, "no_company"
	}
	menu, err := b.catalog.GetMenu(ctx, sess.CompanyID)
	switch {
	case errors.Is(err, services.ErrMenuNotFound):
		return nil, "menu_not_found"
	case err != nil:
		return nil, "menu_unavailable"
	}
	return menu, ""
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	sess, unlock := b.session(ctx, chatID, msg.From)
	defer unlock()
	l := sess.Lang

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			companyID := strings.TrimSpace(msg.CommandArguments())
			if companyID == "" {
				companyID = sess.CompanyID
			}
			if companyID == "" {
				companyID = b.cfg.Telegram.DefaultCompanyID
			}
			dropped := companyID != sess.CompanyID && sess.Cart.Len() > 0
			sess.SwitchCompany(companyID)
			if dropped {
				b.persistCart(ctx, sess)
			}
			// /start always shows the current menu
			b.catalog.Invalidate(companyID)
			menu, key := b.loadMenu(ctx, sess)
			if menu == nil {
				b.send(chatID, lang.T(l, key))
				return
			}
			b.sendCompanyPhoto(chatID, menu)
			b.sendCard(chatID, renderWelcome(menu, l))
		case "menu":
			menu, key := b.loadMenu(ctx, sess)
			if menu == nil {
				b.send(chatID, lang.T(l, key))
				return
			}
			b.sendCard(chatID, renderCategories(menu, l))
		case "cart":
			b.sendCard(chatID, renderCart(sess.Cart, l))
		case "clear":
			sess.Cart.Clear()
			b.persistCart(ctx, sess)
			b.send(chatID, lang.T(l, "cart_cleared"))
		}
		return
	}

	if sess.AwaitingObservation && sess.Draft != nil {
		sess.Observation = strings.TrimSpace(msg.Text)
		sess.AwaitingObservation = false
		b.send(chatID, lang.T(l, "observation_saved"))
		c := renderFood(sess.Food, sess.Draft, sess.Observation, l)
		if sess.CardMessageID != 0 {
			b.editCard(chatID, sess.CardMessageID, c)
			return
		}
		if sent, err := b.sendCard(chatID, c); err == nil {
			sess.CardMessageID = sent.MessageID
		}
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		b.answer(cq.ID, "", false)
		return
	}
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID
	sess, unlock := b.session(ctx, chatID, cq.From)
	defer unlock()
	l := sess.Lang

	action, arg := parseCallback(cq.Data)
	toast, alert := "", false

	switch action {
	case actMenu:
		menu, key := b.loadMenu(ctx, sess)
		if menu == nil {
			toast = lang.T(l, key)
			break
		}
		b.editCard(chatID, messageID, renderCategories(menu, l))

	case actCategory:
		menu, key := b.loadMenu(ctx, sess)
		if menu == nil {
			toast = lang.T(l, key)
			break
		}
		mc, ok := services.FindCategory(menu, arg)
		if !ok {
			toast = lang.T(l, "menu_not_found")
			break
		}
		b.editCard(chatID, messageID, renderCategory(mc, l))

	case actFood:
		menu, key := b.loadMenu(ctx, sess)
		if menu == nil {
			toast = lang.T(l, key)
			break
		}
		food, ok := services.FindFood(menu, arg)
		if !ok {
			toast = lang.T(l, "food_not_found")
			break
		}
		sess.OpenFood(*food)
		sess.CardMessageID = messageID
		b.editCard(chatID, messageID, renderFood(sess.Food, sess.Draft, sess.Observation, l))

	case actAdd:
		cat, added, err := sess.AddSubItem(arg)
		if err != nil {
			toast = lang.T(l, "no_draft")
			break
		}
		if !added {
			toast = lang.T(l, "max_reached", cat.MaxItems, cat.Title)
			break
		}
		b.editCard(chatID, messageID, renderFood(sess.Food, sess.Draft, sess.Observation, l))

	case actRemove:
		if err := sess.RemoveSubItem(arg); err != nil {
			toast = lang.T(l, "no_draft")
			break
		}
		b.editCard(chatID, messageID, renderFood(sess.Food, sess.Draft, sess.Observation, l))

	case actObserve:
		if sess.Draft == nil {
			toast = lang.T(l, "no_draft")
			break
		}
		sess.AwaitingObservation = true
		b.send(chatID, lang.T(l, "ask_observation"))

	case actConfirm:
		violations, line, err := sess.Confirm()
		if err != nil {
			toast = lang.T(l, "no_draft")
			break
		}
		if len(violations) > 0 {
			toast, alert = services.ValidationMessage(l, violations), true
			break
		}
		b.logger.Info("line added to cart",
			zap.Int64("chat_id", chatID),
			zap.String("food_id", line.ItemID),
			zap.Int("sub_items", len(line.Items)),
			zap.String("total", services.ComputeTotal(line).String()),
		)
		b.persistCart(ctx, sess)
		toast = lang.T(l, "added_to_cart")
		b.editCard(chatID, messageID, renderCart(sess.Cart, l))

	case actClose:
		sess.CloseDraft()
		menu, key := b.loadMenu(ctx, sess)
		if menu == nil {
			toast = lang.T(l, key)
			break
		}
		b.editCard(chatID, messageID, renderCategories(menu, l))

	case actCart:
		b.editCard(chatID, messageID, renderCart(sess.Cart, l))

	case actDelLine:
		if sess.Cart.RemoveItem(arg) {
			b.persistCart(ctx, sess)
			toast = lang.T(l, "line_removed")
		}
		b.editCard(chatID, messageID, renderCart(sess.Cart, l))

	case actClear:
		sess.Cart.Clear()
		b.persistCart(ctx, sess)
		toast = lang.T(l, "cart_cleared")
		b.editCard(chatID, messageID, renderCart(sess.Cart, l))
	}

	b.answer(cq.ID, toast, alert)
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendCompanyPhoto sends the company logo with its name and categories as the
// caption. Menus without an image send nothing.
func (b *Bot) sendCompanyPhoto(chatID int64, menu *models.Menu) {
	url := menu.Company.Image.ImageURL()
	if url == "" {
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
	photo.Caption = companyCaption(menu)
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Warn("send company photo", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendCard(chatID int64, c card) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, c.Text)
	msg.ReplyMarkup = c.Keyboard
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Warn("send card", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return sent, err
}

// editCard rewrites a message in place. "message is not modified" is expected
// when a capped click changes nothing and is ignored.
func (b *Bot) editCard(chatID int64, messageID int, c card) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, c.Text, c.Keyboard)
	if _, err := b.api.Send(edit); err != nil {
		if strings.Contains(err.Error(), "not modified") {
			return
		}
		b.logger.Warn("edit card", zap.Int64("chat_id", chatID), zap.Int("message_id", messageID), zap.Error(err))
	}
}

func (b *Bot) answer(callbackID, text string, alert bool) {
	cb := tgbotapi.NewCallback(callbackID, text)
	if alert {
		cb = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	if _, err := b.api.Request(cb); err != nil {
		b.logger.Debug("answer callback", zap.Error(err))
	}
}
