package handlers

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"tg_shop/auth"
	"tg_shop/internal/bot_commands"
	"tg_shop/internal/editor"
	menu "tg_shop/internal/keyboards"
	messages "tg_shop/internal/msg_gen"
	"tg_shop/internal/store"
	"tg_shop/internal/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type (
	CallbackQuery = tgbotapi.CallbackQuery
	Message       = tgbotapi.Message
	Update        = tgbotapi.Update
	Markup        = tgbotapi.InlineKeyboardMarkup
)

var decode_request = utils.Decode_request

// Messenger - исходящие вызовы Telegram, которые нужны боту
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string, markup *Markup) error
	Edit(ctx context.Context, chatID int64, messageID int, text string, markup *Markup) error
	// Answer отвечает на нажатие кнопки (text - всплывающее уведомление, может быть пустым)
	Answer(ctx context.Context, callbackID, text string) error
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error
	SendDocument(ctx context.Context, chatID int64, fileID, caption string) error
}

type Options struct {
	Messenger      Messenger
	Catalog        *store.CatalogStore
	Carts          *store.CartStore
	Orders         *store.OrderStore
	Editor         *editor.Machine
	Guard          *auth.Guard
	ReviewerID     int64
	PaymentDetails string
	Log            *slog.Logger
}

type Bot struct {
	msg      Messenger
	catalog  *store.CatalogStore
	carts    *store.CartStore
	orders   *store.OrderStore
	editor   *editor.Machine
	guard    *auth.Guard
	reviewer int64
	payment  string
	log      *slog.Logger
	now      func() time.Time
	locks    *userLocks
}

func NewBot(opts Options) *Bot {
	return &Bot{
		msg:      opts.Messenger,
		catalog:  opts.Catalog,
		carts:    opts.Carts,
		orders:   opts.Orders,
		editor:   opts.Editor,
		guard:    opts.Guard,
		reviewer: opts.ReviewerID,
		payment:  opts.PaymentDetails,
		log:      opts.Log,
		now:      time.Now,
		locks:    newUserLocks(),
	}
}

// HandleUpdate обрабатывает один апдейт. Апдейты одного пользователя выполняются по очереди
func (b *Bot) HandleUpdate(ctx context.Context, update Update) {
	user := sender(update)
	if user == nil {
		return
	}
	ctx = utils.WithUpdate(ctx, update.UpdateID, user.ID)

	unlock := b.locks.lock(user.ID)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			b.log.ErrorContext(ctx, "panic при обработке апдейта", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func sender(update Update) *tgbotapi.User {
	switch {
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From
	case update.Message != nil:
		return update.Message.From
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case bot_commands.Start:
			b.send(ctx, chatID, messages.StartText, menu.StartMenu())
		case bot_commands.Admin:
			b.adminPanel(ctx, msg.From, chatID)
		case bot_commands.Cancel:
			b.cancelCommand(ctx, msg.From, chatID)
		default:
			b.send(ctx, chatID, messages.StartText, menu.StartMenu())
		}
		return
	}

	// Ввод админа во время добавления товара уходит в редактор
	if b.guard.IsOperator(userID) && b.editor.Active(userID) {
		b.editorInput(ctx, msg)
		return
	}

	if len(msg.Photo) > 0 || msg.Document != nil {
		b.receipt(ctx, msg)
		return
	}

	b.send(ctx, chatID, messages.StartText, menu.StartMenu())
}

func (b *Bot) handleCallback(ctx context.Context, query *CallbackQuery) {
	data := decode_request(query.Data)
	b.log.DebugContext(ctx, "callback", "command", data.Command, "arg", data.Arg)

	var notice string
	switch data.Command {
	case bot_commands.Start, bot_commands.MainMenu:
		b.show(ctx, query, messages.StartText, menu.StartMenu())

	case bot_commands.Catalog:
		b.showCatalog(ctx, query)
	case bot_commands.Category:
		notice = b.showCategory(ctx, query, data.Arg)
	case bot_commands.Item:
		notice = b.showItem(ctx, query, data.Arg)
	case bot_commands.Add:
		notice = b.addToCart(ctx, query, data.Arg)

	case bot_commands.ViewCart:
		b.viewCart(ctx, query)
	case bot_commands.ClearCart:
		notice = b.clearCart(ctx, query)
	case bot_commands.Checkout:
		notice = b.checkout(ctx, query)
	case bot_commands.ConfirmPayment:
		b.confirmPayment(ctx, query)

	case bot_commands.AdminAddProduct, bot_commands.AdminRemoveProduct, bot_commands.AdminViewOrders,
		bot_commands.AdminBack, bot_commands.NewCategory, bot_commands.Cancel,
		bot_commands.PickCategory, bot_commands.Remove, bot_commands.Deliver:
		notice = b.adminCallback(ctx, query, data.Command, data.Arg)

	default:
		b.log.WarnContext(ctx, "неизвестная команда", "data", query.Data)
		notice = messages.ErrorText
	}

	if err := b.msg.Answer(ctx, query.ID, notice); err != nil {
		b.log.WarnContext(ctx, "ошибка ответа на callback", "error", err)
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, markup Markup) {
	var m *Markup
	if len(markup.InlineKeyboard) > 0 {
		m = &markup
	}
	if err := b.msg.Send(ctx, chatID, text, m); err != nil {
		b.log.ErrorContext(ctx, "ошибка отправки сообщения", "chat_id", chatID, "error", err)
	}
}

// show заменяет сообщение с нажатой кнопкой; если это невозможно - отправляет новое
func (b *Bot) show(ctx context.Context, query *CallbackQuery, text string, markup Markup) {
	if query.Message == nil || query.Message.Chat == nil {
		b.send(ctx, query.From.ID, text, markup)
		return
	}
	chatID := query.Message.Chat.ID
	if err := b.msg.Edit(ctx, chatID, query.Message.MessageID, text, &markup); err != nil {
		b.log.DebugContext(ctx, "не удалось изменить сообщение, отправляем новое", "error", err)
		b.send(ctx, chatID, text, markup)
	}
}

func chatOf(query *CallbackQuery) int64 {
	if query.Message != nil && query.Message.Chat != nil {
		return query.Message.Chat.ID
	}
	return query.From.ID
}
