package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"tg_shop/auth"
	"tg_shop/internal/bot_commands"
	"tg_shop/internal/editor"
	menu "tg_shop/internal/keyboards"
	messages "tg_shop/internal/msg_gen"
	"tg_shop/internal/store"
	"tg_shop/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// (АДМИН) /admin
func (b *Bot) adminPanel(ctx context.Context, user *tgbotapi.User, chatID int64) {
	if _, err := b.guard.Authorize(ctx, user); err != nil {
		b.send(ctx, chatID, messages.AccessDenied, Markup{})
		return
	}
	b.send(ctx, chatID, messages.AdminText, menu.AdminPanel())
}

// (АДМИН) /cancel
func (b *Bot) cancelCommand(ctx context.Context, user *tgbotapi.User, chatID int64) {
	op, err := b.guard.Authorize(ctx, user)
	if err != nil {
		b.send(ctx, chatID, messages.AccessDenied, Markup{})
		return
	}
	if !b.editor.Cancel(ctx, op) {
		b.send(ctx, chatID, messages.NothingToCancel, menu.AdminPanel())
		return
	}
	b.send(ctx, chatID, messages.Cancelled, menu.AdminPanel())
}

// adminCallback - единственная точка проверки прав для кнопок админки
func (b *Bot) adminCallback(ctx context.Context, query *CallbackQuery, command, arg string) string {
	op, err := b.guard.Authorize(ctx, query.From)
	if err != nil {
		return messages.AccessDenied
	}

	switch command {
	case bot_commands.AdminAddProduct:
		state := b.editor.Start(ctx, op)
		text, markup := b.editorView(ctx, state)
		b.show(ctx, query, text, markup)

	case bot_commands.PickCategory:
		return b.editorButton(ctx, op, query, editor.CategoryChosen{ID: arg})
	case bot_commands.NewCategory:
		return b.editorButton(ctx, op, query, editor.NewCategoryChosen{})

	case bot_commands.Cancel, bot_commands.AdminBack:
		notice := ""
		if b.editor.Cancel(ctx, op) {
			notice = messages.Cancelled
		}
		b.show(ctx, query, messages.AdminText, menu.AdminPanel())
		return notice

	case bot_commands.AdminRemoveProduct:
		b.showRemoveList(ctx, query)
	case bot_commands.Remove:
		return b.removeItem(ctx, op, query, arg)

	case bot_commands.AdminViewOrders:
		return b.showOrders(ctx, query)
	case bot_commands.Deliver:
		return b.deliver(ctx, op, query, arg)
	}
	return ""
}

// Кнопки шага выбора категории
func (b *Bot) editorButton(ctx context.Context, op auth.Operator, query *CallbackQuery, ev editor.Event) string {
	state, err := b.editor.Handle(ctx, op, ev)
	switch {
	case err == nil:
		text, markup := b.editorView(ctx, state)
		b.show(ctx, query, text, markup)
		return ""
	case errors.Is(err, editor.ErrNoSession):
		b.show(ctx, query, messages.AdminText, menu.AdminPanel())
		return messages.SessionExpired
	case errors.Is(err, store.ErrNotFound):
		// категория пропала: показываем актуальный список
		text, markup := b.editorView(ctx, state)
		b.show(ctx, query, text, markup)
		return messages.NotFound
	case errors.Is(err, editor.ErrUnexpectedEvent), errors.Is(err, editor.ErrInvalidInput):
		return messages.EditorRetry(state)
	}
	b.log.ErrorContext(ctx, "ошибка редактора", "error", err)
	return messages.ErrorText
}

// Текст и файлы от админа во время добавления товара
func (b *Bot) editorInput(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID
	op, err := b.guard.Authorize(ctx, msg.From)
	if err != nil {
		b.send(ctx, chatID, messages.AccessDenied, Markup{})
		return
	}

	var ev editor.Event
	switch {
	case msg.Document != nil:
		ev = editor.FileAttached{FileID: msg.Document.FileID, Kind: models.AttachmentDocument}
	case len(msg.Photo) > 0:
		ev = editor.FileAttached{FileID: msg.Photo[len(msg.Photo)-1].FileID, Kind: models.AttachmentPhoto}
	default:
		ev = editor.TextEntered{Text: msg.Text}
	}

	state, err := b.editor.Handle(ctx, op, ev)
	switch {
	case err == nil:
		text, markup := b.editorView(ctx, state)
		b.send(ctx, chatID, text, markup)
	case errors.Is(err, editor.ErrInvalidInput), errors.Is(err, editor.ErrUnexpectedEvent):
		_, markup := b.editorView(ctx, state)
		b.send(ctx, chatID, messages.EditorRetry(state), markup)
	case errors.Is(err, editor.ErrNoSession):
		b.send(ctx, chatID, messages.SessionExpired, menu.AdminPanel())
	default:
		b.log.ErrorContext(ctx, "ошибка записи каталога из редактора", "error", err)
		_, markup := b.editorView(ctx, state)
		b.send(ctx, chatID, messages.ErrorText, markup)
	}
}

// Подсказка и клавиатура для состояния редактора
func (b *Bot) editorView(ctx context.Context, state editor.State) (string, Markup) {
	switch state.(type) {
	case editor.SelectCategory:
		return messages.EditorPrompt(state), menu.EditorCategories(b.catalog.Load(ctx))
	case editor.Done, editor.Cancelled:
		return messages.EditorPrompt(state), menu.AdminPanel()
	}
	return messages.EditorPrompt(state), menu.EditorCancel()
}

func (b *Bot) showRemoveList(ctx context.Context, query *CallbackQuery) {
	catalog := b.catalog.Load(ctx)
	text := "Выберите товар для удаления:"
	if len(menu.RemoveList(catalog).InlineKeyboard) == 1 {
		text = "В каталоге нет товаров"
	}
	b.show(ctx, query, text, menu.RemoveList(catalog))
}

func (b *Bot) removeItem(ctx context.Context, op auth.Operator, query *CallbackQuery, itemID string) string {
	removed, err := b.catalog.RemoveItem(ctx, itemID)
	if err != nil {
		return messages.ErrorText
	}
	b.log.InfoContext(ctx, "удаление товара", "operator_id", op.ID(), "item_id", itemID, "removed", removed)
	b.showRemoveList(ctx, query)
	if !removed {
		return messages.NotFound
	}
	return "Товар удален"
}

func (b *Bot) showOrders(ctx context.Context, query *CallbackQuery) string {
	orders, err := b.orders.List(ctx)
	if err != nil {
		b.log.ErrorContext(ctx, "ошибка чтения заказов", "error", err)
		return messages.ErrorText
	}
	b.show(ctx, query, messages.OrdersText(orders), menu.OrdersActions(orders))
	return ""
}

// deliver - выдача заказа: pending -> fulfilled, затем файлы товаров покупателю.
// Если файлы не ушли, статус возвращается в pending, чтобы выдачу можно было повторить
func (b *Bot) deliver(ctx context.Context, op auth.Operator, query *CallbackQuery, arg string) string {
	buyerID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return messages.NotFound
	}

	order, err := b.orders.UpdateStatus(ctx, buyerID, models.StatusPending, models.StatusFulfilled)
	switch {
	case errors.Is(err, store.ErrStatusMismatch):
		b.showOrders(ctx, query)
		return messages.AlreadyProcessed
	case errors.Is(err, store.ErrNotFound):
		return messages.NotFound
	case err != nil:
		b.log.ErrorContext(ctx, "ошибка обновления статуса", "buyer_id", buyerID, "error", err)
		return messages.ErrorText
	}

	if err := b.sendFiles(ctx, order); err != nil {
		b.log.ErrorContext(ctx, "ошибка выдачи файлов", "buyer_id", buyerID, "error", err)
		if _, rerr := b.orders.UpdateStatus(ctx, buyerID, models.StatusFulfilled, models.StatusPending); rerr != nil {
			b.log.ErrorContext(ctx, "не удалось вернуть статус заказа", "buyer_id", buyerID, "error", rerr)
		}
		return messages.ErrorText
	}

	b.log.InfoContext(ctx, "заказ выдан", "operator_id", op.ID(), "buyer_id", buyerID, "total", order.Total)
	b.showOrders(ctx, query)
	return messages.Delivered(buyerID)
}

func (b *Bot) sendFiles(ctx context.Context, order models.Order) error {
	if err := b.msg.Send(ctx, order.UserID, messages.DeliveryText(order), nil); err != nil {
		return err
	}
	for _, line := range order.Items {
		if err := b.msg.SendDocument(ctx, order.UserID, line.FileID, line.Name); err != nil {
			return err
		}
	}
	return nil
}

// RunJanitor периодически завершает брошенные сессии редактора и сообщает об этом админу
func (b *Bot) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.expireSessions(ctx)
		}
	}
}

func (b *Bot) expireSessions(ctx context.Context) {
	for _, userID := range b.editor.Sweep(b.now()) {
		b.log.InfoContext(ctx, "сессия редактора истекла", "user_id", userID)
		b.send(ctx, userID, messages.SessionExpired, menu.AdminPanel())
	}
}
