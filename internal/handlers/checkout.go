package handlers

import (
	"context"

	menu "tg_shop/internal/keyboards"
	messages "tg_shop/internal/msg_gen"
)

func (b *Bot) viewCart(ctx context.Context, query *CallbackQuery) {
	cart := b.carts.Get(ctx, query.From.ID)
	b.show(ctx, query, messages.CartText(cart), menu.CartActions(cart))
}

// Очистка + повторный показ (уже пустой) корзины
func (b *Bot) clearCart(ctx context.Context, query *CallbackQuery) string {
	if err := b.carts.Clear(ctx, query.From.ID); err != nil {
		return messages.ErrorText
	}
	b.viewCart(ctx, query)
	return ""
}

// Инструкция по оплате. Пустая корзина - только уведомление, без изменений
func (b *Bot) checkout(ctx context.Context, query *CallbackQuery) string {
	cart := b.carts.Get(ctx, query.From.ID)
	if len(cart) == 0 {
		return messages.EmptyCartNotice
	}
	b.log.InfoContext(ctx, "оформление заказа", "total", cart.Total(), "lines", len(cart))
	b.show(ctx, query, messages.PaymentText(cart.Total(), query.From.ID, b.payment), menu.CheckoutActions())
	return ""
}

func (b *Bot) confirmPayment(ctx context.Context, query *CallbackQuery) {
	b.send(ctx, chatOf(query), messages.ReceiptRequest, Markup{})
}
