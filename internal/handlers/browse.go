package handlers

import (
	"context"
	"errors"

	menu "tg_shop/internal/keyboards"
	messages "tg_shop/internal/msg_gen"
	"tg_shop/internal/store"
)

// Каталог читается заново на каждом шаге, чтобы правки админа были видны сразу

func (b *Bot) showCatalog(ctx context.Context, query *CallbackQuery) {
	catalog := b.catalog.Load(ctx)
	b.show(ctx, query, messages.CatalogText(catalog), menu.Categories(catalog))
}

func (b *Bot) showCategory(ctx context.Context, query *CallbackQuery, categoryID string) string {
	cat, err := b.catalog.FindCategory(ctx, categoryID)
	if err != nil {
		return b.lookupFailed(ctx, err, "category_id", categoryID)
	}
	b.show(ctx, query, messages.CategoryText(cat), menu.Items(cat))
	return ""
}

func (b *Bot) showItem(ctx context.Context, query *CallbackQuery, itemID string) string {
	item, cat, err := b.catalog.FindItem(ctx, itemID)
	if err != nil {
		return b.lookupFailed(ctx, err, "item_id", itemID)
	}
	b.show(ctx, query, messages.ItemText(item), menu.ItemActions(item, cat.ID))
	return ""
}

func (b *Bot) addToCart(ctx context.Context, query *CallbackQuery, itemID string) string {
	line, err := b.carts.AddItem(ctx, query.From.ID, itemID)
	if err != nil {
		return b.lookupFailed(ctx, err, "item_id", itemID)
	}
	b.log.InfoContext(ctx, "товар добавлен в корзину", "item_id", itemID, "quantity", line.Quantity)
	return messages.AddedToCart
}

// Текст уведомления для устаревшей кнопки или ошибки хранилища
func (b *Bot) lookupFailed(ctx context.Context, err error, key, id string) string {
	if errors.Is(err, store.ErrNotFound) {
		b.log.InfoContext(ctx, "устаревшая ссылка", key, id)
		return messages.NotFound
	}
	b.log.ErrorContext(ctx, "ошибка каталога", key, id, "error", err)
	return messages.ErrorText
}
