package menu

import (
	"fmt"
	"strconv"
	"tg_shop/internal/bot_commands"
	"tg_shop/internal/utils"
	"tg_shop/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Markup = tgbotapi.InlineKeyboardMarkup

var (
	cmd    = utils.Cmd
	cmdArg = utils.CmdArg
)

func button(text, data string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(text, data))
}

// Главное меню пользователя
func StartMenu() Markup {
	return tgbotapi.NewInlineKeyboardMarkup(
		button("🛍 Каталог", cmd(bot_commands.Catalog)),
		button("🛒 Корзина", cmd(bot_commands.ViewCart)),
	)
}

// Список категорий каталога, по кнопке на категорию
func Categories(catalog models.Catalog) Markup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(catalog.Categories)+1)
	for _, cat := range catalog.Categories {
		rows = append(rows, button(cat.Name, cmdArg(bot_commands.Category, cat.ID)))
	}
	rows = append(rows, button("⬅️ Меню", cmd(bot_commands.MainMenu)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Товары категории с ценой
func Items(cat models.Category) Markup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(cat.Items)+1)
	for _, item := range cat.Items {
		rows = append(rows, button(fmt.Sprintf("%s — %d ₽", item.Name, item.Price), cmdArg(bot_commands.Item, item.ID)))
	}
	rows = append(rows, button("⬅️ К категориям", cmd(bot_commands.Catalog)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Карточка товара: добавить в корзину / назад в категорию
func ItemActions(item models.Item, categoryID string) Markup {
	return tgbotapi.NewInlineKeyboardMarkup(
		button("➕ В корзину", cmdArg(bot_commands.Add, item.ID)),
		button("🛒 Корзина", cmd(bot_commands.ViewCart)),
		button("⬅️ Назад", cmdArg(bot_commands.Category, categoryID)),
	)
}

// Действия с корзиной. Для пустой корзины - только навигация
func CartActions(cart models.Cart) Markup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if len(cart) > 0 {
		rows = append(rows,
			button("💳 Оформить заказ", cmd(bot_commands.Checkout)),
			button("🗑 Очистить корзину", cmd(bot_commands.ClearCart)),
		)
	}
	rows = append(rows,
		button("🛍 Каталог", cmd(bot_commands.Catalog)),
		button("⬅️ Меню", cmd(bot_commands.MainMenu)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func CheckoutActions() Markup {
	return tgbotapi.NewInlineKeyboardMarkup(
		button("✅ Я оплатил", cmd(bot_commands.ConfirmPayment)),
		button("⬅️ Назад в корзину", cmd(bot_commands.ViewCart)),
	)
}

// (АДМИН) Панель администратора
func AdminPanel() Markup {
	return tgbotapi.NewInlineKeyboardMarkup(
		button("➕ Добавить товар", cmd(bot_commands.AdminAddProduct)),
		button("➖ Удалить товар", cmd(bot_commands.AdminRemoveProduct)),
		button("📦 Заказы", cmd(bot_commands.AdminViewOrders)),
	)
}

// (АДМИН) Первый шаг редактора: существующие категории + новая
func EditorCategories(catalog models.Catalog) Markup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(catalog.Categories)+2)
	for _, cat := range catalog.Categories {
		rows = append(rows, button(cat.Name, cmdArg(bot_commands.PickCategory, cat.ID)))
	}
	rows = append(rows,
		button("🆕 Новая категория", cmd(bot_commands.NewCategory)),
		button("❌ Отмена", cmd(bot_commands.Cancel)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// (АДМИН) Кнопка отмены для шагов с вводом текста/файла
func EditorCancel() Markup {
	return tgbotapi.NewInlineKeyboardMarkup(button("❌ Отмена", cmd(bot_commands.Cancel)))
}

// (АДМИН) Все товары каталога кнопками удаления
func RemoveList(catalog models.Catalog) Markup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, cat := range catalog.Categories {
		for _, item := range cat.Items {
			text := fmt.Sprintf("❌ %s / %s", cat.Name, item.Name)
			rows = append(rows, button(text, cmdArg(bot_commands.Remove, item.ID)))
		}
	}
	rows = append(rows, button("⬅️ Назад", cmd(bot_commands.AdminBack)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// (АДМИН) Кнопка выдачи для каждого заказа в статусе pending
func OrdersActions(orders []models.Order) Markup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, order := range orders {
		if order.Status != models.StatusPending {
			continue
		}
		id := strconv.FormatInt(order.UserID, 10)
		rows = append(rows, button(fmt.Sprintf("📤 Выдать заказ %s", id), cmdArg(bot_commands.Deliver, id)))
	}
	rows = append(rows, button("⬅️ Назад", cmd(bot_commands.AdminBack)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
