package messages

import (
	"fmt"
	"strconv"
	"strings"
	"tg_shop/internal/editor"
	"tg_shop/models"
)

const dateLayout = "02.01.2006 15:04"

const (
	StartText       = "Добро пожаловать! Выберите раздел:"
	AdminText       = "Панель администратора:"
	AccessDenied    = "⛔ Доступ запрещен"
	NotFound        = "Не найдено. Возможно, товар или категория были удалены"
	AddedToCart     = "✅ Добавлено в корзину"
	EmptyCartNotice = "Корзина пуста"
	Cancelled       = "Операция отменена"
	NothingToCancel = "Нет активной операции"
	SessionExpired  = "⌛ Добавление товара отменено: нет действий слишком долго"
	StorageError    = "⚠️ Не удалось сохранить заказ. Попробуйте отправить чек еще раз"
	NotifyError     = "⚠️ Не удалось передать заказ администратору. Попробуйте отправить чек еще раз"
	ReceiptAccepted = "✅ Чек получен! Заказ передан на проверку, после подтверждения оплаты файлы придут в этот чат"
	ReceiptRequest  = "📎 Отправьте фото или скан чека об оплате.\n" +
		"На чеке должны быть видны сумма, дата и комментарий к платежу."
	ErrorText = "⚠️ Что-то пошло не так, попробуйте позже"
)

// Комментарий к платежу, по которому администратор найдет покупателя
func PaymentReference(userID int64) string {
	return "ORDER_" + strconv.FormatInt(userID, 10)
}

func CatalogText(catalog models.Catalog) string {
	if len(catalog.Categories) == 0 {
		return "Каталог пока пуст"
	}
	return "Выберите категорию:"
}

func CategoryText(cat models.Category) string {
	if len(cat.Items) == 0 {
		return fmt.Sprintf("📂 %s\n\nВ этой категории пока нет товаров", cat.Name)
	}
	return fmt.Sprintf("📂 %s\n\nВыберите товар:", cat.Name)
}

func ItemText(item models.Item) string {
	return fmt.Sprintf("📄 %s\n\nЦена: %d ₽", item.Name, item.Price)
}

// Содержимое корзины с подытогами и общей суммой
func CartText(cart models.Cart) string {
	if len(cart) == 0 {
		return "🛒 Ваша корзина пуста"
	}
	var message strings.Builder
	message.WriteString("🛒 Ваша корзина:\n\n")
	for i, line := range cart {
		message.WriteString(fmt.Sprintf("%d. %s x%d = %d ₽\n", i+1, line.Name, line.Quantity, line.Subtotal()))
	}
	message.WriteString(fmt.Sprintf("\nИтого: %d ₽", cart.Total()))
	return message.String()
}

// Инструкция по оплате. details - реквизиты из конфигурации
func PaymentText(total int64, userID int64, details string) string {
	var message strings.Builder
	message.WriteString(fmt.Sprintf("💳 Сумма к оплате: %d ₽\n\n", total))
	message.WriteString("Реквизиты:\n")
	message.WriteString(details)
	message.WriteString("\n\nВ комментарии к платежу укажите: ")
	message.WriteString(PaymentReference(userID))
	message.WriteString("\n\nПосле оплаты нажмите «Я оплатил» и отправьте чек.")
	return message.String()
}

// Уведомление проверяющему о новом заказе (чек отправляется следом отдельным сообщением)
func ReviewerNotification(order models.Order) string {
	var message strings.Builder
	message.WriteString("🆕 Новый заказ\n\n")
	message.WriteString(fmt.Sprintf("Покупатель: %s (ID %d)\n", displayName(order.Username), order.UserID))
	message.WriteString(fmt.Sprintf("Комментарий: %s\n", PaymentReference(order.UserID)))
	message.WriteString(fmt.Sprintf("Дата: %s\n\n", order.Date.Format(dateLayout)))
	writeLines(&message, order.Items)
	message.WriteString(fmt.Sprintf("\nИтого: %d ₽", order.Total))
	return message.String()
}

// (АДМИН) Список заказов
func OrdersText(orders []models.Order) string {
	if len(orders) == 0 {
		return "Заказов нет"
	}
	var message strings.Builder
	message.WriteString("📦 Заказы:\n")
	for _, order := range orders {
		message.WriteString(fmt.Sprintf("\n%s (ID %d)\n%s | %d ₽ | %s\n",
			displayName(order.Username),
			order.UserID,
			order.Date.Format(dateLayout),
			order.Total,
			statusText(order.Status)))
		writeLines(&message, order.Items)
	}
	return message.String()
}

// Сообщение покупателю при выдаче заказа
func DeliveryText(order models.Order) string {
	return fmt.Sprintf("🎉 Оплата подтверждена! Ваш заказ на %d ₽, файлы ниже:", order.Total)
}

func Delivered(userID int64) string {
	return fmt.Sprintf("Заказ %d выдан", userID)
}

const AlreadyProcessed = "Заказ уже обработан"

// (АДМИН) Подсказка для текущего шага редактора
func EditorPrompt(s editor.State) string {
	switch st := s.(type) {
	case editor.SelectCategory:
		return "Выберите категорию для нового товара или создайте новую:"
	case editor.NameCategory:
		return "Введите название новой категории:"
	case editor.NameItem:
		if st.Category.Created {
			return fmt.Sprintf("Категория «%s» создана.\nВведите название товара:", st.Category.Name)
		}
		return fmt.Sprintf("Категория: %s\nВведите название товара:", st.Category.Name)
	case editor.PriceItem:
		return fmt.Sprintf("Товар: %s\nВведите цену (целое число, ₽):", st.Name)
	case editor.AttachFile:
		return fmt.Sprintf("Товар: %s, %d ₽\nОтправьте файл товара документом:", st.Name, st.Price)
	case editor.Done:
		return fmt.Sprintf("✅ Товар «%s» (%d ₽) добавлен в категорию «%s»", st.Item.Name, st.Item.Price, st.Category.Name)
	case editor.Cancelled:
		return Cancelled
	}
	return ErrorText
}

// (АДМИН) Повторный запрос при неверном вводе
func EditorRetry(s editor.State) string {
	switch s.(type) {
	case editor.SelectCategory:
		return "Выберите категорию кнопкой ниже"
	case editor.PriceItem:
		return "❗ Цена должна быть целым неотрицательным числом. Попробуйте еще раз:"
	case editor.AttachFile:
		return "❗ Нужен файл, отправленный как документ. Попробуйте еще раз:"
	}
	return "❗ Ожидается текст. " + EditorPrompt(s)
}

func writeLines(message *strings.Builder, lines []models.CartLine) {
	for _, line := range lines {
		message.WriteString(fmt.Sprintf("• %s x%d = %d ₽\n", line.Name, line.Quantity, line.Subtotal()))
	}
}

func statusText(status models.OrderStatus) string {
	switch status {
	case models.StatusPending:
		return "ожидает проверки"
	case models.StatusFulfilled:
		return "выдан"
	}
	return string(status)
}

func displayName(username string) string {
	if username == "" {
		return "без имени"
	}
	if strings.HasPrefix(username, "@") {
		return username
	}
	return "@" + username
}
