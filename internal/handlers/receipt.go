package handlers

import (
	"context"
	"fmt"

	messages "tg_shop/internal/msg_gen"
	"tg_shop/models"
)

// receipt - чек от покупателя: заказ -> уведомление проверяющему -> очистка корзины.
// Корзина очищается только после успешного уведомления
func (b *Bot) receipt(ctx context.Context, msg *Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	cart := b.carts.Get(ctx, userID)
	if len(cart) == 0 {
		b.send(ctx, chatID, messages.EmptyCartNotice, Markup{})
		return
	}

	attachment, ok := receiptAttachment(msg)
	if !ok {
		b.send(ctx, chatID, messages.ReceiptRequest, Markup{})
		return
	}

	order := models.Order{
		UserID:        userID,
		Username:      msg.From.UserName,
		Date:          b.now(),
		Items:         cart,
		Total:         cart.Total(),
		Status:        models.StatusPending,
		ReceiptFileID: attachment.FileID,
		ReceiptKind:   attachment.Kind,
	}
	if err := b.orders.Submit(ctx, order); err != nil {
		b.send(ctx, chatID, messages.StorageError, Markup{})
		return
	}

	if err := b.notifyReviewer(ctx, order); err != nil {
		b.log.ErrorContext(ctx, "ошибка уведомления проверяющего", "reviewer_id", b.reviewer, "error", err)
		b.send(ctx, chatID, messages.NotifyError, Markup{})
		return
	}

	if err := b.carts.Clear(ctx, userID); err != nil {
		b.log.ErrorContext(ctx, "корзина не очищена после заказа", "error", err)
	}
	b.log.InfoContext(ctx, "заказ принят", "total", order.Total, "receipt_kind", order.ReceiptKind)
	b.send(ctx, chatID, messages.ReceiptAccepted, Markup{})
}

// Текст заказа, затем сам файл чека
func (b *Bot) notifyReviewer(ctx context.Context, order models.Order) error {
	if err := b.msg.Send(ctx, b.reviewer, messages.ReviewerNotification(order), nil); err != nil {
		return fmt.Errorf("send order: %w", err)
	}
	caption := "Чек " + messages.PaymentReference(order.UserID)
	var err error
	switch order.ReceiptKind {
	case models.AttachmentPhoto:
		err = b.msg.SendPhoto(ctx, b.reviewer, order.ReceiptFileID, caption)
	default:
		err = b.msg.SendDocument(ctx, b.reviewer, order.ReceiptFileID, caption)
	}
	if err != nil {
		return fmt.Errorf("forward receipt: %w", err)
	}
	return nil
}

// Самое большое фото (по площади), иначе документ
func receiptAttachment(msg *Message) (models.Attachment, bool) {
	if len(msg.Photo) > 0 {
		best := msg.Photo[0]
		for _, p := range msg.Photo[1:] {
			if p.Width*p.Height >= best.Width*best.Height {
				best = p
			}
		}
		return models.Attachment{FileID: best.FileID, Kind: models.AttachmentPhoto}, true
	}
	if msg.Document != nil && msg.Document.FileID != "" {
		return models.Attachment{FileID: msg.Document.FileID, Kind: models.AttachmentDocument}, true
	}
	return models.Attachment{}, false
}
