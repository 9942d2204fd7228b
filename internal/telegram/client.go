// Package telegram - тонкая обертка над telegram-bot-api для handlers.Messenger.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Client struct {
	api *tgbotapi.BotAPI
	log *slog.Logger
}

func New(token string, log *slog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	log.Info("бот авторизован", "username", api.Self.UserName)
	return &Client{api: api, log: log}, nil
}

func (c *Client) Send(ctx context.Context, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	_, err := c.api.Send(msg)
	return err
}

// Edit меняет текст и кнопки сообщения. "message is not modified" ошибкой не считается
func (c *Client) Edit(ctx context.Context, chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if markup != nil {
		edit.ReplyMarkup = markup
	}
	_, err := c.api.Request(edit)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

func (c *Client) Answer(ctx context.Context, callbackID, text string) error {
	_, err := c.api.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	_, err := c.api.Send(photo)
	return err
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, fileID, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID))
	doc.Caption = caption
	_, err := c.api.Send(doc)
	return err
}

// SetWebhook регистрирует адрес, на который Telegram будет слать апдейты
func (c *Client) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("webhook config: %w", err)
	}
	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// Poll - long polling (когда вебхук не настроен). Канал закрывается после отмены ctx
func (c *Client) Poll(ctx context.Context) <-chan tgbotapi.Update {
	if _, err := c.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		c.log.WarnContext(ctx, "не удалось удалить вебхук", "error", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		c.api.StopReceivingUpdates()
	}()
	return updates
}
