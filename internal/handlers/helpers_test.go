package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tg_shop/auth"
	db "tg_shop/internal/database"
	"tg_shop/internal/editor"
	"tg_shop/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
)

const (
	operatorID = int64(1000)
	reviewerID = int64(2000)
	buyerID    = int64(555)
)

type sent struct {
	Kind   string // send, edit, photo, document
	ChatID int64
	Text   string
	FileID string
	Markup *Markup
}

// recorder - Messenger, который запоминает все исходящие вызовы
type recorder struct {
	mu      sync.Mutex
	sent    []sent
	answers []string
	failTo  map[int64]error
}

func (r *recorder) fail(chatID int64) error {
	if r.failTo != nil {
		return r.failTo[chatID]
	}
	return nil
}

func (r *recorder) Send(_ context.Context, chatID int64, text string, markup *Markup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(chatID); err != nil {
		return err
	}
	r.sent = append(r.sent, sent{Kind: "send", ChatID: chatID, Text: text, Markup: markup})
	return nil
}

func (r *recorder) Edit(_ context.Context, chatID int64, _ int, text string, markup *Markup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{Kind: "edit", ChatID: chatID, Text: text, Markup: markup})
	return nil
}

func (r *recorder) Answer(_ context.Context, _ string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers = append(r.answers, text)
	return nil
}

func (r *recorder) SendPhoto(_ context.Context, chatID int64, fileID, caption string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(chatID); err != nil {
		return err
	}
	r.sent = append(r.sent, sent{Kind: "photo", ChatID: chatID, FileID: fileID, Text: caption})
	return nil
}

func (r *recorder) SendDocument(_ context.Context, chatID int64, fileID, caption string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(chatID); err != nil {
		return err
	}
	r.sent = append(r.sent, sent{Kind: "document", ChatID: chatID, FileID: fileID, Text: caption})
	return nil
}

func (r *recorder) last() sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return sent{}
	}
	return r.sent[len(r.sent)-1]
}

func (r *recorder) lastAnswer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.answers) == 0 {
		return ""
	}
	return r.answers[len(r.answers)-1]
}

func (r *recorder) to(chatID int64) []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sent
	for _, s := range r.sent {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

// failingDocs ломает запись в хранилище
type failingDocs struct {
	*db.MemoryStore
}

func (failingDocs) Update(context.Context, string, func([]byte) ([]byte, error)) error {
	return errors.New("disk full")
}

type shop struct {
	bot     *Bot
	msg     *recorder
	docs    *db.MemoryStore
	catalog *store.CatalogStore
	carts   *store.CartStore
	orders  *store.OrderStore
	editor  *editor.Machine
	nextID  atomic.Int64
}

func newShop(t *testing.T) *shop {
	t.Helper()
	return newShopWithOrders(t, nil)
}

// orderDocs - отдельное хранилище для заказов (nil - общее)
func newShopWithOrders(t *testing.T, orderDocs db.DocStore) *shop {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	docs := db.NewMemoryStore()
	if orderDocs == nil {
		orderDocs = docs
	}

	s := &shop{msg: &recorder{}, docs: docs}
	s.catalog = store.NewCatalogStore(docs, log)
	s.carts = store.NewCartStore(docs, s.catalog, log)
	s.orders = store.NewOrderStore(orderDocs, log)
	s.editor = editor.NewMachine(s.catalog, 15*time.Minute, log)
	s.bot = NewBot(Options{
		Messenger:      s.msg,
		Catalog:        s.catalog,
		Carts:          s.carts,
		Orders:         s.orders,
		Editor:         s.editor,
		Guard:          auth.NewGuard(operatorID, log),
		ReviewerID:     reviewerID,
		PaymentDetails: "Карта 0000 0000",
		Log:            log,
	})
	s.bot.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func (s *shop) update() int {
	return int(s.nextID.Add(1))
}

func (s *shop) click(userID int64, data string) {
	s.bot.HandleUpdate(context.Background(), Update{
		UpdateID: s.update(),
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: userID, UserName: "user"},
			Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: userID}},
			Data:    data,
		},
	})
}

func (s *shop) message(userID int64, msg tgbotapi.Message) {
	msg.From = &tgbotapi.User{ID: userID, UserName: "user"}
	msg.Chat = &tgbotapi.Chat{ID: userID}
	s.bot.HandleUpdate(context.Background(), Update{UpdateID: s.update(), Message: &msg})
}

func (s *shop) text(userID int64, text string) {
	s.message(userID, tgbotapi.Message{Text: text})
}

func (s *shop) command(userID int64, name string) {
	s.message(userID, tgbotapi.Message{
		Text:     "/" + name,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name) + 1}},
	})
}

func (s *shop) document(userID int64, fileID string) {
	s.message(userID, tgbotapi.Message{Document: &tgbotapi.Document{FileID: fileID, FileName: "f.pdf"}})
}

func (s *shop) photo(userID int64) {
	s.message(userID, tgbotapi.Message{Photo: []tgbotapi.PhotoSize{
		{FileID: "photo-small", Width: 90, Height: 90},
		{FileID: "photo-big", Width: 1280, Height: 960},
		{FileID: "photo-mid", Width: 320, Height: 240},
	}})
}

// seed добавляет товар через редактор от имени админа
func (s *shop) seed(t *testing.T, category, item, price, fileID string) {
	t.Helper()
	s.click(operatorID, "admin_add_product")
	s.click(operatorID, "new_category")
	s.text(operatorID, category)
	s.text(operatorID, item)
	s.text(operatorID, price)
	s.document(operatorID, fileID)
	require.False(t, s.editor.Active(operatorID))
}

func buttons(m *Markup) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, row := range m.InlineKeyboard {
		for _, b := range row {
			out = append(out, b.Text+"|"+*b.CallbackData)
		}
	}
	return out
}

func findButton(m *Markup, text string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, row := range m.InlineKeyboard {
		for _, b := range row {
			if strings.Contains(b.Text, text) {
				return *b.CallbackData, true
			}
		}
	}
	return "", false
}
