package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter - HTTP сервер вебхука: Telegram шлет апдейты POST-запросом на "/"
func NewRouter(bot *Bot, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/", func(w http.ResponseWriter, r *http.Request) { webhook(bot, log, w, r) })
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func webhook(bot *Bot, log *slog.Logger, w http.ResponseWriter, r *http.Request) {
	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.WarnContext(r.Context(), "некорректный JSON апдейта", "request_id", middleware.GetReqID(r.Context()), "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	// обработка не прерывается, если Telegram закрыл соединение
	bot.HandleUpdate(context.WithoutCancel(r.Context()), update)
	w.WriteHeader(http.StatusOK)
}
