package utils

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

type ctxKey int

const (
	ctxKeyUpdateID ctxKey = iota
	ctxKeyUserID
)

// WithUpdate кладет в контекст идентификаторы обрабатываемого апдейта для логов
func WithUpdate(ctx context.Context, updateID int, userID int64) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUpdateID, updateID)
	return context.WithValue(ctx, ctxKeyUserID, userID)
}

// ContextHandler добавляет update_id и user_id из контекста к каждой записи
type ContextHandler struct {
	slog.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(ctxKeyUpdateID).(int); ok {
		r.AddAttrs(slog.Int("update_id", id))
	}
	if id, ok := ctx.Value(ctxKeyUserID).(int64); ok {
		r.AddAttrs(slog.Int64("user_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}

// NewLogger - JSON логгер с уровнем из строки (debug, info, warn, error)
func NewLogger(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(&ContextHandler{Handler: handler})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
