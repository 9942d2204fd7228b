package auth

import (
	"context"
	"errors"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var ErrForbidden = errors.New("access denied")

// Operator - подтвержденный админ. Получить можно только через Guard.Authorize
type Operator struct {
	id int64
}

func (o Operator) ID() int64 { return o.id }

type Guard struct {
	operatorID int64
	log        *slog.Logger
}

func NewGuard(operatorID int64, log *slog.Logger) *Guard {
	return &Guard{operatorID: operatorID, log: log}
}

// Проверяет, является ли пользователь админом. Чужие попытки пишутся в лог
func (g *Guard) Authorize(ctx context.Context, user *tgbotapi.User) (Operator, error) {
	if user == nil {
		return Operator{}, ErrForbidden
	}
	if g.operatorID == 0 || user.ID != g.operatorID {
		g.log.WarnContext(ctx, "попытка доступа к админке",
			"user_id", user.ID, "username", user.UserName, "first_name", user.FirstName)
		return Operator{}, ErrForbidden
	}
	return Operator{id: user.ID}, nil
}

// IsOperator - проверка без записи в лог (для маршрутизации сообщений)
func (g *Guard) IsOperator(userID int64) bool {
	return g.operatorID != 0 && userID == g.operatorID
}
