package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	db "tg_shop/internal/database"
	"tg_shop/models"

	validatorv10 "github.com/go-playground/validator/v10"
)

// ErrStatusMismatch - UpdateStatus не применен: текущий статус заказа отличается от ожидаемого
var ErrStatusMismatch = errors.New("status mismatch")

// OrderStore - последний заказ пользователя, ключ orders:<user id>
type OrderStore struct {
	docs     db.DocStore
	log      *slog.Logger
	validate *validatorv10.Validate
}

func NewOrderStore(docs db.DocStore, log *slog.Logger) *OrderStore {
	return &OrderStore{docs: docs, log: log, validate: validatorv10.New()}
}

// Submit сохраняет заказ, перезаписывая предыдущий заказ этого пользователя
func (s *OrderStore) Submit(ctx context.Context, order models.Order) error {
	if err := s.validate.Struct(order); err != nil {
		return fmt.Errorf("invalid order: %w", err)
	}

	err := s.docs.Update(ctx, db.OrderKey(order.UserID), func(raw []byte) ([]byte, error) {
		if prev, err := decodeOrder(raw); err == nil && prev != nil && prev.Status == models.StatusPending {
			s.log.WarnContext(ctx, "предыдущий заказ перезаписан",
				"user_id", order.UserID, "prev_date", prev.Date, "prev_total", prev.Total)
		}
		return json.Marshal(order)
	})
	if err != nil {
		s.log.ErrorContext(ctx, "ошибка сохранения заказа", "user_id", order.UserID, "error", err)
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

// Get возвращает (nil, nil), если заказа нет
func (s *OrderStore) Get(ctx context.Context, userID int64) (*models.Order, error) {
	raw, err := s.docs.Get(ctx, db.OrderKey(userID))
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	order, err := decodeOrder(raw)
	if err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return order, nil
}

// List - все заказы по дате. Нечитаемые записи пропускаются
func (s *OrderStore) List(ctx context.Context) ([]models.Order, error) {
	docs, err := s.docs.List(ctx, db.OrdersPrefix())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]models.Order, 0, len(docs))
	for key, raw := range docs {
		order, err := decodeOrder(raw)
		if err != nil || order == nil {
			s.log.ErrorContext(ctx, "пропущен нечитаемый заказ", "key", key, "error", err)
			continue
		}
		orders = append(orders, *order)
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Date.Equal(orders[j].Date) {
			return orders[i].UserID < orders[j].UserID
		}
		return orders[i].Date.Before(orders[j].Date)
	})
	return orders, nil
}

// UpdateStatus меняет статус expected -> next. ErrStatusMismatch, если статус другой, ErrNotFound, если заказа нет
func (s *OrderStore) UpdateStatus(ctx context.Context, userID int64, expected, next models.OrderStatus) (models.Order, error) {
	var updated models.Order
	err := s.docs.Update(ctx, db.OrderKey(userID), func(raw []byte) ([]byte, error) {
		order, err := decodeOrder(raw)
		if err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		if order == nil {
			return nil, fmt.Errorf("order of %d: %w", userID, ErrNotFound)
		}
		if order.Status != expected {
			return nil, ErrStatusMismatch
		}
		order.Status = next
		updated = *order
		return json.Marshal(order)
	})
	if err != nil {
		return models.Order{}, err
	}
	s.log.InfoContext(ctx, "статус заказа обновлен", "user_id", userID, "from", expected, "to", next)
	return updated, nil
}

func decodeOrder(raw []byte) (*models.Order, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var order models.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
