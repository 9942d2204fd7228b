package store

import (
	"context"
	"encoding/json"
	"log/slog"
	db "tg_shop/internal/database"
	"tg_shop/models"
)

// CartStore - корзина на пользователя, ключ carts:<user id>
type CartStore struct {
	docs    db.DocStore
	catalog *CatalogStore
	log     *slog.Logger
}

func NewCartStore(docs db.DocStore, catalog *CatalogStore, log *slog.Logger) *CartStore {
	return &CartStore{docs: docs, catalog: catalog, log: log}
}

// Get возвращает корзину пользователя; пустую, если её нет или она не читается
func (s *CartStore) Get(ctx context.Context, userID int64) models.Cart {
	raw, err := s.docs.Get(ctx, db.CartKey(userID))
	if err != nil {
		s.log.ErrorContext(ctx, "ошибка чтения корзины", "user_id", userID, "error", err)
		return models.Cart{}
	}
	return s.decode(ctx, userID, raw)
}

// Save заменяет корзину целиком
func (s *CartStore) Save(ctx context.Context, userID int64, cart models.Cart) error {
	err := s.docs.Update(ctx, db.CartKey(userID), func([]byte) ([]byte, error) {
		return encodeCart(cart)
	})
	if err != nil {
		s.log.ErrorContext(ctx, "ошибка записи корзины", "user_id", userID, "error", err)
	}
	return err
}

// AddItem находит товар в каталоге и добавляет в корзину: повторное добавление увеличивает количество
func (s *CartStore) AddItem(ctx context.Context, userID int64, itemID string) (models.CartLine, error) {
	item, _, err := s.catalog.FindItem(ctx, itemID)
	if err != nil {
		return models.CartLine{}, err
	}

	var added models.CartLine
	err = s.docs.Update(ctx, db.CartKey(userID), func(raw []byte) ([]byte, error) {
		cart := s.decode(ctx, userID, raw)
		found := false
		for i := range cart {
			if cart[i].ID == item.ID {
				cart[i].Quantity++
				added = cart[i]
				found = true
				break
			}
		}
		if !found {
			added = models.CartLine{Item: item, Quantity: 1}
			cart = append(cart, added)
		}
		return encodeCart(cart)
	})
	if err != nil {
		s.log.ErrorContext(ctx, "ошибка записи корзины", "user_id", userID, "error", err)
		return models.CartLine{}, err
	}
	return added, nil
}

// Clear очищает корзину (пустой список, а не удаление)
func (s *CartStore) Clear(ctx context.Context, userID int64) error {
	return s.Save(ctx, userID, models.Cart{})
}

func (s *CartStore) decode(ctx context.Context, userID int64, raw []byte) models.Cart {
	if len(raw) == 0 {
		return models.Cart{}
	}
	var cart models.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		s.log.ErrorContext(ctx, "ошибка декодирования корзины", "user_id", userID, "error", err)
		return models.Cart{}
	}
	return cart
}

func encodeCart(cart models.Cart) ([]byte, error) {
	if cart == nil {
		cart = models.Cart{}
	}
	return json.Marshal(cart)
}
