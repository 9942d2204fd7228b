// Package store хранит каталог, корзины и заказы поверх db.DocStore.
//
// Чтение всегда "fail open": нечитаемый или испорченный документ логируется и считается пустым.
// Каждая запись - атомарное обновление одного ключа (каталог, корзина пользователя, заказ пользователя).
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	db "tg_shop/internal/database"
	"tg_shop/models"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrCorruptCatalog = errors.New("catalog document is corrupt")
)

type CatalogStore struct {
	docs     db.DocStore
	log      *slog.Logger
	validate *validatorv10.Validate
	newID    func(prefix string) string
}

func NewCatalogStore(docs db.DocStore, log *slog.Logger) *CatalogStore {
	return &CatalogStore{
		docs:     docs,
		log:      log,
		validate: validatorv10.New(),
		newID:    newID,
	}
}

// ID вида "cat_1a2b3c4d" / "item_1a2b3c4d"; короткие, чтобы влезть в callback_data (64 байта)
func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Load возвращает весь каталог. При любой ошибке - пустой каталог
func (s *CatalogStore) Load(ctx context.Context) models.Catalog {
	raw, err := s.docs.Get(ctx, db.CatalogKey)
	if err != nil {
		s.log.ErrorContext(ctx, "ошибка загрузки каталога", "error", err)
		return models.Catalog{}
	}
	catalog, err := decodeCatalog(raw)
	if err != nil {
		s.log.ErrorContext(ctx, "ошибка декодирования каталога", "error", err)
		return models.Catalog{}
	}
	return catalog
}

func (s *CatalogStore) FindCategory(ctx context.Context, id string) (models.Category, error) {
	cat, ok := s.Load(ctx).Category(id)
	if !ok {
		return models.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return cat, nil
}

func (s *CatalogStore) FindItem(ctx context.Context, id string) (models.Item, models.Category, error) {
	item, cat, ok := s.Load(ctx).Item(id)
	if !ok {
		return models.Item{}, models.Category{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return item, cat, nil
}

// (АДМИН) Добавляет категорию в конец списка
func (s *CatalogStore) AddCategory(ctx context.Context, name string) (models.Category, error) {
	cat := models.Category{
		ID:    s.newID("cat"),
		Name:  name,
		Items: []models.Item{},
	}
	err := s.mutate(ctx, func(c *models.Catalog) error {
		c.Categories = append(c.Categories, cat)
		return nil
	})
	if err != nil {
		return models.Category{}, err
	}
	s.log.InfoContext(ctx, "категория создана", "category_id", cat.ID, "name", name)
	return cat, nil
}

// (АДМИН) Добавляет товар в конец категории. ErrNotFound, если категории нет
func (s *CatalogStore) AddItem(ctx context.Context, categoryID, name string, price int64, fileID string) (models.Item, error) {
	item := models.Item{
		ID:     s.newID("item"),
		Name:   name,
		Price:  price,
		FileID: fileID,
	}
	if err := s.validate.Struct(item); err != nil {
		return models.Item{}, fmt.Errorf("invalid item: %w", err)
	}

	err := s.mutate(ctx, func(c *models.Catalog) error {
		for i := range c.Categories {
			if c.Categories[i].ID == categoryID {
				c.Categories[i].Items = append(c.Categories[i].Items, item)
				return nil
			}
		}
		return fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	})
	if err != nil {
		return models.Item{}, err
	}
	s.log.InfoContext(ctx, "товар добавлен", "category_id", categoryID, "item_id", item.ID, "name", name, "price", price)
	return item, nil
}

// (АДМИН) Удаляет товар по ID из любой категории. Отсутствующий ID - не ошибка (removed=false)
func (s *CatalogStore) RemoveItem(ctx context.Context, itemID string) (removed bool, err error) {
	err = s.mutate(ctx, func(c *models.Catalog) error {
		for i := range c.Categories {
			items := c.Categories[i].Items[:0]
			for _, item := range c.Categories[i].Items {
				if item.ID == itemID {
					removed = true
					continue
				}
				items = append(items, item)
			}
			c.Categories[i].Items = items
		}
		if !removed {
			return errNoChange
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.log.InfoContext(ctx, "товар удален", "item_id", itemID)
	return true, nil
}

// errNoChange отменяет запись, когда изменять нечего
var errNoChange = errors.New("no change")

// mutate - read-modify-write всего каталога под блокировкой ключа.
// Испорченный документ не перезаписывается: данные админа важнее
func (s *CatalogStore) mutate(ctx context.Context, fn func(c *models.Catalog) error) error {
	err := s.docs.Update(ctx, db.CatalogKey, func(raw []byte) ([]byte, error) {
		catalog, err := decodeCatalog(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptCatalog, err)
		}
		if err := fn(&catalog); err != nil {
			return nil, err
		}
		return json.Marshal(catalog)
	})
	if err != nil && !errors.Is(err, errNoChange) && !errors.Is(err, ErrNotFound) {
		s.log.ErrorContext(ctx, "ошибка записи каталога", "error", err)
	}
	return err
}

func decodeCatalog(raw []byte) (models.Catalog, error) {
	var catalog models.Catalog
	if len(raw) == 0 {
		return catalog, nil
	}
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return models.Catalog{}, err
	}
	return catalog, nil
}
