package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"tg_shop/internal/config"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document - строка таблицы documents: один JSON документ на ключ
type Document struct {
	Key       string `gorm:"column:doc_key;primaryKey;size:200"`
	Body      string `gorm:"type:text;not null;default:''"`
	UpdatedAt time.Time
}

func (Document) TableName() string { return "documents" }

func Connect(cfg config.Postgres) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе: %w", err)
	}
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("ошибка миграции documents: %w", err)
	}
	return db, nil
}

// GormStore - DocStore поверх Postgres. Update блокирует строку документа (SELECT ... FOR UPDATE)
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc Document
	err := s.db.WithContext(ctx).Where("doc_key = ?", key).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return body(doc), nil
}

func (s *GormStore) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Пустая строка-заглушка, чтобы было что блокировать при первой записи
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&Document{Key: key}).
			Error
		if err != nil {
			return fmt.Errorf("insert %s: %w", key, err)
		}

		var doc Document
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("doc_key = ?", key).
			Take(&doc).
			Error
		if err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}

		next, err := fn(body(doc))
		if err != nil {
			return err
		}

		err = tx.Model(&Document{}).
			Where("doc_key = ?", key).
			Updates(map[string]interface{}{"body": string(next), "updated_at": time.Now()}).
			Error
		if err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		return nil
	})
}

func (s *GormStore) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	var docs []Document
	err := s.db.WithContext(ctx).
		Where("doc_key LIKE ?", escapeLike(prefix)+"%").
		Order("doc_key ASC").
		Find(&docs).
		Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	out := make(map[string][]byte, len(docs))
	for _, doc := range docs {
		if b := body(doc); b != nil {
			out[doc.Key] = b
		}
	}
	return out, nil
}

func body(doc Document) []byte {
	if doc.Body == "" {
		return nil
	}
	return []byte(doc.Body)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
