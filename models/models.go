package models

import (
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusFulfilled OrderStatus = "fulfilled"
)

// Catalog - весь каталог магазина: упорядоченный список категорий
type Catalog struct {
	Categories []Category `json:"categories"`
}

// Category - категория каталога со списком товаров
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Item - товар. Цена в минимальных единицах валюты, FileID - ссылка на файл в Telegram
type Item struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Price  int64  `json:"price" validate:"min=0"`
	FileID string `json:"file_id" validate:"required"`
}

// CartLine - копия товара на момент добавления в корзину + количество
type CartLine struct {
	Item
	Quantity int `json:"quantity" validate:"min=1"`
}

func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

type Cart []CartLine

func (c Cart) Total() int64 {
	var total int64
	for _, line := range c {
		total += line.Subtotal()
	}
	return total
}

// Order - заказ пользователя. На одного пользователя хранится только последний заказ
type Order struct {
	UserID        int64          `json:"user_id" validate:"required"`
	Username      string         `json:"username"`
	Date          time.Time      `json:"date" validate:"required"`
	Items         []CartLine     `json:"items" validate:"required,min=1,dive"`
	Total         int64          `json:"total" validate:"min=0"`
	Status        OrderStatus    `json:"status" validate:"oneof=pending fulfilled"`
	ReceiptFileID string         `json:"receipt_file_id" validate:"required"`
	ReceiptKind   AttachmentKind `json:"receipt_kind"`
}

// Находит категорию по ID
func (c Catalog) Category(id string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// Находит товар по ID во всех категориях
func (c Catalog) Item(id string) (Item, Category, bool) {
	for _, cat := range c.Categories {
		for _, item := range cat.Items {
			if item.ID == id {
				return item, cat, true
			}
		}
	}
	return Item{}, Category{}, false
}
