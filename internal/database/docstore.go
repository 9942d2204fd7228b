package db

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// DocStore - хранилище JSON документов по ключу.
// Update атомарен в пределах одного ключа: конкурентные вызовы для одного ключа не теряют изменений,
// вызовы для разных ключей не блокируют друг друга (для бэкендов, которые это поддерживают).
type DocStore interface {
	// Get возвращает (nil, nil), если документа нет
	Get(ctx context.Context, key string) ([]byte, error)
	// Update читает документ (nil, если его нет), передает в fn и записывает результат.
	// Ошибка из fn отменяет запись и возвращается как есть.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
	// List возвращает все документы, ключ которых начинается с prefix
	List(ctx context.Context, prefix string) (map[string][]byte, error)
}

// Ключи документов
const (
	CatalogKey   = "catalog"
	cartsPrefix  = "carts:"
	ordersPrefix = "orders:"
)

func CartKey(userID int64) string  { return cartsPrefix + formatID(userID) }
func OrderKey(userID int64) string { return ordersPrefix + formatID(userID) }
func OrdersPrefix() string         { return ordersPrefix }

// MemoryStore - DocStore в памяти процесса (STORE_BACKEND=memory и тесты)
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
	keys map[string]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: map[string][]byte{},
		keys: map[string]*sync.Mutex{},
	}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, nil
	}
	return clone(doc), nil
}

func (m *MemoryStore) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	lock := m.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	current, err := m.Get(ctx, key)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.docs[key] = clone(next)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string][]byte{}
	for k, v := range m.docs {
		if strings.HasPrefix(k, prefix) {
			out[k] = clone(v)
		}
	}
	return out, nil
}

// Put записывает документ напрямую (для тестов: например, испорченный JSON)
func (m *MemoryStore) Put(key string, doc []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = clone(doc)
}

// Keys - отсортированный список ключей
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.docs))
	for k := range m.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *MemoryStore) keyLock(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.keys[key]
	if !ok {
		lock = &sync.Mutex{}
		m.keys[key] = lock
	}
	return lock
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
