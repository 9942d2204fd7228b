package store

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	db "tg_shop/internal/database"
	"tg_shop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCart(t *testing.T) (*CartStore, *CatalogStore, *db.MemoryStore) {
	t.Helper()
	mem := db.NewMemoryStore()
	catalog := NewCatalogStore(mem, discardLogger())
	return NewCartStore(mem, catalog, discardLogger()), catalog, mem
}

func seedItems(t *testing.T, catalog *CatalogStore, prices ...int64) []models.Item {
	t.Helper()
	ctx := context.Background()
	cat, err := catalog.AddCategory(ctx, "Docs")
	require.NoError(t, err)
	items := make([]models.Item, 0, len(prices))
	for i, p := range prices {
		item, err := catalog.AddItem(ctx, cat.ID, string(rune('A'+i)), p, "file")
		require.NoError(t, err)
		items = append(items, item)
	}
	return items
}

func TestCart_GetMissingIsEmpty(t *testing.T) {
	carts, _, _ := newCart(t)
	assert.Empty(t, carts.Get(context.Background(), 1))
}

func TestCart_GetCorruptIsEmpty(t *testing.T) {
	carts, _, mem := newCart(t)
	mem.Put(db.CartKey(1), []byte("[{oops"))
	assert.Empty(t, carts.Get(context.Background(), 1))
}

func TestCart_AddItemOneLinePerItem(t *testing.T) {
	ctx := context.Background()
	carts, catalog, _ := newCart(t)
	items := seedItems(t, catalog, 100, 250, 7)

	// случайная последовательность добавлений: количество = число вызовов для ID
	rng := rand.New(rand.NewSource(42))
	want := map[string]int{}
	for i := 0; i < 60; i++ {
		item := items[rng.Intn(len(items))]
		_, err := carts.AddItem(ctx, 1, item.ID)
		require.NoError(t, err)
		want[item.ID]++
	}

	cart := carts.Get(ctx, 1)
	got := map[string]int{}
	for _, line := range cart {
		_, dup := got[line.ID]
		require.False(t, dup, "duplicate line for %s", line.ID)
		got[line.ID] = line.Quantity
	}
	assert.Equal(t, want, got)
}

func TestCart_AddItemKeepsInsertionOrderAndSnapshot(t *testing.T) {
	ctx := context.Background()
	carts, catalog, _ := newCart(t)
	items := seedItems(t, catalog, 100, 250)

	line, err := carts.AddItem(ctx, 1, items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)
	_, _ = carts.AddItem(ctx, 1, items[0].ID)
	line, _ = carts.AddItem(ctx, 1, items[1].ID)
	assert.Equal(t, 2, line.Quantity)

	cart := carts.Get(ctx, 1)
	require.Len(t, cart, 2)
	assert.Equal(t, items[1], cart[0].Item)
	assert.Equal(t, items[0], cart[1].Item)
}

func TestCart_AddUnknownItem(t *testing.T) {
	carts, _, mem := newCart(t)
	_, err := carts.AddItem(context.Background(), 1, "item_gone")
	require.ErrorIs(t, err, ErrNotFound)
	assert.NotContains(t, mem.Keys(), db.CartKey(1))
}

func TestCart_ClearThenGetIsEmpty(t *testing.T) {
	ctx := context.Background()
	carts, catalog, _ := newCart(t)
	items := seedItems(t, catalog, 10, 20)

	for _, state := range [][]string{nil, {items[0].ID}, {items[0].ID, items[1].ID, items[0].ID}} {
		for _, id := range state {
			_, err := carts.AddItem(ctx, 1, id)
			require.NoError(t, err)
		}
		require.NoError(t, carts.Clear(ctx, 1))
		assert.Empty(t, carts.Get(ctx, 1))
	}
}

func TestCart_UsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	carts, catalog, _ := newCart(t)
	items := seedItems(t, catalog, 10)

	_, _ = carts.AddItem(ctx, 1, items[0].ID)
	_, _ = carts.AddItem(ctx, 2, items[0].ID)
	require.NoError(t, carts.Clear(ctx, 1))

	assert.Empty(t, carts.Get(ctx, 1))
	assert.Len(t, carts.Get(ctx, 2), 1)
}

func TestCart_SaveErrorReturned(t *testing.T) {
	docs := &failingDocs{MemoryStore: db.NewMemoryStore(), updateErr: errors.New("read-only")}
	catalog := NewCatalogStore(docs, discardLogger())
	carts := NewCartStore(docs, catalog, discardLogger())

	assert.Error(t, carts.Save(context.Background(), 1, models.Cart{}))
}

func TestCart_TotalIsOrderIndependent(t *testing.T) {
	cart := models.Cart{
		{Item: models.Item{ID: "a", Price: 100}, Quantity: 3},
		{Item: models.Item{ID: "b", Price: 250}, Quantity: 1},
		{Item: models.Item{ID: "c", Price: 0}, Quantity: 5},
		{Item: models.Item{ID: "d", Price: 7}, Quantity: 2},
	}
	assert.Equal(t, int64(300+250+0+14), cart.Total())

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append(models.Cart(nil), cart...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, cart.Total(), shuffled.Total())
	}
	assert.Equal(t, int64(0), models.Cart{}.Total())
}
