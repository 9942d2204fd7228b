package editor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"tg_shop/auth"
	db "tg_shop/internal/database"
	"tg_shop/internal/store"
	"tg_shop/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const operatorID = 42

type fixture struct {
	machine *Machine
	catalog *store.CatalogStore
	op      auth.Operator
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	op, err := auth.NewGuard(operatorID, log).Authorize(context.Background(), &tgbotapi.User{ID: operatorID})
	require.NoError(t, err)

	f := &fixture{
		catalog: store.NewCatalogStore(db.NewMemoryStore(), log),
		op:      op,
		clock:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.machine = NewMachine(f.catalog, 15*time.Minute, log)
	f.machine.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) handle(t *testing.T, ev Event) State {
	t.Helper()
	s, err := f.machine.Handle(context.Background(), f.op, ev)
	require.NoError(t, err)
	return s
}

func TestMachine_NewCategoryFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.machine.Start(ctx, f.op)
	f.handle(t, NewCategoryChosen{})
	s := f.handle(t, TextEntered{Text: "Docs"})

	nameItem, ok := s.(NameItem)
	require.True(t, ok)
	assert.NotEmpty(t, nameItem.Category.ID)
	assert.True(t, nameItem.Category.Created)

	f.handle(t, TextEntered{Text: "Form A"})
	f.handle(t, TextEntered{Text: "100"})
	s = f.handle(t, FileAttached{FileID: "doc-1", Kind: models.AttachmentDocument})

	done, ok := s.(Done)
	require.True(t, ok)
	assert.Equal(t, "Form A", done.Item.Name)
	assert.Equal(t, int64(100), done.Item.Price)
	assert.NotEmpty(t, done.Item.ID)
	assert.False(t, f.machine.Active(operatorID))

	catalog := f.catalog.Load(ctx)
	require.Len(t, catalog.Categories, 1)
	assert.Equal(t, "Docs", catalog.Categories[0].Name)
	require.Len(t, catalog.Categories[0].Items, 1)
	assert.Equal(t, done.Item, catalog.Categories[0].Items[0])
}

func TestMachine_ExistingCategoryVerified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat, err := f.catalog.AddCategory(ctx, "Docs")
	require.NoError(t, err)

	f.machine.Start(ctx, f.op)
	s, err := f.machine.Handle(ctx, f.op, CategoryChosen{ID: "cat_stale"})
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, SelectCategory{}, s)

	s = f.handle(t, CategoryChosen{ID: cat.ID})
	assert.Equal(t, NameItem{Category: Target{ID: cat.ID, Name: "Docs"}}, s)
}

func TestMachine_InvalidPriceStaysAndKeepsName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat, _ := f.catalog.AddCategory(ctx, "Docs")

	f.machine.Start(ctx, f.op)
	f.handle(t, CategoryChosen{ID: cat.ID})
	f.handle(t, TextEntered{Text: "Form A"})

	s, err := f.machine.Handle(ctx, f.op, TextEntered{Text: "a hundred"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, PriceItem{Category: Target{ID: cat.ID, Name: "Docs"}, Name: "Form A"}, s)

	current, ok := f.machine.Current(operatorID)
	require.True(t, ok)
	assert.Equal(t, s, current)
}

func TestMachine_ReentryDiscardsDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docs, _ := f.catalog.AddCategory(ctx, "Docs")
	forms, _ := f.catalog.AddCategory(ctx, "Forms")

	f.machine.Start(ctx, f.op)
	f.handle(t, CategoryChosen{ID: docs.ID})
	f.handle(t, TextEntered{Text: "First draft"})
	f.handle(t, TextEntered{Text: "999"})

	assert.Equal(t, SelectCategory{}, f.machine.Start(ctx, f.op))
	f.handle(t, CategoryChosen{ID: forms.ID})
	f.handle(t, TextEntered{Text: "Second"})
	f.handle(t, TextEntered{Text: "5"})
	s := f.handle(t, FileAttached{FileID: "doc-2", Kind: models.AttachmentDocument})

	done := s.(Done)
	assert.Equal(t, "Second", done.Item.Name)
	assert.Equal(t, int64(5), done.Item.Price)

	catalog := f.catalog.Load(ctx)
	assert.Empty(t, catalog.Categories[0].Items)
	require.Len(t, catalog.Categories[1].Items, 1)
	assert.Equal(t, "Second", catalog.Categories[1].Items[0].Name)
}

func TestMachine_CancelWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat, _ := f.catalog.AddCategory(ctx, "Docs")

	f.machine.Start(ctx, f.op)
	f.handle(t, CategoryChosen{ID: cat.ID})
	f.handle(t, TextEntered{Text: "Form A"})
	f.handle(t, TextEntered{Text: "100"})

	assert.True(t, f.machine.Cancel(ctx, f.op))
	assert.False(t, f.machine.Active(operatorID))
	assert.False(t, f.machine.Cancel(ctx, f.op))
	assert.Empty(t, f.catalog.Load(ctx).Categories[0].Items)

	_, err := f.machine.Handle(ctx, f.op, TextEntered{Text: "x"})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMachine_CancelEventKeepsCreatedCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.machine.Start(ctx, f.op)
	f.handle(t, NewCategoryChosen{})
	f.handle(t, TextEntered{Text: "Orphan"})
	s := f.handle(t, Cancel{})

	assert.Equal(t, Cancelled{}, s)
	assert.False(t, f.machine.Active(operatorID))
	catalog := f.catalog.Load(ctx)
	require.Len(t, catalog.Categories, 1)
	assert.Empty(t, catalog.Categories[0].Items)
}

func TestMachine_IdleExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.machine.Start(ctx, f.op)
	f.clock = f.clock.Add(10 * time.Minute)
	f.handle(t, NewCategoryChosen{})

	f.clock = f.clock.Add(14 * time.Minute)
	assert.Empty(t, f.machine.Sweep(f.clock))
	assert.True(t, f.machine.Active(operatorID))

	f.clock = f.clock.Add(time.Minute)
	assert.Equal(t, []int64{operatorID}, f.machine.Sweep(f.clock))
	assert.False(t, f.machine.Active(operatorID))
}

func TestMachine_ExpiredSessionRejectsInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.machine.Start(ctx, f.op)
	f.clock = f.clock.Add(time.Hour)

	_, err := f.machine.Handle(ctx, f.op, NewCategoryChosen{})
	assert.ErrorIs(t, err, ErrNoSession)
}

type brokenCatalog struct{ Catalog }

func (brokenCatalog) AddCategory(context.Context, string) (models.Category, error) {
	return models.Category{}, errors.New("write failed")
}

func TestMachine_EffectFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.machine.catalog = brokenCatalog{Catalog: f.catalog}

	f.machine.Start(ctx, f.op)
	f.handle(t, NewCategoryChosen{})

	s, err := f.machine.Handle(ctx, f.op, TextEntered{Text: "Docs"})
	require.Error(t, err)
	assert.Equal(t, NameCategory{}, s)

	current, _ := f.machine.Current(operatorID)
	assert.Equal(t, NameCategory{}, current)
}
