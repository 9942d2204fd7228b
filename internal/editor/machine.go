package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tg_shop/auth"
	"tg_shop/models"
)

// Catalog - операции каталога, которые нужны редактору
type Catalog interface {
	FindCategory(ctx context.Context, id string) (models.Category, error)
	AddCategory(ctx context.Context, name string) (models.Category, error)
	AddItem(ctx context.Context, categoryID, name string, price int64, fileID string) (models.Item, error)
}

type session struct {
	state   State
	touched time.Time
}

// Machine хранит сессии админов в памяти и выполняет эффекты переходов
type Machine struct {
	mu       sync.Mutex
	sessions map[int64]*session
	catalog  Catalog
	idle     time.Duration
	now      func() time.Time
	log      *slog.Logger
}

func NewMachine(catalog Catalog, idle time.Duration, log *slog.Logger) *Machine {
	return &Machine{
		sessions: map[int64]*session{},
		catalog:  catalog,
		idle:     idle,
		now:      time.Now,
		log:      log,
	}
}

// Start начинает новую сессию; старая сессия этого админа отбрасывается
func (m *Machine) Start(ctx context.Context, op auth.Operator) State {
	m.mu.Lock()
	_, replaced := m.sessions[op.ID()]
	m.sessions[op.ID()] = &session{state: SelectCategory{}, touched: m.now()}
	m.mu.Unlock()

	m.log.InfoContext(ctx, "сессия редактора начата", "user_id", op.ID(), "replaced", replaced)
	return SelectCategory{}
}

// Current - состояние активной сессии
func (m *Machine) Current(userID int64) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live(userID)
	if !ok {
		return nil, false
	}
	return s.state, true
}

func (m *Machine) Active(userID int64) bool {
	_, ok := m.Current(userID)
	return ok
}

// Handle применяет событие к сессии админа.
// При ошибке возвращает текущее (неизмененное) состояние вместе с ошибкой
func (m *Machine) Handle(ctx context.Context, op auth.Operator, ev Event) (State, error) {
	m.mu.Lock()
	s, ok := m.live(op.ID())
	if !ok {
		m.mu.Unlock()
		return nil, ErrNoSession
	}
	cur := s.state
	s.touched = m.now()
	m.mu.Unlock()

	if chosen, ok := ev.(CategoryChosen); ok {
		if _, isSelect := cur.(SelectCategory); isSelect {
			cat, err := m.catalog.FindCategory(ctx, chosen.ID)
			if err != nil {
				return cur, err
			}
			ev = CategoryChosen{ID: cat.ID, Name: cat.Name}
		}
	}

	next, effect, err := Transition(cur, ev)
	if err != nil {
		return cur, err
	}
	next, err = m.apply(ctx, next, effect)
	if err != nil {
		return cur, err
	}

	m.mu.Lock()
	if Terminal(next) {
		delete(m.sessions, op.ID())
	} else if s, ok := m.sessions[op.ID()]; ok {
		s.state = next
		s.touched = m.now()
	}
	m.mu.Unlock()

	m.log.DebugContext(ctx, "шаг редактора", "user_id", op.ID(), "from", stateName(cur), "to", stateName(next))
	return next, nil
}

// Cancel удаляет сессию. false, если её не было
func (m *Machine) Cancel(ctx context.Context, op auth.Operator) bool {
	m.mu.Lock()
	_, ok := m.live(op.ID())
	delete(m.sessions, op.ID())
	m.mu.Unlock()

	if ok {
		m.log.InfoContext(ctx, "сессия редактора отменена", "user_id", op.ID())
	}
	return ok
}

// Sweep удаляет сессии, простаивающие дольше idle, и возвращает ID их владельцев
func (m *Machine) Sweep(now time.Time) []int64 {
	if m.idle <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []int64
	for id, s := range m.sessions {
		if now.Sub(s.touched) >= m.idle {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	return expired
}

// live - сессия, если она есть и не просрочена. Вызывать под m.mu
func (m *Machine) live(userID int64) (*session, bool) {
	s, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	if m.idle > 0 && m.now().Sub(s.touched) >= m.idle {
		delete(m.sessions, userID)
		return nil, false
	}
	return s, true
}

func (m *Machine) apply(ctx context.Context, next State, effect Effect) (State, error) {
	switch e := effect.(type) {
	case nil:
		return next, nil

	case CreateCategory:
		cat, err := m.catalog.AddCategory(ctx, e.Name)
		if err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		st := next.(NameItem)
		st.Category.ID = cat.ID
		return st, nil

	case CreateItem:
		item, err := m.catalog.AddItem(ctx, e.CategoryID, e.Name, e.Price, e.FileID)
		if err != nil {
			return nil, fmt.Errorf("create item: %w", err)
		}
		st := next.(Done)
		st.Item = item
		return st, nil
	}
	return nil, fmt.Errorf("unknown effect %T", effect)
}

func stateName(s State) string {
	return fmt.Sprintf("%T", s)
}
