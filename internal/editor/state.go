// Package editor - пошаговое добавление товара админом:
// выбор (или создание) категории -> название -> цена -> файл.
//
// Transition чистая: по состоянию и событию возвращает следующее состояние и эффект,
// который нужно выполнить (создать категорию или товар). Эффекты выполняет Machine.
package editor

import (
	"errors"
	"strconv"
	"strings"
	"tg_shop/models"
)

var (
	// ErrInvalidInput - ввод не подходит для текущего шага; состояние не меняется
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnexpectedEvent - событие не относится к текущему шагу (например, старая кнопка)
	ErrUnexpectedEvent = errors.New("unexpected event")
	ErrNoSession       = errors.New("no active session")
)

// State - шаг сессии. Набор состояний закрыт: реализации только в этом пакете
type State interface {
	isState()
}

// Target - категория, в которую добавляется товар
type Target struct {
	ID      string
	Name    string
	Created bool // создана в этой сессии
}

type (
	SelectCategory struct{}
	NameCategory   struct{}
	NameItem       struct {
		Category Target
	}
	PriceItem struct {
		Category Target
		Name     string
	}
	AttachFile struct {
		Category Target
		Name     string
		Price    int64
	}
	Done struct {
		Category Target
		Item     models.Item
	}
	Cancelled struct{}
)

func (SelectCategory) isState() {}
func (NameCategory) isState()   {}
func (NameItem) isState()       {}
func (PriceItem) isState()      {}
func (AttachFile) isState()     {}
func (Done) isState()           {}
func (Cancelled) isState()      {}

// Terminal - сессия завершена (товар создан или отмена)
func Terminal(s State) bool {
	switch s.(type) {
	case Done, Cancelled:
		return true
	}
	return false
}

// Event - действие админа
type Event interface {
	isEvent()
}

type (
	// CategoryChosen - выбрана существующая категория (Name заполняет Machine из каталога)
	CategoryChosen struct {
		ID   string
		Name string
	}
	NewCategoryChosen struct{}
	TextEntered       struct {
		Text string
	}
	FileAttached struct {
		FileID string
		Kind   models.AttachmentKind
	}
	Cancel struct{}
)

func (CategoryChosen) isEvent()    {}
func (NewCategoryChosen) isEvent() {}
func (TextEntered) isEvent()       {}
func (FileAttached) isEvent()      {}
func (Cancel) isEvent()            {}

// Effect - запись в каталог, которую нужно сделать при переходе. nil - ничего
type Effect interface {
	isEffect()
}

type (
	CreateCategory struct {
		Name string
	}
	CreateItem struct {
		CategoryID string
		Name       string
		Price      int64
		FileID     string
	}
)

func (CreateCategory) isEffect() {}
func (CreateItem) isEffect()     {}

// Transition вычисляет следующий шаг. При ошибке возвращается исходное состояние
func Transition(s State, ev Event) (State, Effect, error) {
	if Terminal(s) {
		return s, nil, ErrUnexpectedEvent
	}
	if _, ok := ev.(Cancel); ok {
		return Cancelled{}, nil, nil
	}

	switch cur := s.(type) {
	case SelectCategory:
		switch e := ev.(type) {
		case CategoryChosen:
			if e.ID == "" {
				return s, nil, ErrInvalidInput
			}
			return NameItem{Category: Target{ID: e.ID, Name: e.Name}}, nil, nil
		case NewCategoryChosen:
			return NameCategory{}, nil, nil
		case TextEntered, FileAttached:
			return s, nil, ErrInvalidInput
		}

	case NameCategory:
		switch e := ev.(type) {
		case TextEntered:
			name, ok := nonEmpty(e.Text)
			if !ok {
				return s, nil, ErrInvalidInput
			}
			// ID категории появится после выполнения эффекта
			return NameItem{Category: Target{Name: name, Created: true}}, CreateCategory{Name: name}, nil
		case FileAttached:
			return s, nil, ErrInvalidInput
		}

	case NameItem:
		switch e := ev.(type) {
		case TextEntered:
			name, ok := nonEmpty(e.Text)
			if !ok {
				return s, nil, ErrInvalidInput
			}
			return PriceItem{Category: cur.Category, Name: name}, nil, nil
		case FileAttached:
			return s, nil, ErrInvalidInput
		}

	case PriceItem:
		switch e := ev.(type) {
		case TextEntered:
			price, err := ParsePrice(e.Text)
			if err != nil {
				return s, nil, err
			}
			return AttachFile{Category: cur.Category, Name: cur.Name, Price: price}, nil, nil
		case FileAttached:
			return s, nil, ErrInvalidInput
		}

	case AttachFile:
		switch e := ev.(type) {
		case FileAttached:
			if e.Kind != models.AttachmentDocument || e.FileID == "" {
				return s, nil, ErrInvalidInput
			}
			effect := CreateItem{
				CategoryID: cur.Category.ID,
				Name:       cur.Name,
				Price:      cur.Price,
				FileID:     e.FileID,
			}
			draft := models.Item{Name: cur.Name, Price: cur.Price, FileID: e.FileID}
			return Done{Category: cur.Category, Item: draft}, effect, nil
		case TextEntered:
			return s, nil, ErrInvalidInput
		}
	}
	return s, nil, ErrUnexpectedEvent
}

// ParsePrice - целое неотрицательное число
func ParsePrice(text string) (int64, error) {
	price, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || price < 0 {
		return 0, ErrInvalidInput
	}
	return price, nil
}

func nonEmpty(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}
