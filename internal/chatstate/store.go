// Package chatstate хранит разговорное состояние чата: отложенное
// подтверждение сохранения и режим прошедшего месяца. Состояние живёт в
// памяти процесса и теряется при рестарте — это допустимо, пользователь
// просто отправит сообщение ещё раз.
package chatstate

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/family-costs-bot/internal/parser"
)

// Confirmation — ожидающая подтверждения пачка распознанных расходов.
// У чата может быть не больше одной: новое подтверждение молча вытесняет
// предыдущее.
type Confirmation struct {
	SessionID string
	OwnerID   int64
	Costs     []parser.Cost
}

// PastMode перенаправляет дату новых расходов на первое число выбранного
// месяца. Действует до явного отключения или выбора другого месяца.
type PastMode struct {
	Year  int
	Month time.Month
}

type Store struct {
	mu            sync.Mutex
	confirmations map[int64]*Confirmation
	pastModes     map[int64]PastMode
}

func NewStore() *Store {
	return &Store{
		confirmations: make(map[int64]*Confirmation),
		pastModes:     make(map[int64]PastMode),
	}
}

// NewConfirmation создаёт сессию подтверждения со свежим идентификатором.
func NewConfirmation(ownerID int64, costs []parser.Cost) *Confirmation {
	return &Confirmation{
		SessionID: uuid.NewString(),
		OwnerID:   ownerID,
		Costs:     costs,
	}
}

func (s *Store) SetConfirmation(chatID int64, c *Confirmation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmations[chatID] = c
}

// TakeConfirmation забирает сессию из хранилища, если совпали и идентификатор
// сессии, и владелец. Повторный или чужой callback получает false, сессия
// при этом не трогается — двойная запись невозможна.
func (s *Store) TakeConfirmation(chatID int64, sessionID string, userID int64) (*Confirmation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.confirmations[chatID]
	if !ok || c.SessionID != sessionID || c.OwnerID != userID {
		return nil, false
	}
	delete(s.confirmations, chatID)
	return c, true
}

// PeekConfirmation возвращает ожидающую сессию, не забирая её.
func (s *Store) PeekConfirmation(chatID int64) (*Confirmation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.confirmations[chatID]
	return c, ok
}

// SetPastMode включает режим прошедшего месяца. Повторный выбор того же
// месяца идемпотентен, другой месяц замещает текущий.
func (s *Store) SetPastMode(chatID int64, year int, month time.Month) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pastModes[chatID] = PastMode{Year: year, Month: month}
}

func (s *Store) ClearPastMode(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pastModes, chatID)
}

func (s *Store) PastMode(chatID int64) (PastMode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pm, ok := s.pastModes[chatID]
	return pm, ok
}
