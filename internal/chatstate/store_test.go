package chatstate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/family-costs-bot/internal/parser"
)

func sampleCosts() []parser.Cost {
	return []parser.Cost{{Name: "Продукты", Amount: decimal.NewFromInt(100)}}
}

func TestTakeConfirmationSingleUse(t *testing.T) {
	s := NewStore()
	c := NewConfirmation(1, sampleCosts())
	s.SetConfirmation(10, c)

	got, ok := s.TakeConfirmation(10, c.SessionID, 1)
	require.True(t, ok)
	assert.Equal(t, c.Costs, got.Costs)

	// повторный callback с тем же session id — no-op
	_, ok = s.TakeConfirmation(10, c.SessionID, 1)
	assert.False(t, ok)
}

func TestTakeConfirmationWrongOwner(t *testing.T) {
	s := NewStore()
	c := NewConfirmation(1, sampleCosts())
	s.SetConfirmation(10, c)

	_, ok := s.TakeConfirmation(10, c.SessionID, 2)
	assert.False(t, ok)

	// чужая попытка не снимает сессию, владелец всё ещё может подтвердить
	_, ok = s.TakeConfirmation(10, c.SessionID, 1)
	assert.True(t, ok)
}

func TestTakeConfirmationStaleSessionID(t *testing.T) {
	s := NewStore()
	old := NewConfirmation(1, sampleCosts())
	s.SetConfirmation(10, old)

	replacement := NewConfirmation(1, sampleCosts())
	s.SetConfirmation(10, replacement)

	_, ok := s.TakeConfirmation(10, old.SessionID, 1)
	assert.False(t, ok)

	got, ok := s.TakeConfirmation(10, replacement.SessionID, 1)
	require.True(t, ok)
	assert.Equal(t, replacement.SessionID, got.SessionID)
}

func TestNewConfirmationUniqueSessionIDs(t *testing.T) {
	a := NewConfirmation(1, sampleCosts())
	b := NewConfirmation(1, sampleCosts())
	assert.NotEqual(t, a.SessionID, b.SessionID)
}

func TestPastMode(t *testing.T) {
	s := NewStore()

	_, ok := s.PastMode(10)
	assert.False(t, ok)

	s.SetPastMode(10, 2026, time.March)
	pm, ok := s.PastMode(10)
	require.True(t, ok)
	assert.Equal(t, PastMode{Year: 2026, Month: time.March}, pm)

	// повторный выбор того же месяца идемпотентен
	s.SetPastMode(10, 2026, time.March)
	pm, _ = s.PastMode(10)
	assert.Equal(t, PastMode{Year: 2026, Month: time.March}, pm)

	// другой месяц замещает
	s.SetPastMode(10, 2025, time.December)
	pm, _ = s.PastMode(10)
	assert.Equal(t, PastMode{Year: 2025, Month: time.December}, pm)

	s.ClearPastMode(10)
	_, ok = s.PastMode(10)
	assert.False(t, ok)

	// состояние другого чата не задето
	s.SetPastMode(11, 2026, time.May)
	s.ClearPastMode(10)
	_, ok = s.PastMode(11)
	assert.True(t, ok)
}
