package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/family-costs-bot/internal/chatstate"
	"github.com/avolkov/family-costs-bot/internal/parser"
	"github.com/avolkov/family-costs-bot/internal/repository"
)

func newTestService(t *testing.T, atomic bool) (*CostService, *repository.SQLiteRepository, *chatstate.Store) {
	t.Helper()

	db, err := repository.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repository.InitDB(db))

	repo := repository.NewRepository(db)
	state := chatstate.NewStore()
	return NewCostService(repo, state, atomic), repo, state
}

func costs(lines ...string) []parser.Cost {
	var out []parser.Cost
	for _, l := range lines {
		c, ok := parser.ParseLine(l)
		if !ok {
			panic("bad test line: " + l)
		}
		out = append(out, c)
	}
	return out
}

func TestSaveBatchAtomic(t *testing.T) {
	svc, repo, _ := newTestService(t, true)

	report, err := svc.SaveBatch(10, 1, costs("Продукты 100", "Вода 50"))
	require.NoError(t, err)
	require.Len(t, report.Saved, 2)
	assert.Empty(t, report.Failed)
	assert.Len(t, report.IDs(), 2)

	stored, err := repo.CostsByUser(1)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Продукты 100", stored[0].Text)
	assert.Equal(t, "Вода 50", stored[1].Text)
}

func TestSaveBatchPastModeAtCommitTime(t *testing.T) {
	svc, repo, state := newTestService(t, true)

	// режим включили после "создания сессии", но до коммита — действует
	// значение на момент записи
	state.SetPastMode(10, 2025, time.March)

	_, err := svc.SaveBatch(10, 1, costs("Продукты 100"))
	require.NoError(t, err)

	stored, err := repo.CostsByUser(1)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), stored[0].CreatedAt.UTC())

	// после отключения пишем текущим временем
	svc.DisablePastMode(10)
	_, err = svc.SaveBatch(10, 1, costs("Вода 50"))
	require.NoError(t, err)

	stored, err = repo.CostsByUser(1)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.WithinDuration(t, time.Now().UTC(), stored[1].CreatedAt, time.Minute)
}

func TestSaveBatchNonAtomicReportsPerCost(t *testing.T) {
	svc, _, _ := newTestService(t, false)

	report, err := svc.SaveBatch(10, 1, costs("Продукты 100", "Вода 50"))
	require.NoError(t, err)
	assert.Len(t, report.Saved, 2)
	assert.Empty(t, report.Failed)
}

func TestUndoScopedToOwner(t *testing.T) {
	svc, repo, _ := newTestService(t, true)

	reportA, err := svc.SaveBatch(10, 1, costs("Продукты 100"))
	require.NoError(t, err)
	reportB, err := svc.SaveBatch(20, 2, costs("Вода 50"))
	require.NoError(t, err)

	// пользователь 2 пытается отменить чужую запись
	n, err := svc.Undo(reportA.IDs(), 2)
	require.NoError(t, err)
	assert.Zero(t, n)

	stillThere, err := repo.CostByID(reportA.IDs()[0])
	require.NoError(t, err)
	assert.NotNil(t, stillThere)

	// владелец отменяет свою
	n, err = svc.Undo(reportB.IDs(), 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// повторная отмена тех же id удаляет ноль строк
	n, err = svc.Undo(reportB.IDs(), 2)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStats(t *testing.T) {
	svc, repo, _ := newTestService(t, true)

	base := time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)
	repo.SaveCost(1, "Продукты 100.50", base)
	repo.SaveCost(1, "корректировка -50", base.AddDate(0, 0, 1))
	repo.SaveCost(1, "строка без суммы", base.AddDate(0, 0, 2)) // не разбирается, в сумму не входит
	repo.SaveCost(2, "Вода 30", base)

	stats, err := svc.Stats(1, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Count)
	assert.True(t, stats.Total.Equal(decimal.RequireFromString("50.50")), "total %s", stats.Total)
	assert.Equal(t, base, stats.First.UTC())
	assert.Equal(t, base.AddDate(0, 0, 2), stats.Last.UTC())
	require.Len(t, stats.Recent, 2)
	assert.Equal(t, "строка без суммы", stats.Recent[0].Text)
}
