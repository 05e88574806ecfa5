package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, InitDB(db))
	return NewRepository(db)
}

func TestSaveCostsBatch(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now().UTC().Truncate(time.Second)

	ids, err := repo.SaveCosts(1, []string{"Продукты 100", "Вода 50"}, now)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	costs, err := repo.CostsByUser(1)
	require.NoError(t, err)
	require.Len(t, costs, 2)
	assert.Equal(t, "Продукты 100", costs[0].Text)
	assert.Equal(t, "Вода 50", costs[1].Text)
	assert.True(t, costs[0].CreatedAt.Equal(now))
}

func TestDeleteCostsByIDsScopedToOwner(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now().UTC()

	idA, err := repo.SaveCost(1, "Продукты 100", now)
	require.NoError(t, err)
	idB, err := repo.SaveCost(2, "Вода 50", now)
	require.NoError(t, err)

	// пользователь 2 пытается удалить запись пользователя 1
	n, err := repo.DeleteCostsByIDs([]int64{idA}, 2)
	require.NoError(t, err)
	assert.Zero(t, n)

	cost, err := repo.CostByID(idA)
	require.NoError(t, err)
	require.NotNil(t, cost)

	// смешанный список удаляет только свои записи
	n, err = repo.DeleteCostsByIDs([]int64{idA, idB}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	cost, err = repo.CostByID(idB)
	require.NoError(t, err)
	assert.NotNil(t, cost)
}

func TestDeleteCostsByIDsEmptyList(t *testing.T) {
	repo := newTestRepo(t)

	n, err := repo.DeleteCostsByIDs(nil, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCostsPage(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := repo.SaveCost(1, "хлеб 10", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	page, err := repo.CostsPage(1, 2, "created_at", "desc")
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[0].CreatedAt.After(page.Items[1].CreatedAt))

	// страница за пределами диапазона прижимается к последней
	page, err = repo.CostsPage(99, 2, "created_at", "asc")
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Len(t, page.Items, 1)

	// неизвестное поле сортировки откатывается на created_at
	page, err = repo.CostsPage(1, 2, "text; DROP TABLE costs", "desc")
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestBulkOperations(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now().UTC()

	id1, _ := repo.SaveCost(1, "хлеб 10", now)
	id2, _ := repo.SaveCost(2, "вода 20", now)
	id3, _ := repo.SaveCost(3, "сыр 30", now)

	newDate := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	n, err := repo.BulkUpdateCostsDate([]int64{id1, id2}, newDate)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	cost, err := repo.CostByID(id1)
	require.NoError(t, err)
	assert.True(t, cost.CreatedAt.Equal(newDate))

	n, err = repo.BulkDeleteCosts([]int64{id2, id3})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	all, err := repo.AllCosts()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUniqueUserIDs(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now().UTC()

	repo.SaveCost(2, "хлеб 10", now)
	repo.SaveCost(1, "вода 20", now)
	repo.SaveCost(2, "сыр 30", now)

	ids, err := repo.UniqueUserIDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestUsersCRUD(t *testing.T) {
	repo := newTestRepo(t)

	id, err := repo.CreateUser(100, "Аня", "hash")
	require.NoError(t, err)

	u, err := repo.GetUserByTelegramID(100)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Аня", u.Name)
	assert.Equal(t, "user", u.Role)
	assert.Equal(t, "hash", u.PasswordHash)

	missing, err := repo.GetUserByTelegramID(999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err := repo.UpdateUser(id, 100, "Анна", "admin")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := repo.CountAdmins()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err = repo.UpdateUserPassword(id, "newhash")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DeleteUser(id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestImportTokens(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.CreateImportToken("tok-1", 42))

	tok, err := repo.GetImportToken("tok-1")
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.EqualValues(t, 42, tok.UserID)

	missing, err := repo.GetImportToken("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.DeleteImportToken("tok-1"))
	tok, err = repo.GetImportToken("tok-1")
	require.NoError(t, err)
	assert.Nil(t, tok)
}
