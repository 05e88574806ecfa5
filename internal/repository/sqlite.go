package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

type User struct {
	ID           int
	TelegramID   int64
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type Cost struct {
	ID        int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}

type CostsPage struct {
	Items      []Cost
	Total      int
	Page       int
	PerPage    int
	TotalPages int
}

type ImportToken struct {
	Token     string
	UserID    int64
	CreatedAt time.Time
}

func NewSQLiteDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open DB: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return db, nil
}

func InitDB(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	telegram_id INTEGER NOT NULL UNIQUE,
	name TEXT NOT NULL,
	password_hash TEXT,
	role TEXT NOT NULL DEFAULT 'user' CHECK(role IN ('user','admin')),
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS costs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL CHECK(user_id > 0),
	text TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS import_tokens (
	token TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_costs_user ON costs(user_id);
CREATE INDEX IF NOT EXISTS idx_costs_date ON costs(created_at);
CREATE INDEX IF NOT EXISTS idx_users_telegram ON users(telegram_id);
`
	_, err := db.Exec(schema)
	return err
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// SaveCosts вставляет пачку расходов одной транзакцией: либо записываются
// все строки, либо ни одной. Возвращает id новых записей в порядке вставки.
func (r *SQLiteRepository) SaveCosts(userID int64, texts []string, createdAt time.Time) ([]int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(texts))
	for _, text := range texts {
		res, err := tx.Exec(
			"INSERT INTO costs(user_id, text, created_at) VALUES(?, ?, ?)",
			userID, text, createdAt.Format(time.RFC3339),
		)
		if err != nil {
			return nil, fmt.Errorf("insert cost: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("cost id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit costs: %w", err)
	}
	return ids, nil
}

func (r *SQLiteRepository) SaveCost(userID int64, text string, createdAt time.Time) (int64, error) {
	res, err := r.db.Exec(
		"INSERT INTO costs(user_id, text, created_at) VALUES(?, ?, ?)",
		userID, text, createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert cost: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

// DeleteCostsByIDs удаляет записи по списку id, но только принадлежащие
// userID: чужие id молча пропускаются. Возвращает число удалённых строк.
func (r *SQLiteRepository) DeleteCostsByIDs(ids []int64, userID int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(
		"DELETE FROM costs WHERE id IN (%s) AND user_id = ?",
		placeholders(len(ids)),
	)
	args := append(idsToArgs(ids), userID)

	res, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete costs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *SQLiteRepository) CostByID(id int64) (*Cost, error) {
	var c Cost
	var ds string

	err := r.db.QueryRow(
		"SELECT id, user_id, text, created_at FROM costs WHERE id = ?",
		id,
	).Scan(&c.ID, &c.UserID, &c.Text, &ds)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cost: %w", err)
	}

	c.CreatedAt, _ = time.Parse(time.RFC3339, ds)
	return &c, nil
}

func (r *SQLiteRepository) UpdateCost(id int64, userID int64, text string, createdAt time.Time) (bool, error) {
	res, err := r.db.Exec(
		"UPDATE costs SET user_id = ?, text = ?, created_at = ? WHERE id = ?",
		userID, text, createdAt.Format(time.RFC3339), id,
	)
	if err != nil {
		return false, fmt.Errorf("update cost: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *SQLiteRepository) DeleteCostByID(id int64) (bool, error) {
	res, err := r.db.Exec("DELETE FROM costs WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete cost: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *SQLiteRepository) AllCosts() ([]Cost, error) {
	return r.queryCosts("SELECT id, user_id, text, created_at FROM costs ORDER BY created_at DESC")
}

// Поля, по которым можно сортировать на уровне SQL; name и amount живут
// внутри text и сортируются вызывающим кодом.
var dbSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"user_id":    true,
}

func (r *SQLiteRepository) CostsPage(page, perPage int, orderBy, orderDir string) (*CostsPage, error) {
	if !dbSortFields[orderBy] {
		orderBy = "created_at"
	}
	if orderDir != "asc" && orderDir != "desc" {
		orderDir = "desc"
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM costs").Scan(&total); err != nil {
		return nil, fmt.Errorf("count costs: %w", err)
	}

	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	query := fmt.Sprintf(
		"SELECT id, user_id, text, created_at FROM costs ORDER BY %s %s LIMIT ? OFFSET ?",
		orderBy, strings.ToUpper(orderDir),
	)
	items, err := r.queryCosts(query, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}

	return &CostsPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

func (r *SQLiteRepository) BulkDeleteCosts(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf("DELETE FROM costs WHERE id IN (%s)", placeholders(len(ids)))
	res, err := r.db.Exec(query, idsToArgs(ids)...)
	if err != nil {
		return 0, fmt.Errorf("bulk delete: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *SQLiteRepository) BulkUpdateCostsDate(ids []int64, createdAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf("UPDATE costs SET created_at = ? WHERE id IN (%s)", placeholders(len(ids)))
	args := append([]interface{}{createdAt.Format(time.RFC3339)}, idsToArgs(ids)...)
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk update date: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// UniqueUserIDs возвращает id всех пользователей, у которых есть хотя бы
// один расход. Меню строит по ним кнопки чужих расходов.
func (r *SQLiteRepository) UniqueUserIDs() ([]int64, error) {
	rows, err := r.db.Query("SELECT DISTINCT user_id FROM costs ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("unique users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) RecentCosts(userID int64, limit int) ([]Cost, error) {
	return r.queryCosts(
		"SELECT id, user_id, text, created_at FROM costs WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		userID, limit,
	)
}

func (r *SQLiteRepository) CostsByUser(userID int64) ([]Cost, error) {
	return r.queryCosts(
		"SELECT id, user_id, text, created_at FROM costs WHERE user_id = ? ORDER BY created_at",
		userID,
	)
}

func (r *SQLiteRepository) CostsByPeriod(from, to time.Time) ([]Cost, error) {
	return r.queryCosts(
		"SELECT id, user_id, text, created_at FROM costs WHERE created_at >= ? AND created_at < ? ORDER BY created_at",
		from.Format(time.RFC3339), to.Format(time.RFC3339),
	)
}

func (r *SQLiteRepository) queryCosts(query string, args ...interface{}) ([]Cost, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query costs: %w", err)
	}
	defer rows.Close()

	var costs []Cost
	for rows.Next() {
		var c Cost
		var ds string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Text, &ds); err != nil {
			return nil, fmt.Errorf("scan cost: %w", err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, ds)
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

const userColumns = "id, telegram_id, name, COALESCE(password_hash, ''), role, created_at"

func (r *SQLiteRepository) GetAllUsers() ([]User, error) {
	rows, err := r.db.Query("SELECT " + userColumns + " FROM users ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var ds string
		if err := rows.Scan(&u.ID, &u.TelegramID, &u.Name, &u.PasswordHash, &u.Role, &ds); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt, _ = time.Parse(time.RFC3339, ds)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SQLiteRepository) GetUserByID(id int) (*User, error) {
	return r.getUser("SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

func (r *SQLiteRepository) GetUserByTelegramID(telegramID int64) (*User, error) {
	return r.getUser("SELECT "+userColumns+" FROM users WHERE telegram_id = ?", telegramID)
}

func (r *SQLiteRepository) getUser(query string, arg interface{}) (*User, error) {
	var u User
	var ds string

	err := r.db.QueryRow(query, arg).Scan(&u.ID, &u.TelegramID, &u.Name, &u.PasswordHash, &u.Role, &ds)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	u.CreatedAt, _ = time.Parse(time.RFC3339, ds)
	return &u, nil
}

func (r *SQLiteRepository) CreateUser(telegramID int64, name, passwordHash string) (int, error) {
	res, err := r.db.Exec(
		"INSERT INTO users(telegram_id, name, password_hash, created_at) VALUES(?, ?, ?, ?)",
		telegramID, name, nullable(passwordHash), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	id, _ := res.LastInsertId()
	return int(id), nil
}

func (r *SQLiteRepository) UpdateUser(id int, telegramID int64, name, role string) (bool, error) {
	res, err := r.db.Exec(
		"UPDATE users SET telegram_id = ?, name = ?, role = ? WHERE id = ?",
		telegramID, name, role, id,
	)
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *SQLiteRepository) DeleteUser(id int) (bool, error) {
	res, err := r.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *SQLiteRepository) UpdateUserPassword(id int, passwordHash string) (bool, error) {
	res, err := r.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *SQLiteRepository) UpdateUserRole(id int, role string) error {
	if _, err := r.db.Exec("UPDATE users SET role = ? WHERE id = ?", role, id); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CountAdmins() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&n)
	return n, err
}

func (r *SQLiteRepository) CreateImportToken(token string, userID int64) error {
	_, err := r.db.Exec(
		"INSERT INTO import_tokens(token, user_id, created_at) VALUES(?, ?, ?)",
		token, userID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create import token: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetImportToken(token string) (*ImportToken, error) {
	var t ImportToken
	var ds string

	err := r.db.QueryRow(
		"SELECT token, user_id, created_at FROM import_tokens WHERE token = ?",
		token,
	).Scan(&t.Token, &t.UserID, &ds)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get import token: %w", err)
	}

	t.CreatedAt, _ = time.Parse(time.RFC3339, ds)
	return &t, nil
}

func (r *SQLiteRepository) DeleteImportToken(token string) error {
	_, err := r.db.Exec("DELETE FROM import_tokens WHERE token = ?", token)
	return err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idsToArgs(ids []int64) []interface{} {
	args := make([]interface{}, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
