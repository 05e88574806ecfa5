package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avolkov/family-costs-bot/internal/logger"
	"github.com/avolkov/family-costs-bot/internal/repository"
	"github.com/avolkov/family-costs-bot/internal/security"
)

type usersPageData struct {
	CSRF  string
	Flash string
	Error string
	Users []repository.User
}

func (a *app) usersList(w http.ResponseWriter, r *http.Request) {
	sess := a.currentSession(r)
	users, err := a.repo.GetAllUsers()
	if err != nil {
		logger.Error("Failed to list users", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	q := r.URL.Query()
	usersTmpl.Execute(w, usersPageData{
		CSRF:  sess.CSRF,
		Flash: q.Get("flash"),
		Error: q.Get("error"),
		Users: users,
	})
}

func (a *app) userAdd(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	if name == "" {
		redirectWithError(w, r, "/users", "Имя не может быть пустым.")
		return
	}
	telegramID, err := strconv.ParseInt(r.FormValue("telegram_id"), 10, 64)
	if err != nil || telegramID <= 0 {
		redirectWithError(w, r, "/users", "Некорректный Telegram ID.")
		return
	}

	id, err := a.repo.CreateUser(telegramID, name, "")
	if err != nil {
		logger.Error("Failed to create user", "error", err)
		redirectWithError(w, r, "/users", "Не удалось создать пользователя (Telegram ID занят?).")
		return
	}
	if role := r.FormValue("role"); role == "admin" {
		if err := a.repo.UpdateUserRole(id, "admin"); err != nil {
			logger.Error("Failed to set role", "user_id", id, "error", err)
		}
	}
	redirectWithFlash(w, r, "/users", "Пользователь создан. Пароль он задаст при первом входе.")
}

func (a *app) userSetRole(w http.ResponseWriter, r *http.Request) {
	id, user, ok := a.userFromURL(w, r)
	if !ok {
		return
	}
	role := r.FormValue("role")
	if role != "admin" && role != "user" {
		redirectWithError(w, r, "/users", "Некорректная роль.")
		return
	}

	// не даём разжаловать последнего администратора
	if user.Role == "admin" && role == "user" {
		if n, err := a.repo.CountAdmins(); err != nil || n <= 1 {
			redirectWithError(w, r, "/users", "Нельзя разжаловать последнего администратора.")
			return
		}
	}

	if err := a.repo.UpdateUserRole(id, role); err != nil {
		logger.Error("Failed to update role", "user_id", id, "error", err)
		redirectWithError(w, r, "/users", "Ошибка базы данных.")
		return
	}
	redirectWithFlash(w, r, "/users", "Роль обновлена.")
}

func (a *app) userSetPassword(w http.ResponseWriter, r *http.Request) {
	id, _, ok := a.userFromURL(w, r)
	if !ok {
		return
	}
	password := r.FormValue("password")
	if len(password) < 4 {
		redirectWithError(w, r, "/users", "Пароль должен быть не короче 4 символов.")
		return
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if _, err := a.repo.UpdateUserPassword(id, hash); err != nil {
		logger.Error("Failed to update password", "user_id", id, "error", err)
		redirectWithError(w, r, "/users", "Ошибка базы данных.")
		return
	}
	redirectWithFlash(w, r, "/users", "Пароль изменён.")
}

func (a *app) userDelete(w http.ResponseWriter, r *http.Request) {
	id, user, ok := a.userFromURL(w, r)
	if !ok {
		return
	}
	if user.Role == "admin" {
		if n, err := a.repo.CountAdmins(); err != nil || n <= 1 {
			redirectWithError(w, r, "/users", "Нельзя удалить последнего администратора.")
			return
		}
	}
	if _, err := a.repo.DeleteUser(id); err != nil {
		logger.Error("Failed to delete user", "user_id", id, "error", err)
		redirectWithError(w, r, "/users", "Ошибка базы данных.")
		return
	}
	redirectWithFlash(w, r, "/users", "Пользователь удалён.")
}

func (a *app) userFromURL(w http.ResponseWriter, r *http.Request) (int, *repository.User, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad user id", http.StatusBadRequest)
		return 0, nil, false
	}
	user, err := a.repo.GetUserByID(id)
	if err != nil {
		logger.Error("Failed to fetch user", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return 0, nil, false
	}
	if user == nil {
		http.NotFound(w, r)
		return 0, nil, false
	}
	return id, user, true
}
