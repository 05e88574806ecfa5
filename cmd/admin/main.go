package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/avolkov/family-costs-bot/internal/config"
	"github.com/avolkov/family-costs-bot/internal/logger"
	"github.com/avolkov/family-costs-bot/internal/repository"
)

type app struct {
	cfg      *config.Config
	repo     *repository.SQLiteRepository
	sessions *sessionStore
	logins   *loginLimiter
	pending  *pendingImports
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAdmin()
	if err != nil {
		log.Fatalf("failed to load config: %s", err.Error())
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogToFile); err != nil {
		log.Fatalf("failed to init logger: %s", err.Error())
	}
	defer logger.Close()

	db, err := repository.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open database", "path", cfg.DatabasePath, "error", err)
	}
	defer db.Close()

	if err := repository.InitDB(db); err != nil {
		logger.Fatal("Failed to init database schema", "error", err)
	}

	a := &app{
		cfg:      cfg,
		repo:     repository.NewRepository(db),
		sessions: newSessionStore(),
		logins:   newLoginLimiter(),
		pending:  newPendingImports(),
	}
	a.ensureBootstrapAdmin()

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/login", a.loginForm)
	r.Post("/login", a.loginSubmit)
	r.Post("/logout", a.logout)

	r.Get("/import/{token}", a.importForm)
	r.Post("/import/{token}", a.importUpload)
	r.Post("/import/{token}/save", a.importSave)

	r.Group(func(r chi.Router) {
		r.Use(a.requireAuth)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/costs", http.StatusSeeOther)
		})
		r.Get("/costs", a.costsList)
		r.Post("/costs/add", a.costAdd)
		r.Get("/costs/{id}/edit", a.costEditForm)
		r.Post("/costs/{id}/edit", a.costEditSubmit)
		r.Post("/costs/{id}/delete", a.costDelete)
		r.Post("/costs/bulk_delete", a.costsBulkDelete)
		r.Post("/costs/bulk_date", a.costsBulkDate)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAdmin)
			r.Get("/users", a.usersList)
			r.Post("/users/add", a.userAdd)
			r.Post("/users/{id}/role", a.userSetRole)
			r.Post("/users/{id}/password", a.userSetPassword)
			r.Post("/users/{id}/delete", a.userDelete)
		})
	})

	addr := fmt.Sprintf(":%d", cfg.AdminPort)
	logger.Info("Admin panel starting", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("Admin panel stopped", "error", err)
	}
}

// ensureBootstrapAdmin заводит администратора по ADMIN_TELEGRAM_ID, чтобы
// в свежей базе было кому войти. Пароль он задаёт при первом входе.
func (a *app) ensureBootstrapAdmin() {
	if a.cfg.AdminTelegramID == 0 {
		return
	}
	u, err := a.repo.GetUserByTelegramID(a.cfg.AdminTelegramID)
	if err != nil {
		logger.Error("Failed to check bootstrap admin", "error", err)
		return
	}
	if u == nil {
		id, err := a.repo.CreateUser(a.cfg.AdminTelegramID, "admin", "")
		if err != nil {
			logger.Error("Failed to create bootstrap admin", "error", err)
			return
		}
		if err := a.repo.UpdateUserRole(id, "admin"); err != nil {
			logger.Error("Failed to promote bootstrap admin", "error", err)
		}
		logger.Info("Bootstrap admin created", "telegram_id", a.cfg.AdminTelegramID)
		return
	}
	if u.Role != "admin" {
		if err := a.repo.UpdateUserRole(u.ID, "admin"); err != nil {
			logger.Error("Failed to promote bootstrap admin", "error", err)
		}
	}
}
