package main

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/family-costs-bot/internal/logger"
	"github.com/avolkov/family-costs-bot/internal/repository"
	"github.com/avolkov/family-costs-bot/internal/security"
)

const (
	sessionCookie  = "session"
	sessionTTL     = 24 * time.Hour
	maxLoginTries  = 5
	loginTryWindow = 5 * time.Minute
)

type session struct {
	UserID    int
	Name      string
	Role      string
	CSRF      string
	ExpiresAt time.Time
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (s *sessionStore) create(u *repository.User) (string, *session) {
	token := uuid.NewString()
	sess := &session{
		UserID:    u.ID,
		Name:      u.Name,
		Role:      u.Role,
		CSRF:      uuid.NewString(),
		ExpiresAt: time.Now().Add(sessionTTL),
	}
	s.mu.Lock()
	s.sessions[token] = sess
	s.mu.Unlock()
	return token, sess
}

func (s *sessionStore) get(token string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, token)
		return nil
	}
	return sess
}

func (s *sessionStore) drop(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// loginLimiter считает неудачные попытки входа по IP.
type loginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

func newLoginLimiter() *loginLimiter {
	return &loginLimiter{attempts: make(map[string][]time.Time)}
}

func (l *loginLimiter) blocked(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-loginTryWindow)
	fresh := l.attempts[ip][:0]
	for _, t := range l.attempts[ip] {
		if t.After(cutoff) {
			fresh = append(fresh, t)
		}
	}
	l.attempts[ip] = fresh
	return len(fresh) >= maxLoginTries
}

func (l *loginLimiter) fail(ip string) {
	l.mu.Lock()
	l.attempts[ip] = append(l.attempts[ip], time.Now())
	l.mu.Unlock()
}

func (l *loginLimiter) reset(ip string) {
	l.mu.Lock()
	delete(l.attempts, ip)
	l.mu.Unlock()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (a *app) currentSession(r *http.Request) *session {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	return a.sessions.get(c.Value)
}

// requireAuth пускает дальше только с живой сессией, POST дополнительно
// проверяется по CSRF-токену.
func (a *app) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := a.currentSession(r)
		if sess == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if r.Method == http.MethodPost && r.FormValue("csrf_token") != sess.CSRF {
			http.Error(w, "CSRF token mismatch", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *app) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := a.currentSession(r)
		if sess == nil || sess.Role != "admin" {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginData struct {
	Users []repository.User
	Error string
}

func (a *app) loginForm(w http.ResponseWriter, r *http.Request) {
	a.renderLogin(w, "")
}

func (a *app) renderLogin(w http.ResponseWriter, errText string) {
	users, err := a.repo.GetAllUsers()
	if err != nil {
		logger.Error("Failed to list users for login", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	loginTmpl.Execute(w, loginData{Users: users, Error: errText})
}

func (a *app) loginSubmit(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if a.logins.blocked(ip) {
		a.renderLogin(w, "Слишком много попыток входа. Подождите пять минут.")
		return
	}

	userID, err := strconv.Atoi(r.FormValue("user_id"))
	if err != nil {
		a.renderLogin(w, "Выберите пользователя.")
		return
	}
	password := r.FormValue("password")

	user, err := a.repo.GetUserByID(userID)
	if err != nil || user == nil {
		a.logins.fail(ip)
		a.renderLogin(w, "Неверный пользователь или пароль.")
		return
	}

	// первый вход: пароля ещё нет, введённый становится паролем
	if user.PasswordHash == "" {
		if len(password) < 4 {
			a.renderLogin(w, "Пароль должен быть не короче 4 символов.")
			return
		}
		hash, err := security.HashPassword(password)
		if err != nil {
			logger.Error("Failed to hash password", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if _, err := a.repo.UpdateUserPassword(user.ID, hash); err != nil {
			logger.Error("Failed to set password", "user_id", user.ID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		logger.Info("Password set on first login", "user_id", user.ID)
	} else if !security.VerifyPassword(password, user.PasswordHash) {
		a.logins.fail(ip)
		logger.Warn("Failed login attempt", "user_id", user.ID, "ip", ip)
		a.renderLogin(w, "Неверный пользователь или пароль.")
		return
	}

	a.logins.reset(ip)
	token, _ := a.sessions.create(user)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionTTL),
	})
	logger.Info("User logged in", "user_id", user.ID, "name", user.Name)
	http.Redirect(w, r, "/costs", http.StatusSeeOther)
}

func (a *app) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		a.sessions.drop(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
