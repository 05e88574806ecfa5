package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config собирается из переменных окружения один раз на старте процесса.
// .env подхватывается в main через godotenv.
type Config struct {
	BotToken     string
	DatabasePath string
	Env          string

	LogLevel  string
	LogToFile bool

	MaxMessageLength int
	MaxMessageLines  int
	MaxLineLength    int

	// AtomicWrites выключают в деплойментах, где шлюз хранения не даёт
	// транзакций; тогда частичные сбои пачки отражаются в ответе по именам.
	AtomicWrites bool

	AllowedUserIDs []int64

	AdminPort       int
	AdminTelegramID int64
	WebBaseURL      string
}

func Load() (*Config, error) {
	cfg := &Config{
		BotToken:         os.Getenv("BOT_TOKEN"),
		DatabasePath:     envOr("DATABASE_PATH", "costs.db"),
		Env:              envOr("ENV", "prod"),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
		LogToFile:        envBool("LOG_TO_FILE", true),
		MaxMessageLength: envInt("MAX_MESSAGE_LENGTH", 4096),
		MaxMessageLines:  envInt("MAX_MESSAGE_LINES_COUNT", 100),
		MaxLineLength:    envInt("MAX_MESSAGE_LINE_LENGTH", 500),
		AtomicWrites:     envBool("ATOMIC_WRITES", true),
		AdminPort:        envInt("ADMIN_PORT", 3000),
		WebBaseURL:       envOr("WEB_BASE_URL", "http://localhost:3000"),
	}

	if err := validateToken(cfg.BotToken); err != nil {
		return nil, err
	}
	if cfg.Env != "dev" && cfg.Env != "prod" {
		return nil, fmt.Errorf("ENV должен быть dev или prod, получено %q", cfg.Env)
	}
	if cfg.MaxMessageLength <= 0 || cfg.MaxMessageLines <= 0 || cfg.MaxLineLength <= 0 {
		return nil, fmt.Errorf("лимиты сообщений должны быть положительными")
	}

	if raw := os.Getenv("ALLOWED_USER_IDS"); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil {
			return nil, fmt.Errorf("ALLOWED_USER_IDS: %w", err)
		}
		cfg.AllowedUserIDs = ids
	}

	if raw := os.Getenv("ADMIN_TELEGRAM_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID: %w", err)
		}
		cfg.AdminTelegramID = id
	}

	return cfg, nil
}

// LoadAdmin — конфигурация админки; токен бота ей не нужен.
func LoadAdmin() (*Config, error) {
	cfg, err := Load()
	if err == nil {
		return cfg, nil
	}
	if os.Getenv("BOT_TOKEN") != "" {
		return nil, err
	}

	cfg = &Config{
		DatabasePath:    envOr("DATABASE_PATH", "costs.db"),
		Env:             envOr("ENV", "prod"),
		LogLevel:        envOr("LOG_LEVEL", "INFO"),
		LogToFile:       envBool("LOG_TO_FILE", true),
		AdminPort:       envInt("ADMIN_PORT", 3000),
		WebBaseURL:      envOr("WEB_BASE_URL", "http://localhost:3000"),
		AdminTelegramID: envInt64("ADMIN_TELEGRAM_ID", 0),
	}
	return cfg, nil
}

// Токены Telegram имеют вид 123456:ABC-DEF..., минимум ~45 символов.
func validateToken(token string) error {
	if token == "" {
		return fmt.Errorf("BOT_TOKEN не задан")
	}
	if len(token) < 20 {
		return fmt.Errorf("BOT_TOKEN слишком короткий")
	}
	if !strings.Contains(token, ":") {
		return fmt.Errorf("BOT_TOKEN должен содержать ':' (формат bot_id:token)")
	}
	return nil
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("некорректный id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
