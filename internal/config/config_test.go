package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "123456789:AAE6kKq8l5S9pZrwWvMx0dD4uT1yHgFhI3k"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", testToken)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "costs.db", cfg.DatabasePath)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, 4096, cfg.MaxMessageLength)
	assert.Equal(t, 100, cfg.MaxMessageLines)
	assert.Equal(t, 500, cfg.MaxLineLength)
	assert.True(t, cfg.AtomicWrites)
	assert.Empty(t, cfg.AllowedUserIDs)
}

func TestLoadTokenValidation(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"too short", "123:abc"},
		{"no colon", "AAE6kKq8l5S9pZrwWvMx0dD4uT1yHgFhI3k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BOT_TOKEN", tt.token)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadAllowedUserIDs(t *testing.T) {
	t.Setenv("BOT_TOKEN", testToken)
	t.Setenv("ALLOWED_USER_IDS", "1, 42,  100500")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 42, 100500}, cfg.AllowedUserIDs)

	t.Setenv("ALLOWED_USER_IDS", "1,abc")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveLimits(t *testing.T) {
	t.Setenv("BOT_TOKEN", testToken)
	t.Setenv("MAX_MESSAGE_LINES_COUNT", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadAdminWithoutToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("ADMIN_PORT", "8090")

	cfg, err := LoadAdmin()
	require.NoError(t, err)
	assert.Equal(t, 8090, cfg.AdminPort)
}
