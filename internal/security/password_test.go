package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("секретный пароль")
	require.NoError(t, err)
	assert.NotEqual(t, "секретный пароль", hash)

	assert.True(t, VerifyPassword("секретный пароль", hash))
	assert.False(t, VerifyPassword("другой пароль", hash))
	assert.False(t, VerifyPassword("секретный пароль", "не хеш"))
}
