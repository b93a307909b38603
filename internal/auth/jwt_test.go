package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	tm := NewTokenManager("test-secret", "movers-test", time.Hour)

	t.Run("RoundTrip", func(t *testing.T) {
		token, err := tm.GenerateToken(42, "alice@example.com", "client")
		require.NoError(t, err)

		claims, err := tm.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.UserID)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, "client", claims.Role)
		assert.Equal(t, "movers-test", claims.Issuer)
	})

	t.Run("ZeroUserID", func(t *testing.T) {
		_, err := tm.GenerateToken(0, "alice@example.com", "client")
		assert.Error(t, err)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenManager("other-secret", "movers-test", time.Hour)
		token, err := other.GenerateToken(42, "alice@example.com", "client")
		require.NoError(t, err)

		_, err = tm.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		short := NewTokenManager("test-secret", "movers-test", time.Nanosecond)
		token, err := short.GenerateToken(42, "alice@example.com", "client")
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		_, err = short.ValidateToken(token)
		assert.Error(t, err)
	})
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractToken("")
	assert.Error(t, err)

	_, err = ExtractToken("Basic dXNlcjpwYXNz")
	assert.Error(t, err)

	_, err = ExtractToken("Bearer")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
