package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_AccessToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Minute, time.Hour)

	token, err := tm.GenerateAccessToken(12, "desk@toolshed.test", "staff")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int32(12), claims.UserID)
	assert.Equal(t, "staff", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_RefreshTokenHasUniqueID(t *testing.T) {
	tm := NewTokenManager("test-secret", 0, 0)

	first, err := tm.GenerateRefreshToken(3, "a@toolshed.test")
	require.NoError(t, err)
	second, err := tm.GenerateRefreshToken(3, "a@toolshed.test")
	require.NoError(t, err)

	c1, err := tm.ValidateToken(first)
	require.NoError(t, err)
	c2, err := tm.ValidateToken(second)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, c1.Type)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Minute, time.Hour)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", time.Minute, time.Hour)
		token, err := other.GenerateAccessToken(1, "", "member")
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewTokenManager("test-secret", time.Minute, time.Hour).(*tokenManager)
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := expired.GenerateAccessToken(1, "", "member")
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
