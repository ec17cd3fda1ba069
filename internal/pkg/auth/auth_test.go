package auth

import (
	"testing"
	"time"

	"github.com/hackerz/marketplace/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "test"},
		JWT: config.JWTConfig{
			Secret:             "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func TestTokenPairTypesAreNotInterchangeable(t *testing.T) {
	manager := NewJWTManager(testConfig())

	pair, err := manager.GenerateTokenPair(7, "ada@example.com", true)
	require.NoError(t, err)

	claims, err := manager.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.True(t, claims.IsAdmin)

	_, err = manager.ValidateAccessToken(pair.RefreshToken)
	assert.Error(t, err)

	refresh, err := manager.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.False(t, refresh.IsAdmin)
}

func TestTokenSignedWithOtherSecretIsRejected(t *testing.T) {
	other := testConfig()
	other.JWT.Secret = "ffffffffffffffffffffffffffffffff"

	pair, err := NewJWTManager(other).GenerateTokenPair(1, "x@example.com", false)
	require.NoError(t, err)

	_, err = NewJWTManager(testConfig()).ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc"))
	assert.Empty(t, ExtractTokenFromHeader(""))
}

func TestPasswordHashing(t *testing.T) {
	manager := NewPasswordManager(testConfig())

	_, err := manager.HashPassword("short1")
	assert.Error(t, err)
	_, err = manager.HashPassword("onlyletters")
	assert.Error(t, err)

	hash, err := manager.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NoError(t, manager.VerifyPassword("hunter2hunter2", hash))
	assert.Error(t, manager.VerifyPassword("wrong-password1", hash))
}

func TestGenerateTwoFactorCode(t *testing.T) {
	a, err := GenerateTwoFactorCode()
	require.NoError(t, err)
	b, err := GenerateTwoFactorCode()
	require.NoError(t, err)

	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
}
