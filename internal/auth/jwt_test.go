package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("secret", "gambly-stats")

	token, err := manager.GenerateToken("ops", time.Hour)
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, "gambly-stats", claims.Issuer)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager("secret", "gambly-stats")
	other := NewJWTManager("different", "gambly-stats")

	token, err := manager.GenerateToken("ops", time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	manager := NewJWTManager("secret", "gambly-stats")

	token, err := manager.GenerateToken("ops", -time.Minute)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromBearer(t *testing.T) {
	manager := NewJWTManager("secret", "gambly-stats")

	assert.Equal(t, "abc123", manager.ExtractTokenFromBearer("Bearer abc123"))
	assert.Empty(t, manager.ExtractTokenFromBearer("abc123"))
	assert.Empty(t, manager.ExtractTokenFromBearer(""))
}
