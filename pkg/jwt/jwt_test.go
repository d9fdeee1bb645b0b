package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", "shortlink-service", 1)
	token, err := m.GenerateToken(7, "admin", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenManager_RejectsForeignToken(t *testing.T) {
	token, err := NewManager("other", "shortlink-service", 1).GenerateToken(1, "u", "user")
	require.NoError(t, err)

	_, err = NewManager("secret", "shortlink-service", 1).ValidateToken(token)
	assert.Error(t, err)

	_, err = NewManager("secret", "shortlink-service", 1).ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestTokenManager_RejectsWrongIssuer(t *testing.T) {
	token, err := NewManager("secret", "someone-else", 1).GenerateToken(1, "u", "user")
	require.NoError(t, err)
	_, err = NewManager("secret", "shortlink-service", 1).ValidateToken(token)
	assert.Error(t, err)
}
