package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-1", "anna@example.edu", "anna", "access", time.Hour, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "anna@example.edu", claims.Email)
	assert.Equal(t, "anna", claims.Username)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateJWT("user-1", "anna@example.edu", "anna", "access", -time.Minute, testSecret)
	require.NoError(t, err)

	_, err = ValidateJWT(token, testSecret)
	assert.Error(t, err)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("user-1", "anna@example.edu", "anna", "access", time.Hour, testSecret)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "a-different-secret")
	assert.Error(t, err)
}

func TestJWTGarbageToken(t *testing.T) {
	_, err := ValidateJWT("not.a.token", testSecret)
	assert.Error(t, err)
}
