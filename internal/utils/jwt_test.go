package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(testSecret, userID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("another-secret", token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken(testSecret, "not.a.token")
	assert.Error(t, err)
}

func TestParseTokenRejectsUnsignedAlgorithm(t *testing.T) {
	claims := &accessClaims{UserID: uuid.NewString()}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, unsigned)
	assert.Error(t, err)
}
