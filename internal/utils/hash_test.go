package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Sup3r$ecret", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "Sup3r$ecret", hash)

	assert.True(t, CheckPassword(hash, "Sup3r$ecret"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	first, err := HashPassword("Sup3r$ecret", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("Sup3r$ecret", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
