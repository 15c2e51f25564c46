package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("secret1", 4)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, ComparePassword(hash, "secret1"))
	assert.Error(t, ComparePassword(hash, "secret2"))
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("secret1", 4)
	require.NoError(t, err)
	second, err := HashPassword("secret1", 4)
	require.NoError(t, err)

	// bcrypt embeds a random salt, so equal inputs produce distinct digests.
	assert.NotEqual(t, first, second)
}
