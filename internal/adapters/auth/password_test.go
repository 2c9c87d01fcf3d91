package auth

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"navexpo/internal/domain"
)

func TestBcryptHasher_GenerateSalt(t *testing.T) {
	h := NewBcryptHasher(DefaultCost)
	hexRe := regexp.MustCompile(`^[0-9a-f]{64}$`)

	seen := map[string]bool{}
	for range 5 {
		salt, err := h.GenerateSalt()
		require.NoError(t, err)
		assert.Regexp(t, hexRe, salt)
		assert.False(t, seen[salt], "salt repeated")
		seen[salt] = true
	}
}

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	h := NewBcryptHasher(4)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	hash, err := h.Hash(salt, "my-secret-password")
	require.NoError(t, err)
	require.NoError(t, h.Compare(hash, salt, "my-secret-password"))

	assert.ErrorIs(t, h.Compare(hash, salt, "wrong"), domain.ErrInvalidCredentials)

	other, err := h.GenerateSalt()
	require.NoError(t, err)
	assert.ErrorIs(t, h.Compare(hash, other, "my-secret-password"), domain.ErrInvalidCredentials)
}

func TestBcryptHasher_LongPasswordsDiffer(t *testing.T) {
	h := NewBcryptHasher(4)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	long := strings.Repeat("a", 100)
	hash, err := h.Hash(salt, long+"1")
	require.NoError(t, err)
	assert.Error(t, h.Compare(hash, salt, long+"2"))
}
