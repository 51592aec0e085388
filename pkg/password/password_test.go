package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cretpass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cretpass", hash)

	assert.True(t, h.Verify("s3cretpass", hash))
	assert.False(t, h.Verify("s3cretpasS", hash))
	assert.False(t, h.Verify("", hash))
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, hash := range []string{"", "not-a-hash", "$2a$10$short"} {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("whatever", hash))
		})
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	tests := []struct {
		cost int
		want int
	}{
		{cost: 0, want: DefaultCost},
		{cost: 2, want: DefaultCost},
		{cost: 12, want: 12},
		{cost: 99, want: DefaultCost},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NewHasher(tt.cost).Cost)
	}
}

func TestHashUsesConfiguredCost(t *testing.T) {
	h := NewHasher(5)
	hash, err := h.Hash("password123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}

func TestLongPasswords(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, plaintext := range []string{
		strings.Repeat("a", 72),
		strings.Repeat("a", 80),
		strings.Repeat("é", 50),
	} {
		hash, err := h.Hash(plaintext)
		require.NoError(t, err)
		assert.True(t, h.Verify(plaintext, hash))
	}

	hash, err := h.Hash(strings.Repeat("a", 80))
	require.NoError(t, err)
	assert.True(t, h.Verify(strings.Repeat("a", 72)+"different", hash))
	assert.False(t, h.Verify(strings.Repeat("a", 71), hash))
}
