package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHash_RejectsShortPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash("seven77")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestHashAndCompare(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("long enough password")
	require.NoError(t, err)
	assert.NotEqual(t, "long enough password", hash)

	assert.NoError(t, h.Compare(hash, "long enough password"))
	assert.Error(t, h.Compare(hash, "a different password"))
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MaxCost + 1)

	hash, err := h.Hash("long enough password")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
