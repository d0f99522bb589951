// AngelaMos | 2026
// security_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, rehash, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, rehash)

	ok, _, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordRehashesWeakParams(t *testing.T) {
	weak := DefaultArgonParams
	weak.Memory = 8 * 1024

	hash, err := hashWith("pw", weak)
	require.NoError(t, err)

	ok, rehash, err := VerifyPassword("pw", hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, rehash)
	assert.NotEqual(t, hash, rehash)
}

func TestVerifyPasswordRejectsGarbage(t *testing.T) {
	_, _, err := VerifyPassword("pw", "not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, _, err = VerifyPassword("pw", "$bcrypt$v=1$m=1,t=1,p=1$aa$bb")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, SecureCompare("admin", "admin"))
	assert.False(t, SecureCompare("admin", "Admin"))
	assert.False(t, SecureCompare("admin", "admin "))
}

func TestBurnPasswordCheckDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { BurnPasswordCheck("anything") })
}
