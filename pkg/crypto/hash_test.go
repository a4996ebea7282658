package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasherWithParams(FastArgon2Params())

	tests := []struct {
		name     string
		password string
	}{
		{"ascii", "password123"},
		{"unicode", "密碼123"},
		{"long", strings.Repeat("longpass", 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.Hash(tt.password)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

			ok, err := hasher.Verify(tt.password, hash)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = hasher.Verify(tt.password+"x", hash)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestPasswordHasher_UniqueSalt(t *testing.T) {
	hasher := NewPasswordHasherWithParams(FastArgon2Params())
	h1, err := hasher.Hash("same")
	require.NoError(t, err)
	h2, err := hasher.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestPasswordHasher_VerifyUsesEncodedParams(t *testing.T) {
	hash, err := NewPasswordHasherWithParams(FastArgon2Params()).Hash("secret")
	require.NoError(t, err)

	ok, err := NewPasswordHasher().Verify("secret", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordHasher_NeedsRehash(t *testing.T) {
	weak, err := NewPasswordHasherWithParams(FastArgon2Params()).Hash("secret")
	require.NoError(t, err)

	assert.True(t, NewPasswordHasher().NeedsRehash(weak))
	assert.False(t, NewPasswordHasherWithParams(FastArgon2Params()).NeedsRehash(weak))
	assert.True(t, NewPasswordHasher().NeedsRehash("plaintext"))
}

func TestPasswordHasher_Errors(t *testing.T) {
	hasher := NewPasswordHasherWithParams(FastArgon2Params())

	_, err := hasher.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = hasher.Verify("x", "not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = hasher.Verify("x", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = hasher.Verify("x", "$argon2id$v=16$m=1,t=1,p=1$c2FsdA$aGFzaA")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
