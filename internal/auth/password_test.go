package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_RoundTrip(t *testing.T) {
	for _, scheme := range []string{SchemeBcrypt, SchemeArgon2id} {
		t.Run(scheme, func(t *testing.T) {
			h, err := NewHasher(scheme)
			require.NoError(t, err)

			first, err := h.Hash("pw1")
			require.NoError(t, err)
			second, err := h.Hash("pw1")
			require.NoError(t, err)

			assert.NotEqual(t, first, second, "hashes of the same secret must be salted")
			assert.True(t, h.Verify("pw1", first))
			assert.True(t, h.Verify("pw1", second))
			assert.False(t, h.Verify("pw2", first))
			assert.False(t, h.Verify("", first))
		})
	}
}

func TestHasher_VerifiesEitherScheme(t *testing.T) {
	bc, err := NewHasher(SchemeBcrypt)
	require.NoError(t, err)
	ar, err := NewHasher(SchemeArgon2id)
	require.NoError(t, err)

	argonHash, err := ar.Hash("secret")
	require.NoError(t, err)
	bcryptHash, err := bc.Hash("secret")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(argonHash, "$argon2id$"))
	assert.True(t, bc.Verify("secret", argonHash))
	assert.True(t, ar.Verify("secret", bcryptHash))
}

func TestHasher_MalformedHashNeverMatches(t *testing.T) {
	h, err := NewHasher(SchemeBcrypt)
	require.NoError(t, err)

	for _, hash := range []string{"", "not-a-hash", "$2a$10$short", "$argon2id$v=19$garbage"} {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("secret", hash))
		})
	}
}

func TestHasher_BurnVerify(t *testing.T) {
	h, err := NewHasher(SchemeBcrypt)
	require.NoError(t, err)
	assert.False(t, h.BurnVerify("anything"))
}

func TestNewHasher_UnknownScheme(t *testing.T) {
	_, err := NewHasher("md5")
	assert.Error(t, err)
}
