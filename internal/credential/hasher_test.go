package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHasher(t *testing.T, salt string) *Hasher {
	t.Helper()
	h, err := NewHasher(salt, 1000)
	require.NoError(t, err)
	return h
}

func TestHash_Deterministic(t *testing.T) {
	h := newTestHasher(t, "pepper")

	for _, secret := range []string{"", "password", "パスワード", "a much longer secret with spaces"} {
		first := h.Hash(secret)
		second := h.Hash(secret)
		assert.Equal(t, first, second, secret)
		assert.Len(t, first, DigestSize*2)
	}
}

func TestHash_DistinctInputs(t *testing.T) {
	h := newTestHasher(t, "pepper")

	seen := map[string]string{}
	for _, secret := range []string{"password", "password1", "Password", "passwor", " password"} {
		d := h.Hash(secret)
		if prev, ok := seen[d]; ok {
			t.Fatalf("collision between %q and %q", prev, secret)
		}
		seen[d] = secret
	}
}

func TestHash_SaltChangesDigest(t *testing.T) {
	a := newTestHasher(t, "salt-a")
	b := newTestHasher(t, "salt-b")

	assert.NotEqual(t, a.Hash("password"), b.Hash("password"))
}

func TestNewHasher_RequiresSalt(t *testing.T) {
	_, err := NewHasher("", 1000)
	assert.ErrorIs(t, err, ErrMissingSalt)

	_, err = NewHasher("pepper", 0)
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	h := newTestHasher(t, "pepper")
	digest := h.Hash("secret")

	assert.True(t, h.Verify("secret", digest))
	assert.False(t, h.Verify("Secret", digest))
}
