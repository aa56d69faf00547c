package credential

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

// DigestSize is the length of a derived key in bytes (256 bits).
const DigestSize = 32

var ErrMissingSalt = errors.New("credential: salt must not be empty")

// Hasher turns a plaintext secret into a stored, comparable digest.
// The same secret, salt and iteration count always yield the same digest,
// so sign-in can look a user up by (username, digest).
type Hasher struct {
	salt       []byte
	iterations int
}

// NewHasher fails on an empty salt. There is no fallback value.
func NewHasher(salt string, iterations int) (*Hasher, error) {
	if salt == "" {
		return nil, ErrMissingSalt
	}
	if iterations <= 0 {
		return nil, errors.New("credential: iterations must be positive")
	}
	return &Hasher{salt: []byte(salt), iterations: iterations}, nil
}

// Hash returns the hex encoded PBKDF2-HMAC-SHA256 digest of secret.
func (h *Hasher) Hash(secret string) string {
	key := pbkdf2.Key([]byte(secret), h.salt, h.iterations, DigestSize, sha256.New)
	return hex.EncodeToString(key)
}

// Verify reports whether secret hashes to digest.
func (h *Hasher) Verify(secret, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(h.Hash(secret)), []byte(digest)) == 1
}
