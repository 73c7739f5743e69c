package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLen = 16
	keyLen  = 32

	// MinIterations is the lowest PBKDF2 work factor accepted.
	MinIterations = 10000
)

// PasswordHasher derives PBKDF2-HMAC-SHA256 keys.  Encoded hashes are
// base64(salt‖key), so the salt travels with the hash.
type PasswordHasher struct {
	iterations int
}

// NewPasswordHasher returns a hasher using the given iteration count.
func NewPasswordHasher(iterations int) (*PasswordHasher, error) {
	if iterations < MinIterations {
		return nil, fmt.Errorf("pbkdf2 iterations must be >= %d (got %d)", MinIterations, iterations)
	}
	return &PasswordHasher{iterations: iterations}, nil
}

// Hash returns a freshly salted hash of plain.  The only failure is an
// exhausted system random source.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	key := pbkdf2.Key([]byte(plain), salt, h.iterations, keyLen, sha256.New)

	buf := make([]byte, 0, saltLen+keyLen)
	buf = append(buf, salt...)
	buf = append(buf, key...)
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Verify reports whether plain matches encoded.  Malformed input is a
// mismatch, not an error.
func (h *PasswordHasher) Verify(plain, encoded string) bool {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) != saltLen+keyLen {
		return false
	}
	salt, want := raw[:saltLen], raw[saltLen:]
	got := pbkdf2.Key([]byte(plain), salt, h.iterations, keyLen, sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
