package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(MinIterations)
	require.NoError(t, err)
	return h
}

func TestNewPasswordHasher_RejectsLowIterations(t *testing.T) {
	_, err := NewPasswordHasher(MinIterations - 1)
	assert.Error(t, err)
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := newHasher(t)
	for _, pw := range []string{"pw123456", "", "şifre-ğüçö", "a much longer passphrase with spaces"} {
		enc, err := h.Hash(pw)
		require.NoError(t, err)
		assert.True(t, h.Verify(pw, enc), "verify(%q)", pw)

		raw, err := base64.StdEncoding.DecodeString(enc)
		require.NoError(t, err)
		assert.Len(t, raw, saltLen+keyLen)
	}
}

func TestPasswordHasher_SaltIsRandom(t *testing.T) {
	h := newHasher(t)
	a, err := h.Hash("pw123456")
	require.NoError(t, err)
	b, err := h.Hash("pw123456")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_WrongPassword(t *testing.T) {
	h := newHasher(t)
	enc, err := h.Hash("pw123456")
	require.NoError(t, err)
	assert.False(t, h.Verify("pw123457", enc))
	assert.False(t, h.Verify("PW123456", enc))
}

func TestPasswordHasher_MalformedIsFalse(t *testing.T) {
	h := newHasher(t)
	short := base64.StdEncoding.EncodeToString(make([]byte, saltLen+keyLen-1))
	for _, enc := range []string{"", "not base64 !!", short, "$2a$10$abcdefghijklmnopqrstuv"} {
		assert.False(t, h.Verify("pw123456", enc), "verify against %q", enc)
	}
}

func TestPasswordHasher_IterationCountMatters(t *testing.T) {
	h := newHasher(t)
	enc, err := h.Hash("secret")
	require.NoError(t, err)

	other, err := NewPasswordHasher(MinIterations * 2)
	require.NoError(t, err)
	assert.False(t, other.Verify("secret", enc))
}
