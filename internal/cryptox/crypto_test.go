package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt-value")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 32)
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveKey(password, []byte("salt-1"))
	key2 := DeriveKey(password, []byte("salt-2"))

	assert.False(t, bytes.Equal(key1, key2))
}

func TestSealer_RoundTrip(t *testing.T) {
	s := NewSealer("correct horse")
	plain := []byte(`{"name":"Ada","age":36}`)

	sealed, err := s.Seal(plain)
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, string(sealed), "Ada")

	got, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestSealer_FreshNoncePerSeal(t *testing.T) {
	s := NewSealer("pw")
	a, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSealer_OpenWithOtherInstanceSamePassphrase(t *testing.T) {
	sealed, err := NewSealer("pw").Seal([]byte("payload"))
	require.NoError(t, err)

	got, err := NewSealer("pw").Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestSealer_WrongPassphrase(t *testing.T) {
	sealed, err := NewSealer("pw").Seal([]byte("payload"))
	require.NoError(t, err)

	_, err = NewSealer("other").Open(sealed)
	assert.ErrorIs(t, err, ErrOpen)
}

func TestSealer_Tampered(t *testing.T) {
	s := NewSealer("pw")
	sealed, err := s.Seal([]byte("payload"))
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xff
	_, err = s.Open(sealed)
	assert.ErrorIs(t, err, ErrOpen)
}

func TestSealer_OpenRejectsPlainAndTruncated(t *testing.T) {
	s := NewSealer("pw")

	_, err := s.Open([]byte(`{"plain":true}`))
	assert.ErrorIs(t, err, ErrNotSealed)

	_, err = s.Open(append([]byte("MGS1"), 1, 2, 3))
	assert.ErrorIs(t, err, ErrOpen)
}
