// Package cryptox seals persisted state at rest with a passphrase-derived
// AES-256-GCM key.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/medigenie/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltSize = 16
	keySize  = 32
)

// magic prefixes every sealed blob so plain JSON is never mistaken for one.
var magic = []byte("MGS1")

var ErrNotSealed = errors.New("payload is not sealed")

// ErrOpen is returned when authentication fails: wrong passphrase or
// tampered data.
var ErrOpen = errors.New("failed to open sealed payload")

func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

// IsSealed reports whether data carries the sealed-blob prefix.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

// Sealer encrypts and decrypts blobs with a key derived from one passphrase.
//
// Layout of a sealed blob: magic | salt(16) | nonce(12) | ciphertext+tag.
// A Sealer uses one random salt for everything it seals and remembers keys
// derived for foreign salts it has opened.
type Sealer struct {
	passphrase []byte
	salt       []byte

	mu   sync.Mutex
	keys map[string][]byte
}

func NewSealer(passphrase string) *Sealer {
	s := &Sealer{
		passphrase: []byte(passphrase),
		salt:       common.GenerateRandByteArray(saltSize),
		keys:       make(map[string][]byte),
	}
	return s
}

func (s *Sealer) key(salt []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k, ok := s.keys[string(salt)]; ok {
		return k
	}
	k := DeriveKey(s.passphrase, salt)
	s.keys[string(salt)] = k
	return k
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	aesgcm, err := newGCM(s.key(s.salt))
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())

	out := make([]byte, 0, len(magic)+saltSize+len(nonce)+len(plaintext)+aesgcm.Overhead())
	out = append(out, magic...)
	out = append(out, s.salt...)
	out = append(out, nonce...)
	return aesgcm.Seal(out, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if !IsSealed(sealed) {
		return nil, ErrNotSealed
	}
	rest := sealed[len(magic):]
	if len(rest) < saltSize {
		return nil, fmt.Errorf("%w: truncated header", ErrOpen)
	}
	salt, rest := rest[:saltSize], rest[saltSize:]

	aesgcm, err := newGCM(s.key(salt))
	if err != nil {
		return nil, err
	}
	if len(rest) < aesgcm.NonceSize() {
		return nil, fmt.Errorf("%w: truncated nonce", ErrOpen)
	}
	nonce, ciphertext := rest[:aesgcm.NonceSize()], rest[aesgcm.NonceSize():]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return plaintext, nil
}
