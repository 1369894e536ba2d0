package kv

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for deriving the sealing key from the device
// secret. Matched to the interactive-login profile; changing them
// invalidates previously sealed values.
const (
	sealKDFTime    = 1
	sealKDFMemory  = 64 * 1024 // KiB
	sealKDFThreads = 4
	sealKeyLength  = 32
)

// Key-derivation salt. The device secret is the only confidential
// input; the salt just domain-separates this derivation.
var sealKDFSalt = []byte("authkit/kv/sealed/v1")

// Sealed wraps another Store and encrypts values at rest with
// AES-256-GCM. The key name is bound as additional data, so a value
// copied under a different key fails to open.
type Sealed struct {
	inner Store
	aead  cipher.AEAD
}

// NewSealed derives a sealing key from secret via argon2id and wraps
// inner. The secret must be non-empty; it is not retained.
func NewSealed(inner Store, secret []byte) (*Sealed, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty device secret", ErrUnavailable)
	}

	key := argon2.IDKey(secret, sealKDFSalt, sealKDFTime, sealKDFMemory, sealKDFThreads, sealKeyLength)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &Sealed{inner: inner, aead: aead}, nil
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(sealed))
}

func (s *Sealed) Get(ctx context.Context, key string) (string, bool, error) {
	stored, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}

	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", false, fmt.Errorf("%w: sealed value corrupt: %v", ErrUnavailable, err)
	}
	if len(raw) < s.aead.NonceSize() {
		return "", false, fmt.Errorf("%w: sealed value truncated", ErrUnavailable)
	}

	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("%w: sealed value rejected: %v", ErrUnavailable, err)
	}

	return string(plain), true, nil
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
