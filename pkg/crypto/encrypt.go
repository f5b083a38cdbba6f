package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrCiphertext is returned when a sealed value cannot be opened.
var ErrCiphertext = errors.New("crypto: malformed or tampered ciphertext")

// Encryptor seals short secrets (one-time codes) with AES-256-GCM.
// Each sealed value is bound to a context string, so a ciphertext copied
// onto another row fails to open.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor creates an encryptor from a 32-byte key.
func NewEncryptor(key string) (*Encryptor, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be exactly 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Encryptor{aead: aead}, nil
}

// Seal encrypts plaintext bound to boundTo and returns base64(nonce|ciphertext).
func (e *Encryptor) Seal(plaintext, boundTo string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), []byte(boundTo))
	return base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. boundTo must match the value used when sealing.
func (e *Encryptor) Open(encoded, boundTo string) (string, error) {
	raw, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrCiphertext
	}
	n := e.aead.NonceSize()
	if len(raw) < n {
		return "", ErrCiphertext
	}
	plain, err := e.aead.Open(nil, raw[:n], raw[n:], []byte(boundTo))
	if err != nil {
		return "", ErrCiphertext
	}
	return string(plain), nil
}
