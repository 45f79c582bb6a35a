package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// Codec transforms entry payloads on their way to and from disk. It is a
// pluggable at-rest strategy behind the store, invisible to the sync layer.
type Codec interface {
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// NoopCodec stores payloads as-is.
type NoopCodec struct{}

func (NoopCodec) Seal(plain []byte) ([]byte, error)  { return plain, nil }
func (NoopCodec) Open(sealed []byte) ([]byte, error) { return sealed, nil }

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// AESGCMCodec seals payloads with AES-256-GCM. The nonce is prepended to the
// ciphertext.
type AESGCMCodec struct {
	aead cipher.AEAD
}

// DeriveKey derives a 32-byte key from a passphrase and salt with argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// NewAESGCMCodec constructs a codec from a 32-byte key (see DeriveKey).
func NewAESGCMCodec(key []byte) (*AESGCMCodec, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to init gcm: %w", err)
	}
	return &AESGCMCodec{aead: aead}, nil
}

func (c *AESGCMCodec) Seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plain, nil), nil
}

func (c *AESGCMCodec) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < c.aead.NonceSize() {
		return nil, ErrCiphertextTooShort
	}
	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt payload: %w", err)
	}
	return plain, nil
}
