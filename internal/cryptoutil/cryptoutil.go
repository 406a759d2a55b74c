// Package cryptoutil seals session credentials before they leave the process.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

const (
	sealedPrefixV1 = "v1:"
	plainPrefix    = "noop:"
)

// ErrUnknownFormat is returned when a stored value carries no known prefix.
var ErrUnknownFormat = errors.New("unknown sealed value format")

// Encryptor seals and opens stored values.
type Encryptor interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(sealed string) ([]byte, error)
}

// AESGCMEncryptor seals values with AES-256-GCM and a random nonce.
// Output is "v1:" followed by base64(nonce||ciphertext).
type AESGCMEncryptor struct {
	aead cipher.AEAD
}

// NewAESGCMEncryptor builds an encryptor from a KeySize-byte key.
func NewAESGCMEncryptor(key []byte) (*AESGCMEncryptor, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("aes-gcm key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return &AESGCMEncryptor{aead: aead}, nil
}

func (e *AESGCMEncryptor) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(plaintext)+e.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, plaintext, nil)
	return sealedPrefixV1 + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Values written by NoopEncryptor,
// before a key was configured, are still readable.
func (e *AESGCMEncryptor) Decrypt(sealed string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(sealed, plainPrefix); ok {
		return decodePlain(rest)
	}
	rest, ok := strings.CutPrefix(sealed, sealedPrefixV1)
	if !ok {
		return nil, ErrUnknownFormat
	}
	data, err := base64.StdEncoding.DecodeString(rest)
	if err != nil {
		return nil, fmt.Errorf("decode sealed value: %w", err)
	}
	n := e.aead.NonceSize()
	if len(data) < n+e.aead.Overhead() {
		return nil, errors.New("sealed value too short")
	}
	pt, err := e.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed value: %w", err)
	}
	return pt, nil
}

// NoopEncryptor marks values as unsealed. Used when no key is configured and
// in tests.
type NoopEncryptor struct{}

func (NoopEncryptor) Encrypt(plaintext []byte) (string, error) {
	return plainPrefix + base64.StdEncoding.EncodeToString(plaintext), nil
}

func (NoopEncryptor) Decrypt(sealed string) ([]byte, error) {
	rest, ok := strings.CutPrefix(sealed, plainPrefix)
	if !ok {
		return nil, ErrUnknownFormat
	}
	return decodePlain(rest)
}

func decodePlain(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode unsealed value: %w", err)
	}
	return b, nil
}
