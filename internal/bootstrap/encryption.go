package bootstrap

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"github.com/target/mmk-event-browser/internal/cryptoutil"
)

// CreateEncryptor builds the encryptor that seals stored credentials.
// A 64-char hex key is used as is; any other value is hashed with SHA-256.
// An empty or unusable key falls back to the noop encryptor with a warning.
//
//nolint:ireturn // callers only need the Encryptor contract
func CreateEncryptor(key string, logger *slog.Logger) cryptoutil.Encryptor {
	if logger == nil {
		logger = slog.Default()
	}
	if key == "" {
		logger.Warn("session encryption key is empty; credentials are stored unsealed")
		return cryptoutil.NoopEncryptor{}
	}
	enc, err := cryptoutil.NewAESGCMEncryptor(deriveKey(key))
	if err != nil {
		logger.Warn("failed to create session encryptor; credentials are stored unsealed", "error", err)
		return cryptoutil.NoopEncryptor{}
	}
	return enc
}

func deriveKey(key string) []byte {
	if raw, err := hex.DecodeString(key); err == nil && len(raw) == cryptoutil.KeySize {
		return raw
	}
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}
