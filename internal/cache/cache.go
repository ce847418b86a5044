package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte store with per-entry TTL. OCR output is keyed by content
// hash, so re-submitting the same scan never pays for a second tesseract run.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from file content
func Key(content []byte) string {
	hash := sha256.Sum256(content)
	return "ara:v1:" + hex.EncodeToString(hash[:])
}
