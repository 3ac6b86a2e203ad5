// Package cache memoizes embedding vectors across claims and runs. The
// same claim text appears in many answers; skipping repeat provider calls
// is the difference between interactive and sluggish batch verification.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores opaque byte values under string keys
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a stable cache key from the embedding provider name and the
// embedded text
func Key(provider, text string) string {
	hash := sha256.Sum256([]byte(provider + "\x00" + text))
	return "veridict:v1:" + hex.EncodeToString(hash[:])
}
