// Package cache provides the key/value caches used for knowledge documents
// and completion answers.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Client defines the cache interface.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

// CacheKey generates a cache key from components.
func CacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}

// HashKey builds a namespaced key from a digest of arbitrary text, so long
// prompts and URLs map to short fixed-size keys.
func HashKey(namespace, text string) string {
	sum := sha256.Sum256([]byte(text))
	return CacheKey(namespace, hex.EncodeToString(sum[:16]))
}
