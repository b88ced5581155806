package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/spherical-ai/profile-assistant/internal/cache"
	"github.com/spherical-ai/profile-assistant/internal/observability"
)

// CompletionCache stores completion answers keyed by prompt hash.
type CompletionCache struct {
	client cache.Client
	logger *observability.Logger
	config CompletionCacheConfig
}

// CompletionCacheConfig configures the completion cache.
type CompletionCacheConfig struct {
	// TTL is how long an answer is reused
	TTL time.Duration
	// Namespace prefixes every key
	Namespace string
	// Enabled controls whether caching is active
	Enabled bool
}

// DefaultCompletionCacheConfig returns default cache configuration.
func DefaultCompletionCacheConfig() CompletionCacheConfig {
	return CompletionCacheConfig{
		TTL:       time.Hour,
		Namespace: "completion",
		Enabled:   true,
	}
}

// CachedCompletion is the stored form of an answer.
type CachedCompletion struct {
	Text     string    `json:"text"`
	CachedAt time.Time `json:"cached_at"`
}

// NewCompletionCache creates a completion cache.
func NewCompletionCache(client cache.Client, logger *observability.Logger, config CompletionCacheConfig) *CompletionCache {
	if config.Namespace == "" {
		config.Namespace = "completion"
	}
	if config.TTL == 0 {
		config.TTL = time.Hour
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &CompletionCache{client: client, logger: logger, config: config}
}

// Key returns the cache key for a prompt.
func (c *CompletionCache) Key(prompt string) string {
	return cache.HashKey(c.config.Namespace, prompt)
}

// Get returns a cached answer for prompt.
func (c *CompletionCache) Get(ctx context.Context, prompt string) (string, bool) {
	if c == nil || !c.config.Enabled || c.client == nil {
		return "", false
	}

	key := c.Key(prompt)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Debug().Err(err).Str("key", key).Msg("Cache get error")
		}
		return "", false
	}

	var cached CachedCompletion
	if err := json.Unmarshal(data, &cached); err != nil || cached.Text == "" {
		c.logger.Debug().Str("key", key).Msg("Discarding unreadable cached completion")
		return "", false
	}

	observability.RecordCompletion("cached", 0)
	return cached.Text, true
}

// Set stores an answer for prompt.
func (c *CompletionCache) Set(ctx context.Context, prompt, text string) {
	if c == nil || !c.config.Enabled || c.client == nil || text == "" {
		return
	}

	data, err := json.Marshal(CachedCompletion{Text: text, CachedAt: time.Now().UTC()})
	if err != nil {
		return
	}

	key := c.Key(prompt)
	if err := c.client.Set(ctx, key, data, c.config.TTL); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("Cache set error")
	}
}

// Invalidate removes every cached completion.
func (c *CompletionCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.DeleteByPrefix(ctx, c.config.Namespace+":")
}
