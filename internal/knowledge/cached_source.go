package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/spherical-ai/profile-assistant/internal/cache"
	"github.com/spherical-ai/profile-assistant/internal/observability"
)

// CachedSource serves the document from a shared cache and refills it from
// the wrapped source on a miss. Cache failures degrade to a direct fetch.
type CachedSource struct {
	inner  Source
	cache  cache.Client
	ttl    time.Duration
	key    string
	logger *observability.Logger
}

// NewCachedSource wraps inner with a cache layer.
func NewCachedSource(inner Source, client cache.Client, ttl time.Duration, logger *observability.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &CachedSource{
		inner:  inner,
		cache:  client,
		ttl:    ttl,
		key:    cache.HashKey("knowledge", inner.Name()),
		logger: logger,
	}
}

// Name returns the wrapped source name.
func (s *CachedSource) Name() string { return s.inner.Name() }

// Fetch returns cached entries when present.
func (s *CachedSource) Fetch(ctx context.Context) ([]Entry, error) {
	data, err := s.cache.Get(ctx, s.key)
	if err == nil {
		entries, perr := ParseDocument(data)
		if perr == nil {
			s.logger.Debug().Str("key", s.key).Int("entries", len(entries)).Msg("Knowledge cache hit")
			return entries, nil
		}
		s.logger.Warn().Err(perr).Str("key", s.key).Msg("Discarding unreadable cached knowledge document")
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("Knowledge cache get failed")
	}

	entries, err := s.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if len(entries) > 0 {
		encoded, merr := json.Marshal(entries)
		if merr == nil {
			if serr := s.cache.Set(ctx, s.key, encoded, s.ttl); serr != nil {
				s.logger.Warn().Err(serr).Str("key", s.key).Msg("Knowledge cache set failed")
			}
		}
	}

	return entries, nil
}

// Invalidate drops the cached document.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, s.key)
}

// Close closes the wrapped source when it holds resources.
func (s *CachedSource) Close() error {
	if c, ok := s.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
