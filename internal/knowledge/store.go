package knowledge

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/spherical-ai/profile-assistant/internal/observability"
)

// StoreConfig configures a Store.
type StoreConfig struct {
	// FetchTimeout bounds a single load. Zero means no extra bound.
	FetchTimeout time.Duration
}

// Store holds the knowledge entries for the lifetime of the process.
// The first successful load is cached; failed loads are not, so a later
// call retries. Concurrent first loads may fetch redundantly.
type Store struct {
	source Source
	logger *observability.Logger
	config StoreConfig

	mu      sync.RWMutex
	entries []Entry
	loaded  bool
}

// NewStore creates a store reading from source.
func NewStore(source Source, logger *observability.Logger, cfg StoreConfig) *Store {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Store{
		source: source,
		logger: logger.WithComponent("knowledge_store"),
		config: cfg,
	}
}

// Load returns the ordered entries, fetching them on first use. Any fetch
// or decode failure yields an empty slice; it is logged, never returned.
// The returned slice is shared and must not be modified.
func (s *Store) Load(ctx context.Context) []Entry {
	if entries, ok := s.cached(); ok {
		return entries
	}

	if s.source == nil {
		return []Entry{}
	}

	fetchCtx := ctx
	if s.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.config.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	entries, err := s.source.Fetch(fetchCtx)
	if err != nil {
		observability.RecordKnowledgeLoad("error", 0)
		s.logger.WithContext(ctx).Warn().
			Err(err).
			Str("source", s.source.Name()).
			Msg("Knowledge document unavailable, continuing without it")
		return []Entry{}
	}

	if entries == nil {
		entries = []Entry{}
	}
	result := "ok"
	if len(entries) == 0 {
		result = "empty"
	}
	observability.RecordKnowledgeLoad(result, len(entries))

	s.mu.Lock()
	if !s.loaded {
		s.entries = entries[:len(entries):len(entries)]
		s.loaded = true
	}
	entries = s.entries
	s.mu.Unlock()

	s.logger.WithContext(ctx).Info().
		Str("source", s.source.Name()).
		Int("entries", len(entries)).
		Dur("elapsed", time.Since(start)).
		Msg("Knowledge document loaded")

	return entries
}

func (s *Store) cached() ([]Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries, s.loaded
}

// IsLoaded reports whether a load has succeeded.
func (s *Store) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Entries returns the cached entries without fetching.
func (s *Store) Entries() []Entry {
	if entries, ok := s.cached(); ok {
		return entries
	}
	return []Entry{}
}

// FindByIntent returns the first entry carrying intentKey, in document order.
func (s *Store) FindByIntent(ctx context.Context, intentKey string) (Entry, bool) {
	return FindByIntent(s.Load(ctx), intentKey)
}

// FindByIntent returns the first entry of entries carrying intentKey.
func FindByIntent(entries []Entry, intentKey string) (Entry, bool) {
	if intentKey == "" {
		return Entry{}, false
	}
	for _, e := range entries {
		if e.IntentKey == intentKey {
			return e, true
		}
	}
	return Entry{}, false
}

// Source returns the store's document source.
func (s *Store) Source() Source {
	return s.source
}

// Close releases the source's resources.
func (s *Store) Close() error {
	if c, ok := s.source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
