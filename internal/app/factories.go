// Package app assembles the assistant's components from configuration. The
// API server and the CLI both build through it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spherical-ai/profile-assistant/internal/cache"
	"github.com/spherical-ai/profile-assistant/internal/completion"
	"github.com/spherical-ai/profile-assistant/internal/config"
	"github.com/spherical-ai/profile-assistant/internal/fit"
	"github.com/spherical-ai/profile-assistant/internal/knowledge"
	"github.com/spherical-ai/profile-assistant/internal/observability"
	"github.com/spherical-ai/profile-assistant/internal/projects"
	"github.com/spherical-ai/profile-assistant/internal/resolver"
)

// App holds the wired components.
type App struct {
	Config          *config.Config
	Logger          *observability.Logger
	Cache           cache.Client
	Chain           *knowledge.ChainSource
	Store           *knowledge.Store
	// DocumentCache is nil when the knowledge document is not cached.
	DocumentCache   *knowledge.CachedSource
	CompletionCache *resolver.CompletionCache
	Completer       completion.Completer
	Resolver        *resolver.Resolver
	Fit             *fit.Analyzer
	Projects        *projects.Catalog
}

// NewLogger builds the logger described by cfg.
func NewLogger(cfg *config.Config) *observability.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
}

// NewCache returns the configured cache. An unreachable Redis degrades to
// the in-memory cache so a replica can still serve.
func NewCache(ctx context.Context, cfg *config.Config, logger *observability.Logger) cache.Client {
	if cfg.Cache.Driver == "redis" {
		client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err == nil {
			logger.Info().Str("addr", cfg.Cache.Redis.Addr).Msg("Using Redis cache")
			return client
		}
		logger.Warn().Err(err).Str("addr", cfg.Cache.Redis.Addr).Msg("Redis unavailable, falling back to memory cache")
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries)
}

// NewCompleter returns the completion client, or nil when completion is not configured.
func NewCompleter(cfg *config.Config, logger *observability.Logger) (completion.Completer, error) {
	if !cfg.CompletionConfigured() {
		return nil, nil
	}

	retry := completion.DefaultRetryConfig()
	retry.MaxRetries = cfg.Completion.MaxRetries

	client, err := completion.NewClient(completion.Config{
		Endpoint:    cfg.Completion.Endpoint,
		APIKey:      cfg.Completion.APIKey,
		Model:       cfg.Completion.Model,
		MaxTokens:   cfg.Completion.MaxTokens,
		Temperature: cfg.Completion.Temperature,
		Timeout:     cfg.Completion.Timeout,
		Retry:       retry,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create completion client: %w", err)
	}
	return client, nil
}

// Build wires every component. Optional documents that fail to load fall
// back to their defaults; only configuration errors are returned.
func Build(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*App, error) {
	if logger == nil {
		logger = NewLogger(cfg)
	}

	httpClient := &http.Client{Timeout: cfg.Knowledge.FetchTimeout}

	chain, err := knowledge.OpenChain(cfg.Knowledge.Sources, cfg.Knowledge.BaseURL, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("open knowledge sources: %w", err)
	}

	side, err := resolveSideDocuments(cfg)
	if err != nil {
		_ = chain.Close()
		return nil, err
	}

	sharedCache := NewCache(ctx, cfg, logger)

	var (
		source   knowledge.Source = chain
		docCache *knowledge.CachedSource
	)
	if cfg.Cache.TTL > 0 {
		docCache = knowledge.NewCachedSource(chain, sharedCache, cfg.Cache.TTL, logger)
		source = docCache
	}

	store := knowledge.NewStore(source, logger, knowledge.StoreConfig{FetchTimeout: cfg.Knowledge.FetchTimeout})

	completer, err := NewCompleter(cfg, logger)
	if err != nil {
		_ = store.Close()
		_ = sharedCache.Close()
		return nil, err
	}

	messages := resolver.LoadSystemMessages(ctx, side.messages, httpClient, logger)

	cacheCfg := resolver.DefaultCompletionCacheConfig()
	cacheCfg.TTL = cfg.Completion.CacheTTL
	completionCache := resolver.NewCompletionCache(sharedCache, logger, cacheCfg)

	opts := []resolver.Option{resolver.WithMessages(messages)}
	if completer != nil {
		opts = append(opts,
			resolver.WithCompleter(completer),
			resolver.WithCompletionCache(completionCache),
		)
	}

	res := resolver.New(store, logger, resolver.Config{
		SubjectName:       cfg.Knowledge.SubjectName,
		MinDirectScore:    cfg.Resolver.MinDirectScore,
		MinSharedWords:    cfg.Resolver.MinSharedWords,
		GroundingSnippets: cfg.Resolver.GroundingSnippets,
		CompletionTimeout: cfg.Completion.Timeout,
	}, opts...)

	scores := fit.LoadScores(ctx, side.fitScores, httpClient, logger)
	analyzer := fit.NewAnalyzer(scores, store, completer, logger, fit.Config{
		SubjectName:       cfg.Knowledge.SubjectName,
		MinDirectScore:    cfg.Resolver.MinDirectScore,
		MinSharedWords:    cfg.Resolver.MinSharedWords,
		CompletionTimeout: cfg.Completion.Timeout,
	})

	catalog := projects.NewCatalog(side.projects, httpClient, cfg.Projects.Timeout, logger)

	logger.Info().
		Strs("knowledge_sources", cfg.Knowledge.Sources).
		Str("cache", cfg.Cache.Driver).
		Bool("completion", completer != nil).
		Int("fit_roles", scores.Len()).
		Msg("Assistant components ready")

	return &App{
		Config:          cfg,
		Logger:          logger,
		Cache:           sharedCache,
		Chain:           chain,
		Store:           store,
		DocumentCache:   docCache,
		CompletionCache: completionCache,
		Completer:       completer,
		Resolver:        res,
		Fit:             analyzer,
		Projects:        catalog,
	}, nil
}

type sideDocuments struct {
	messages  string
	fitScores string
	projects  string
}

// resolveSideDocuments joins relative system messages, fit scores and
// projects locations to the knowledge base URL, like the knowledge sources.
func resolveSideDocuments(cfg *config.Config) (sideDocuments, error) {
	var docs sideDocuments
	for _, d := range []struct {
		location string
		dst      *string
	}{
		{cfg.Knowledge.SystemMessagesSource, &docs.messages},
		{cfg.Fit.ScoresSource, &docs.fitScores},
		{cfg.Projects.URL, &docs.projects},
	} {
		resolved, err := knowledge.ResolveLocation(d.location, cfg.Knowledge.BaseURL)
		if err != nil {
			return sideDocuments{}, fmt.Errorf("resolve %q: %w", d.location, err)
		}
		*d.dst = resolved
	}
	return docs, nil
}

// FlushCaches drops the shared knowledge document and every cached
// completion answer so replicas refetch on their next miss. The in-process
// store keeps the entries it already loaded.
func (a *App) FlushCaches(ctx context.Context) error {
	var errs []error
	if a.DocumentCache != nil {
		if err := a.DocumentCache.Invalidate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("knowledge document: %w", err))
		}
	}
	if err := a.CompletionCache.Invalidate(ctx); err != nil {
		errs = append(errs, fmt.Errorf("completions: %w", err))
	}
	return errors.Join(errs...)
}

// Close releases the store's sources and the cache.
func (a *App) Close() error {
	return errors.Join(a.Store.Close(), a.Cache.Close())
}
