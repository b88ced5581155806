package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/profile-assistant/internal/cache"
	"github.com/spherical-ai/profile-assistant/internal/config"
	"github.com/spherical-ai/profile-assistant/internal/observability"
	"github.com/spherical-ai/profile-assistant/internal/projects"
	"github.com/spherical-ai/profile-assistant/internal/resolver"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Knowledge.Sources = []string{"testdata/missing.json", "../knowledge/testdata/kb.json"}
	cfg.Knowledge.SystemMessagesSource = ""
	cfg.Fit.ScoresSource = ""
	return cfg
}

func TestBuild_WithoutCompletion(t *testing.T) {
	ctx := context.Background()

	a, err := Build(ctx, testConfig(), observability.NopLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Completer)
	assert.False(t, a.Resolver.CompletionEnabled())
	assert.IsType(t, &cache.MemoryClient{}, a.Cache)
	require.Len(t, a.Chain.Sources(), 2)

	res := a.Resolver.Resolve(ctx, "design systems")
	assert.Equal(t, resolver.StageKeyword, res.Stage)
	assert.Equal(t, "Jon led the design system for ZARA's internal developer platform.", res.Answer)
	assert.True(t, a.Store.IsLoaded())

	assert.Equal(t, projects.DefaultProjects(), a.Projects.List(ctx))
	assert.Equal(t, 40, a.Fit.Analyze(ctx, "Fintech").Score)
}

func TestBuild_WithCompletion(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": "Jon has not worked with operators."}}},
		})
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Completion.Enabled = true
	cfg.Completion.APIKey = "sk-test"
	cfg.Completion.Endpoint = srv.URL
	cfg.Completion.Timeout = 2 * time.Second

	ctx := context.Background()
	a, err := Build(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Completer)

	question := "who maintains kubernetes operators for jon"
	res := a.Resolver.Resolve(ctx, question)
	assert.Equal(t, resolver.StageCompletion, res.Stage)
	assert.Equal(t, "Jon has not worked with operators.", res.Answer)

	again := a.Resolver.Resolve(ctx, question)
	assert.Equal(t, res.Answer, again.Answer)
	assert.EqualValues(t, 1, calls.Load(), "second answer comes from the completion cache")
}

func TestBuild_BaseURLResolvesSideDocuments(t *testing.T) {
	kb, err := os.ReadFile("../knowledge/testdata/kb.json")
	require.NoError(t, err)

	docs := map[string]string{
		"/site/data/kb.json":       string(kb),
		"/site/data/messages.json": `{"error_messages": {"out_of_scope": "Remote out of scope."}}`,
		"/site/data/fit.json":      `{"fit_scores": {"design": {"pd": {"title": "Product Designer", "score": 91}}}}`,
		"/site/data/projects.json": `[{"id": "r1", "order": "1", "title": "Remote project"}]`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := docs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Knowledge.BaseURL = srv.URL + "/site/"
	cfg.Knowledge.Sources = []string{"data/kb.json"}
	cfg.Knowledge.SystemMessagesSource = "data/messages.json"
	cfg.Fit.ScoresSource = "data/fit.json"
	cfg.Projects.URL = "data/projects.json"

	ctx := context.Background()
	a, err := Build(ctx, cfg, observability.NopLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "Remote out of scope.", a.Resolver.Messages().OutOfScope)
	res := a.Resolver.Resolve(ctx, "weather today")
	assert.Equal(t, resolver.StageOutOfScope, res.Stage)
	assert.Equal(t, "Remote out of scope.", res.Answer)

	assert.Equal(t, 91, a.Fit.Analyze(ctx, "Product Designer").Score)

	list := a.Projects.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "Remote project", list[0].Title)
	assert.Equal(t, srv.URL+"/site/data/projects.json", a.Projects.Location())
}

func TestApp_FlushCaches(t *testing.T) {
	ctx := context.Background()
	a, err := Build(ctx, testConfig(), observability.NopLogger())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.DocumentCache)
	require.NotEmpty(t, a.Store.Load(ctx))
	a.CompletionCache.Set(ctx, "prompt", "cached answer")

	mem, ok := a.Cache.(*cache.MemoryClient)
	require.True(t, ok)
	assert.Equal(t, 2, mem.Len())

	require.NoError(t, a.FlushCaches(ctx))
	assert.Equal(t, 0, mem.Len())
	_, hit := a.CompletionCache.Get(ctx, "prompt")
	assert.False(t, hit)
	assert.True(t, a.Store.IsLoaded(), "loaded entries stay in the store")
}

func TestBuild_InvalidSource(t *testing.T) {
	cfg := testConfig()
	cfg.Knowledge.BaseURL = "http://[::1"
	cfg.Knowledge.Sources = []string{"kb.json"}

	_, err := Build(context.Background(), cfg, observability.NopLogger())
	assert.Error(t, err)
}

func TestNewCache_RedisFallsBackToMemory(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Driver = "redis"
	cfg.Cache.Redis.Addr = "127.0.0.1:1"

	c := NewCache(context.Background(), cfg, observability.NopLogger())
	defer c.Close()
	assert.IsType(t, &cache.MemoryClient{}, c)
}
