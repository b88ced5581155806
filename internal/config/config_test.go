package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "SERVER_HOST", "CORS_ALLOWED_ORIGINS", "KNOWLEDGE_SOURCES",
		"KNOWLEDGE_BASE_URL", "SYSTEM_MESSAGES_SOURCE", "FIT_SCORES_SOURCE", "PROJECTS_URL",
		"REDIS_URL", "COMPLETION_API_KEY", "OPENAI_API_KEY", "COMPLETION_ENDPOINT",
		"COMPLETION_MODEL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.Resolver.MinDirectScore)
	assert.Equal(t, 3, cfg.Resolver.MinSharedWords)
	assert.Equal(t, 3, cfg.Resolver.GroundingSnippets)
	assert.Equal(t, 10*time.Second, cfg.Completion.Timeout)
	assert.False(t, cfg.CompletionConfigured())
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "assistant.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
knowledge:
  sources:
    - data/kb.json
    - https://example.com/kb.json
    - sqlite:/var/lib/kb.db
cache:
  driver: memory
resolver:
  min_direct_score: 6
fit:
  scores_source: data/fit_scores.json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Resolver.MinDirectScore)
	assert.Equal(t, 3, cfg.Resolver.MinSharedWords, "unset fields keep defaults")
	require.Len(t, cfg.Knowledge.Sources, 3)
	assert.Equal(t, filepath.Join(dir, "data/kb.json"), cfg.Knowledge.Sources[0])
	assert.Equal(t, "https://example.com/kb.json", cfg.Knowledge.Sources[1])
	assert.Equal(t, "sqlite:/var/lib/kb.db", cfg.Knowledge.Sources[2])
	assert.Equal(t, filepath.Join(dir, "data/fit_scores.json"), cfg.Fit.ScoresSource)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("KNOWLEDGE_SOURCES", "a.json, b.json ,")
	t.Setenv("REDIS_URL", "redis://cache:6379")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("COMPLETION_MODEL", "gpt-4o-mini")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, []string{"a.json", "b.json"}, cfg.Knowledge.Sources)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "cache:6379", cfg.Cache.Redis.Addr)
	assert.True(t, cfg.CompletionConfigured())
	assert.Equal(t, "gpt-4o-mini", cfg.Completion.Model)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"no sources", func(c *Config) { c.Knowledge.Sources = nil }},
		{"bad cache driver", func(c *Config) { c.Cache.Driver = "memcached" }},
		{"completion without key", func(c *Config) { c.Completion.Enabled = true }},
		{"zero completion timeout", func(c *Config) { c.Completion.Timeout = 0 }},
		{"zero direct score", func(c *Config) { c.Resolver.MinDirectScore = 0 }},
		{"too many snippets", func(c *Config) { c.Resolver.GroundingSnippets = 11 }},
		{"rate limit without qps", func(c *Config) { c.Server.RateLimit.QPS = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
