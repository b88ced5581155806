// Package config provides unified configuration loading for the assistant.
// Supports YAML files, .env files, and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the assistant.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Knowledge     KnowledgeConfig     `yaml:"knowledge"`
	Completion    CompletionConfig    `yaml:"completion"`
	Cache         CacheConfig         `yaml:"cache"`
	Resolver      ResolverConfig      `yaml:"resolver"`
	Fit           FitConfig           `yaml:"fit"`
	Projects      ProjectsConfig      `yaml:"projects"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string          `yaml:"host"`
	Port             int             `yaml:"port"`
	ReadTimeout      time.Duration   `yaml:"read_timeout"`
	WriteTimeout     time.Duration   `yaml:"write_timeout"`
	IdleTimeout      time.Duration   `yaml:"idle_timeout"`
	RequestTimeout   time.Duration   `yaml:"request_timeout"`
	GracefulShutdown time.Duration   `yaml:"graceful_shutdown"`
	AllowedOrigins   []string        `yaml:"allowed_origins"`
	RateLimit        RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	QPS     float64 `yaml:"qps"`
	Burst   int     `yaml:"burst"`
}

// KnowledgeConfig describes where the knowledge document lives.
type KnowledgeConfig struct {
	// Sources are tried in order; the first one yielding entries wins.
	// Accepted forms: http(s) URLs, relative paths (joined to BaseURL when
	// set), local file paths, "sqlite:<path>" and "postgres://..." DSNs.
	Sources              []string      `yaml:"sources"`
	BaseURL              string        `yaml:"base_url"`
	FetchTimeout         time.Duration `yaml:"fetch_timeout"`
	SystemMessagesSource string        `yaml:"system_messages_source"`
	SubjectName          string        `yaml:"subject_name"`
}

// CompletionConfig holds the optional completion service settings.
type CompletionConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Endpoint    string        `yaml:"endpoint"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Prefix   string `yaml:"prefix"`
}

// ResolverConfig holds the matcher thresholds.
type ResolverConfig struct {
	MinDirectScore    int `yaml:"min_direct_score"`
	MinSharedWords    int `yaml:"min_shared_words"`
	GroundingSnippets int `yaml:"grounding_snippets"`
}

// FitConfig holds company fit scoring settings.
type FitConfig struct {
	ScoresSource string `yaml:"scores_source"`
}

// ProjectsConfig holds the projects catalog settings.
type ProjectsConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	ServiceName    string `yaml:"service_name"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}

		for i, src := range cfg.Knowledge.Sources {
			cfg.Knowledge.Sources[i] = resolveLocalSource(path, src, cfg.Knowledge.BaseURL)
		}
		if cfg.Knowledge.SystemMessagesSource != "" {
			cfg.Knowledge.SystemMessagesSource = resolveLocalSource(path, cfg.Knowledge.SystemMessagesSource, cfg.Knowledge.BaseURL)
		}
		if cfg.Fit.ScoresSource != "" {
			cfg.Fit.ScoresSource = resolveLocalSource(path, cfg.Fit.ScoresSource, cfg.Knowledge.BaseURL)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8086,
			ReadTimeout:      15 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			RequestTimeout:   20 * time.Second,
			GracefulShutdown: 10 * time.Second,
			AllowedOrigins:   []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled: true,
				QPS:     5,
				Burst:   10,
			},
		},
		Knowledge: KnowledgeConfig{
			Sources:              []string{"./data/jon_know_how.json"},
			FetchTimeout:         10 * time.Second,
			SystemMessagesSource: "./data/system-message_kb.json",
			SubjectName:          "Jon",
		},
		Completion: CompletionConfig{
			Enabled:     false,
			Endpoint:    "https://api.openai.com/v1/chat/completions",
			Model:       "gpt-3.5-turbo",
			MaxTokens:   200,
			Temperature: 0.7,
			Timeout:     10 * time.Second,
			MaxRetries:  2,
			CacheTTL:    time.Hour,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        10 * time.Minute,
			MaxEntries: 1000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
				Prefix:   "pa:",
			},
		},
		Resolver: ResolverConfig{
			MinDirectScore:    5,
			MinSharedWords:    3,
			GroundingSnippets: 3,
		},
		Fit: FitConfig{
			ScoresSource: "./data/fit_scores.json",
		},
		Projects: ProjectsConfig{
			Timeout: 5 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			LogFormat:      "json",
			ServiceName:    "profile-assistant",
			MetricsEnabled: true,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if len(c.Knowledge.Sources) == 0 {
		return fmt.Errorf("at least one knowledge source is required")
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Completion.Enabled && c.Completion.APIKey == "" {
		return fmt.Errorf("completion is enabled but no api key is set")
	}

	if c.Completion.Timeout <= 0 {
		return fmt.Errorf("completion timeout must be positive")
	}

	if c.Resolver.MinDirectScore < 1 {
		return fmt.Errorf("min_direct_score must be at least 1")
	}

	if c.Resolver.MinSharedWords < 1 {
		return fmt.Errorf("min_shared_words must be at least 1")
	}

	if c.Resolver.GroundingSnippets < 1 || c.Resolver.GroundingSnippets > 10 {
		return fmt.Errorf("grounding_snippets must be between 1 and 10")
	}

	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.QPS <= 0 || c.Server.RateLimit.Burst < 1) {
		return fmt.Errorf("rate limit requires positive qps and burst")
	}

	return nil
}

// CompletionConfigured reports whether the completion fallback can be used.
func (c *Config) CompletionConfigured() bool {
	return c.Completion.Enabled && c.Completion.APIKey != ""
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	if v := os.Getenv("KNOWLEDGE_SOURCES"); v != "" {
		cfg.Knowledge.Sources = splitList(v)
	}

	if v := os.Getenv("KNOWLEDGE_BASE_URL"); v != "" {
		cfg.Knowledge.BaseURL = v
	}

	if v := os.Getenv("SYSTEM_MESSAGES_SOURCE"); v != "" {
		cfg.Knowledge.SystemMessagesSource = v
	}

	if v := os.Getenv("FIT_SCORES_SOURCE"); v != "" {
		cfg.Fit.ScoresSource = v
	}

	if v := os.Getenv("PROJECTS_URL"); v != "" {
		cfg.Projects.URL = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	apiKey := os.Getenv("COMPLETION_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey != "" {
		cfg.Completion.APIKey = apiKey
		cfg.Completion.Enabled = true
	}

	if v := os.Getenv("COMPLETION_ENDPOINT"); v != "" {
		cfg.Completion.Endpoint = v
	}

	if v := os.Getenv("COMPLETION_MODEL"); v != "" {
		cfg.Completion.Model = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveLocalSource makes relative file sources relative to the config file.
// URLs, DSNs and sources that will be joined to a base URL are left as is.
func resolveLocalSource(configPath, source, baseURL string) string {
	if baseURL != "" || strings.Contains(source, "://") || strings.HasPrefix(source, "sqlite:") {
		return source
	}
	return ResolveRelativePath(configPath, source)
}

// ResolveRelativePath resolves a path relative to the config file location.
func ResolveRelativePath(configPath, targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	configDir := filepath.Dir(configPath)
	return filepath.Join(configDir, targetPath)
}
