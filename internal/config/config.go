// Package config provides layered configuration (defaults, file, environment, flags) for the services and CLI.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every automatically bound environment variable.
const EnvPrefix = "RECOMMENDER"

// Config is the full application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Keyword   KeywordConfig   `mapstructure:"keyword"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Database  DatabaseConfig  `mapstructure:"database"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// ServerConfig holds settings shared by both HTTP services.
type ServerConfig struct {
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
	MaxBodyBytes    int64         `mapstructure:"max-body-bytes"`
	MaxUploadBytes  int64         `mapstructure:"max-upload-bytes"`
}

// KeywordConfig configures the keyword service.
type KeywordConfig struct {
	Port int `mapstructure:"port"`
	// MaxChars truncates request text before scoring.
	MaxChars int `mapstructure:"max-chars"`
}

// EmbeddingConfig configures the embedding service and its encoder.
type EmbeddingConfig struct {
	Port     int    `mapstructure:"port"`
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	Device   string `mapstructure:"device"`
	APIKey   string `mapstructure:"api-key"`
	// LazyInit defers model construction to the first request.
	LazyInit    bool         `mapstructure:"lazy-init"`
	BatchSize   int          `mapstructure:"batch-size"`
	Concurrency int          `mapstructure:"concurrency"`
	Workers     int          `mapstructure:"workers"`
	Dimension   int          `mapstructure:"hashing-dimension"`
	MaxChars    int          `mapstructure:"max-chars"`
	Python      PythonConfig `mapstructure:"python"`
}

// PythonConfig locates the interpreter for local models.
type PythonConfig struct {
	Bin string `mapstructure:"bin"`
}

// DatabaseConfig configures the optional embedding cache.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RateLimitConfig configures per-client request limits.
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default-limit"`
	DefaultWindow   time.Duration `mapstructure:"default-window"`
	RecommendLimit  int           `mapstructure:"recommend-limit"`
	RecommendWindow time.Duration `mapstructure:"recommend-window"`
	RecommendBurst  int           `mapstructure:"recommend-burst"`
	CleanupInterval time.Duration `mapstructure:"cleanup-interval"`
	Whitelist       []string      `mapstructure:"whitelist"`
	Blacklist       []string      `mapstructure:"blacklist"`
}

// envBindings are the legacy unprefixed environment variable names, bound in
// addition to the RECOMMENDER_* names.
var envBindings = map[string][]string{
	"keyword.max-chars":    {"RECOMMEND_MAX_CHARS"},
	"embedding.model":      {"EMB_MODEL"},
	"embedding.provider":   {"EMB_PROVIDER"},
	"embedding.device":     {"EMB_DEVICE"},
	"embedding.api-key":    {"GEMINI_API_KEY"},
	"database.url":         {"DATABASE_URL"},
	"log.json":             {"LOG_JSON"},
	"log.debug":            {"LOG_DEBUG"},
	"ratelimit.enabled":    {"RATE_LIMIT_ENABLED"},
	"ratelimit.whitelist":  {"RATE_LIMIT_WHITELIST"},
	"ratelimit.blacklist":  {"RATE_LIMIT_BLACKLIST"},
	"embedding.python.bin": {"EMB_PYTHON"},
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)

	v.SetDefault("server.read-timeout", 30*time.Second)
	v.SetDefault("server.write-timeout", 60*time.Second)
	v.SetDefault("server.idle-timeout", 60*time.Second)
	v.SetDefault("server.shutdown-timeout", 30*time.Second)
	v.SetDefault("server.max-body-bytes", int64(1<<20))
	v.SetDefault("server.max-upload-bytes", int64(10<<20))

	v.SetDefault("keyword.port", 5000)
	v.SetDefault("keyword.max-chars", 15000)

	v.SetDefault("embedding.port", 5001)
	v.SetDefault("embedding.provider", "sentence-transformers")
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.device", "")
	v.SetDefault("embedding.api-key", "")
	v.SetDefault("embedding.lazy-init", false)
	v.SetDefault("embedding.batch-size", 32)
	v.SetDefault("embedding.concurrency", 4)
	v.SetDefault("embedding.workers", 1)
	v.SetDefault("embedding.hashing-dimension", 512)
	v.SetDefault("embedding.max-chars", 0)
	v.SetDefault("embedding.python.bin", "python3")

	v.SetDefault("database.url", "")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.default-limit", 1000)
	v.SetDefault("ratelimit.default-window", time.Minute)
	v.SetDefault("ratelimit.recommend-limit", 120)
	v.SetDefault("ratelimit.recommend-window", time.Minute)
	v.SetDefault("ratelimit.recommend-burst", 20)
	v.SetDefault("ratelimit.cleanup-interval", 5*time.Minute)
	v.SetDefault("ratelimit.whitelist", []string{})
	v.SetDefault("ratelimit.blacklist", []string{})
}

// New returns a viper instance with defaults and environment bindings installed.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, envs := range envBindings {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(append([]string{key, envKey(key)}, envs...)...)
	}
	return v
}

// envKey is the RECOMMENDER_* name AutomaticEnv would derive for key.
func envKey(key string) string {
	r := strings.NewReplacer(".", "_", "-", "_")
	return EnvPrefix + "_" + strings.ToUpper(r.Replace(key))
}

// Load reads the optional config file into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Embedding.Provider = strings.ToLower(strings.TrimSpace(cfg.Embedding.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var knownProviders = map[string]bool{
	"sentence-transformers": true,
	"gemini":                true,
	"hashing":               true,
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	var errs []error

	if c.Keyword.MaxChars <= 0 {
		errs = append(errs, fmt.Errorf("config error: 'keyword.max-chars' must be positive"))
	}
	if c.Embedding.MaxChars < 0 {
		errs = append(errs, fmt.Errorf("config error: 'embedding.max-chars' must be non-negative"))
	}
	for name, port := range map[string]int{"keyword.port": c.Keyword.Port, "embedding.port": c.Embedding.Port} {
		if port <= 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("config error: '%s' must be between 1 and 65535", name))
		}
	}
	if !knownProviders[c.Embedding.Provider] {
		errs = append(errs, fmt.Errorf("config error: unknown embedding provider %q", c.Embedding.Provider))
	}
	if c.Embedding.Provider == "gemini" && c.Embedding.APIKey == "" {
		errs = append(errs, fmt.Errorf("config error: 'embedding.api-key' (GEMINI_API_KEY) is required for the gemini provider"))
	}
	if c.Embedding.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("config error: 'embedding.batch-size' must be positive"))
	}
	if c.Embedding.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("config error: 'embedding.concurrency' must be positive"))
	}
	if c.Server.MaxBodyBytes <= 0 || c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("config error: request size limits must be positive"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.DefaultLimit < 0 || c.RateLimit.RecommendLimit < 0) {
		errs = append(errs, fmt.Errorf("config error: rate limits must be non-negative"))
	}

	return errors.Join(errs...)
}
