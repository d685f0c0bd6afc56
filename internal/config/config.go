package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/vecfuse/internal/domain"
)

// Config holds the vecfuse service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the query embedding provider settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"`
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	TimeoutSec       int    `yaml:"timeout_sec"`
}

// SearchConfig holds fusion defaults and retriever indexes.
// Pointer fields distinguish an explicit 0 from "not set".
type SearchConfig struct {
	Strategy          string   `yaml:"strategy"` // weighted (default), rrf, hybrid
	KeywordWeight     *float64 `yaml:"keyword_weight"`
	VectorWeight      *float64 `yaml:"vector_weight"`
	RRFConstant       float64  `yaml:"rrf_constant"`
	MinScoreThreshold *float64 `yaml:"min_score_threshold"`
	MaxResults        int      `yaml:"max_results"`
	LexicalIndex      string   `yaml:"lexical_index"`
	SemanticIndex     string   `yaml:"semantic_index"`
	DocumentPrefix    string   `yaml:"document_prefix"` // trimmed from Redis keys to form document IDs
	TopK              int      `yaml:"top_k"`           // per retriever
	// CreateIndex creates missing FT indexes at startup with embedding.dimensions.
	CreateIndex bool `yaml:"create_index"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Driver          string  `yaml:"driver"` // memory (default), redis
	TTLSec          int     `yaml:"ttl_sec"`
	Capacity        int     `yaml:"capacity"` // memory driver only
	EvictRatio      float64 `yaml:"evict_ratio"`
	KeyPrefix       string  `yaml:"key_prefix"`
	EmbeddingTTLSec int     `yaml:"embedding_ttl_sec"` // 0 disables the embedding cache

	// EmbeddingCapacity bounds the separate in-memory embedding cache; defaults to Capacity.
	EmbeddingCapacity int `yaml:"embedding_capacity"`
}

// MonitorConfig holds performance monitor settings.
type MonitorConfig struct {
	BufferSize       int `yaml:"buffer_size"`
	DefaultWindowSec int `yaml:"default_window_sec"`
	TrendWindow      int `yaml:"trend_window"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	vec := domain.DefaultVectorConfig()
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = vec.Provider
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = vec.Model
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 10
	}
	if c.Search.Strategy == "" {
		c.Search.Strategy = "weighted"
	}
	if c.Search.KeywordWeight == nil {
		c.Search.KeywordWeight = ptr(0.4)
	}
	if c.Search.VectorWeight == nil {
		c.Search.VectorWeight = ptr(0.6)
	}
	if c.Search.RRFConstant <= 0 {
		c.Search.RRFConstant = 60
	}
	if c.Search.MinScoreThreshold == nil {
		c.Search.MinScoreThreshold = ptr(0.1)
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 50
	}
	if c.Search.LexicalIndex == "" {
		c.Search.LexicalIndex = "idx:documents"
	}
	if c.Search.SemanticIndex == "" {
		c.Search.SemanticIndex = c.Search.LexicalIndex
	}
	if c.Search.DocumentPrefix == "" {
		c.Search.DocumentPrefix = "doc:"
	}
	if c.Search.TopK <= 0 {
		c.Search.TopK = 100
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.Capacity <= 0 {
		c.Cache.Capacity = 1000
	}
	if c.Cache.EmbeddingCapacity <= 0 {
		c.Cache.EmbeddingCapacity = c.Cache.Capacity
	}
	if c.Cache.EvictRatio <= 0 {
		c.Cache.EvictRatio = 0.2
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "vecfuse:"
	}
	if c.Monitor.BufferSize <= 0 {
		c.Monitor.BufferSize = 1000
	}
	if c.Monitor.DefaultWindowSec <= 0 {
		c.Monitor.DefaultWindowSec = 86400
	}
	if c.Monitor.TrendWindow <= 0 {
		c.Monitor.TrendWindow = 50
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	// Both retrievers run on Redis FT.SEARCH, so Redis is required whatever the cache driver.
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Search.Strategy {
	case "weighted", "rrf", "hybrid":
	default:
		return fmt.Errorf("search.strategy must be weighted, rrf or hybrid, got %q", c.Search.Strategy)
	}
	if err := validateWeights(c.Search.KeywordWeight, c.Search.VectorWeight); err != nil {
		return err
	}
	if t := c.Search.MinScoreThreshold; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("search.min_score_threshold must be between 0 and 1, got %v", *t)
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.driver must be memory or redis, got %q", c.Cache.Driver)
	}
	if c.Cache.EvictRatio > 1 {
		return fmt.Errorf("cache.evict_ratio must be at most 1, got %v", c.Cache.EvictRatio)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative")
	}
	if c.Search.CreateIndex && c.Embedding.Dimensions == 0 {
		return fmt.Errorf("search.create_index requires embedding.dimensions")
	}
	return nil
}

func validateWeights(kw, vw *float64) error {
	k, v := deref(kw), deref(vw)
	if k < 0 || k > 1 || v < 0 || v > 1 {
		return fmt.Errorf("search weights must be between 0 and 1, got keyword=%v vector=%v", k, v)
	}
	if sum := k + v; sum <= 0 || sum > 1+1e-9 {
		return fmt.Errorf("search.keyword_weight + search.vector_weight must be in (0, 1], got %v", sum)
	}
	return nil
}

// TTL returns the result cache default TTL.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }

// EmbeddingTTL returns the embedding cache TTL; zero disables it.
func (c CacheConfig) EmbeddingTTL() time.Duration {
	return time.Duration(c.EmbeddingTTLSec) * time.Second
}

// DefaultWindow returns the default statistics window.
func (c MonitorConfig) DefaultWindow() time.Duration {
	return time.Duration(c.DefaultWindowSec) * time.Second
}

func ptr(v float64) *float64 { return &v }

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
