package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the jobdex API configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Cache       CacheConfig       `yaml:"cache"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Interpreter InterpreterConfig `yaml:"interpreter"`
	Search      SearchConfig      `yaml:"search"`
	Jobs        JobsConfig        `yaml:"jobs"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
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

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig holds posting store settings.
type DatabaseConfig struct {
	Driver             string `yaml:"driver"` // postgres, memory (default: postgres)
	DSN                string `yaml:"dsn"`
	Table              string `yaml:"table"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
	ReadinessTimeout   int    `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds embedding cache settings (Valkey).
type CacheConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	TTLSec   int      `yaml:"ttl_sec"` // 0 = no expiry
}

// Embedding text templates.
const (
	TemplateDetailed = "detailed"
	TemplateBasic    = "basic"
)

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	TimeoutSec int    `yaml:"timeout_sec"`
	Template   string `yaml:"template"` // detailed, basic
}

// InterpreterConfig holds text-understanding service settings.
type InterpreterConfig struct {
	APIKey      string        `yaml:"api_key"` // default: embedding.api_key
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature *float32      `yaml:"temperature"` // default: 0.3, an explicit 0 is kept
	TimeoutSec  int           `yaml:"timeout_sec"`
	Breaker     BreakerConfig `yaml:"breaker"`
}

// DefaultTemperature is the interpreter sampling temperature when none is configured.
const DefaultTemperature float32 = 0.3

// SamplingTemperature returns the configured temperature or DefaultTemperature.
func (c InterpreterConfig) SamplingTemperature() float32 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

// BreakerConfig holds circuit breaker settings for the interpreter.
type BreakerConfig struct {
	Enabled          bool    `yaml:"enabled"`
	MinRequests      uint32  `yaml:"min_requests"`
	FailureRatio     float64 `yaml:"failure_ratio"`
	OpenTimeoutSec   int     `yaml:"open_timeout_sec"`
	HalfOpenMaxCalls uint32  `yaml:"half_open_max_calls"`
}

// SearchConfig holds retrieval settings.
type SearchConfig struct {
	DefaultLimit    int    `yaml:"default_limit"`
	MaxLimit        int    `yaml:"max_limit"`
	FallbackKeyword string `yaml:"fallback_keyword"`
}

// JobsConfig holds posting write-path settings.
type JobsConfig struct {
	MaxBatchSize int `yaml:"max_batch_size"`
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
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.Table == "" {
		c.Database.Table = "jobs"
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 10
	}
	if c.Database.ConnMaxLifetimeSec <= 0 {
		c.Database.ConnMaxLifetimeSec = 1800
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 15
	}
	if c.Embedding.Template == "" {
		c.Embedding.Template = TemplateDetailed
	}
	if c.Interpreter.APIKey == "" {
		c.Interpreter.APIKey = c.Embedding.APIKey
	}
	if c.Interpreter.BaseURL == "" {
		c.Interpreter.BaseURL = c.Embedding.BaseURL
	}
	if c.Interpreter.Model == "" {
		c.Interpreter.Model = "gpt-4o-mini"
	}
	if c.Interpreter.Temperature == nil {
		t := DefaultTemperature
		c.Interpreter.Temperature = &t
	}
	if c.Interpreter.TimeoutSec <= 0 {
		c.Interpreter.TimeoutSec = 15
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 5
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 100
	}
	if c.Search.FallbackKeyword == "" {
		c.Search.FallbackKeyword = "求人"
	}
	if c.Jobs.MaxBatchSize <= 0 {
		c.Jobs.MaxBatchSize = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Database.Driver)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec must be >= 0, got %d", c.Cache.TTLSec)
	}
	if c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required")
	}
	switch c.Embedding.Template {
	case TemplateDetailed, TemplateBasic:
	default:
		return fmt.Errorf(
			"embedding.template must be %q or %q, got %q", TemplateDetailed, TemplateBasic, c.Embedding.Template,
		)
	}
	if t := c.Interpreter.SamplingTemperature(); t < 0 || t > 2 {
		return fmt.Errorf("interpreter.temperature must be between 0 and 2, got %g", t)
	}
	if r := c.Interpreter.Breaker.FailureRatio; r < 0 || r > 1 {
		return fmt.Errorf("interpreter.breaker.failure_ratio must be between 0 and 1, got %g", r)
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf(
			"search.default_limit (%d) must not exceed search.max_limit (%d)", c.Search.DefaultLimit, c.Search.MaxLimit,
		)
	}
	return nil
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
