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

// Config holds the shopassist API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	LLM      LLMConfig      `yaml:"llm"`
	Currency CurrencyConfig `yaml:"currency"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
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

// LLMConfig holds the OpenAI-compatible model settings.
type LLMConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	ChatModel      string `yaml:"chat_model"`
	EmbeddingModel string `yaml:"embedding_model"`
}

// CurrencyConfig holds exchange rate provider settings.
type CurrencyConfig struct {
	AppID   string `yaml:"app_id"`
	BaseURL string `yaml:"base_url"`
	// Base is the fixed currency every rate lookup is resolved against.
	Base       string `yaml:"base"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// CatalogConfig holds product catalog settings.
type CatalogConfig struct {
	Driver           string `yaml:"driver"` // csv, redis (default: csv)
	Path             string `yaml:"path"`
	Delimiter        string `yaml:"delimiter"`
	EmbeddingField   string `yaml:"embedding_field"`
	PriceField       string `yaml:"price_field"`
	TopN             int    `yaml:"top_n"`
	EmbedConcurrency int    `yaml:"embed_concurrency"` // 0 = unbounded
	KeyPrefix        string `yaml:"key_prefix"`
}

// DatabaseConfig holds Redis connection settings for the redis catalog driver.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Standalone       bool     `yaml:"standalone"` // single node, no cluster discovery
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
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
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if c.LLM.ChatModel == "" {
		c.LLM.ChatModel = "gpt-4o"
	}
	if c.LLM.EmbeddingModel == "" {
		c.LLM.EmbeddingModel = "text-embedding-ada-002"
	}
	if c.Currency.BaseURL == "" {
		c.Currency.BaseURL = "https://openexchangerates.org/api"
	}
	if c.Currency.Base == "" {
		c.Currency.Base = "USD"
	}
	if c.Currency.TimeoutSec <= 0 {
		c.Currency.TimeoutSec = 15
	}
	if c.Catalog.Driver == "" {
		c.Catalog.Driver = "csv"
	}
	if c.Catalog.Delimiter == "" {
		c.Catalog.Delimiter = ","
	}
	if c.Catalog.EmbeddingField == "" {
		c.Catalog.EmbeddingField = "embeddingText"
	}
	if c.Catalog.PriceField == "" {
		c.Catalog.PriceField = "price"
	}
	if c.Catalog.TopN <= 0 {
		c.Catalog.TopN = 2
	}
	if c.Catalog.KeyPrefix == "" {
		c.Catalog.KeyPrefix = "shopassist:catalog:"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Catalog.EmbedConcurrency < 0 {
		return fmt.Errorf("catalog.embed_concurrency must be >= 0, got %d", c.Catalog.EmbedConcurrency)
	}
	if len([]rune(c.Catalog.Delimiter)) != 1 {
		return fmt.Errorf("catalog.delimiter must be a single character, got %q", c.Catalog.Delimiter)
	}
	switch c.Catalog.Driver {
	case "csv":
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for driver \"csv\"")
		}
	case "redis":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver \"redis\"")
		}
	default:
		return fmt.Errorf("catalog.driver must be \"csv\" or \"redis\", got %q", c.Catalog.Driver)
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
