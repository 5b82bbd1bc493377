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

// Config holds the ragctx API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
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

// IndexConfig holds vector index connection settings.
type IndexConfig struct {
	Driver           string   `yaml:"driver"` // redis, pinecone (default: redis)
	Addrs            []string `yaml:"addrs"`  // redis
	Password         string   `yaml:"password"`
	Name             string   `yaml:"name"`    // FT index name (redis) or index host (pinecone)
	APIKey           string   `yaml:"api_key"` // pinecone
	QueryTimeout     int      `yaml:"query_timeout_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RetrievalConfig holds the retrieval pipeline constants.
type RetrievalConfig struct {
	EmbeddingDimension int     `yaml:"embedding_dimension"`
	ScoreThreshold     float64 `yaml:"score_threshold"`
	DefaultTopK        int     `yaml:"default_top_k"`
	MaxTopK            int     `yaml:"max_top_k"`
	NodeContentField   string  `yaml:"node_content_field"`
	TextField          string  `yaml:"text_field"`
	ProvenanceField    string  `yaml:"provenance_field"`
}

// EmbeddingConfig holds the optional query embedding provider settings.
// Leave provider empty to run embeddings-only (callers must supply vectors).
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
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
	if c.Index.Driver == "" {
		c.Index.Driver = "redis"
	}
	if c.Index.QueryTimeout <= 0 {
		c.Index.QueryTimeout = 10
	}
	if c.Index.ReadinessTimeout <= 0 {
		c.Index.ReadinessTimeout = 10
	}
	if c.Retrieval.EmbeddingDimension <= 0 {
		c.Retrieval.EmbeddingDimension = 1536
	}
	if c.Retrieval.ScoreThreshold == 0 {
		c.Retrieval.ScoreThreshold = 0.81
	}
	if c.Retrieval.DefaultTopK <= 0 {
		c.Retrieval.DefaultTopK = 2
	}
	if c.Retrieval.MaxTopK <= 0 {
		c.Retrieval.MaxTopK = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Index.Driver {
	case "redis":
		if len(c.Index.Addrs) == 0 {
			return fmt.Errorf("index.addrs is required for the redis driver")
		}
		if c.Index.Name == "" {
			return fmt.Errorf("index.name is required for the redis driver")
		}
	case "pinecone":
		if c.Index.Name == "" {
			return fmt.Errorf("index.name (host) is required for the pinecone driver")
		}
		if c.Index.APIKey == "" {
			return fmt.Errorf("index.api_key is required for the pinecone driver")
		}
	default:
		return fmt.Errorf("index.driver must be \"redis\" or \"pinecone\", got %q", c.Index.Driver)
	}
	if c.Retrieval.DefaultTopK > c.Retrieval.MaxTopK {
		return fmt.Errorf("retrieval.default_top_k %d exceeds max_top_k %d",
			c.Retrieval.DefaultTopK, c.Retrieval.MaxTopK)
	}
	if c.Embedding.Provider != "" && c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required when embedding.provider is set")
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
