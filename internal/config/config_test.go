package config

import (
	"os"
	"testing"
)

func validRedisConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Index: IndexConfig{
			Driver: "redis",
			Addrs:  []string{"localhost:6379"},
			Name:   "passages:idx",
		},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validRedisConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validRedisConfig()
	cfg.Index.Driver = "weaviate"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}

	expected := `index.driver must be "redis" or "pinecone", got "weaviate"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validRedisConfig()
	cfg.Index.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_PineconeRequiresAPIKey(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Index: IndexConfig{
			Driver: "pinecone",
			Name:   "my-index.svc.pinecone.io",
		},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing pinecone api key")
	}
}

func TestValidate_DefaultTopKAboveMax(t *testing.T) {
	cfg := validRedisConfig()
	cfg.Retrieval.DefaultTopK = 200
	cfg.Retrieval.MaxTopK = 100

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for default_top_k above max_top_k")
	}
}

func TestValidate_EmbeddingProviderRequiresModel(t *testing.T) {
	cfg := validRedisConfig()
	cfg.Embedding.Provider = "openai"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for embedding provider without model")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Index.Driver != "redis" {
		t.Errorf("expected driver=redis, got %q", cfg.Index.Driver)
	}
	if cfg.Index.QueryTimeout != 10 {
		t.Errorf("expected QueryTimeout=10, got %d", cfg.Index.QueryTimeout)
	}
	if cfg.Index.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Index.ReadinessTimeout)
	}
	if cfg.Retrieval.EmbeddingDimension != 1536 {
		t.Errorf("expected EmbeddingDimension=1536, got %d", cfg.Retrieval.EmbeddingDimension)
	}
	if cfg.Retrieval.ScoreThreshold != 0.81 {
		t.Errorf("expected ScoreThreshold=0.81, got %v", cfg.Retrieval.ScoreThreshold)
	}
	if cfg.Retrieval.DefaultTopK != 2 {
		t.Errorf("expected DefaultTopK=2, got %d", cfg.Retrieval.DefaultTopK)
	}
	if cfg.Retrieval.MaxTopK != 100 {
		t.Errorf("expected MaxTopK=100, got %d", cfg.Retrieval.MaxTopK)
	}
}

func TestExpandEnvVars(t *testing.T) {
	if err := os.Setenv("RAGCTX_TEST_VAR", "secret"); err != nil {
		t.Fatalf("setenv: %v", err)
	}
	defer func() { _ = os.Unsetenv("RAGCTX_TEST_VAR") }()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "key: ${RAGCTX_TEST_VAR}", "key: secret"},
		{"unset variable", "key: ${RAGCTX_TEST_UNSET}", "key: "},
		{"unset with default", "key: ${RAGCTX_TEST_UNSET:-fallback}", "key: fallback"},
		{"set with default", "key: ${RAGCTX_TEST_VAR:-fallback}", "key: secret"},
		{"no variables", "key: plain", "key: plain"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := string(expandEnvVars([]byte(tc.in)))
			if got != tc.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
