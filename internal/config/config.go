// Package config loads and validates the Oncora service configuration
// from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"dev.oncora.assist/internal/embedding"
	"dev.oncora.assist/internal/llm"
	"dev.oncora.assist/internal/rag"
	"dev.oncora.assist/internal/vectordb/qdrant"
)

// Config is the root configuration for the Oncora service.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Qdrant       QdrantConfig       `yaml:"qdrant"`
	Embedding    embedding.Config   `yaml:"embedding"`
	Search       SearchConfig       `yaml:"search"`
	LLM          llm.Config         `yaml:"llm"`
	Conversation ConversationConfig `yaml:"conversation"`
	Ingest       IngestConfig       `yaml:"ingest"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns the host:port string the HTTP server binds to.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// QdrantConfig extends the vector store client settings with the
// collection the service reads and writes.
type QdrantConfig struct {
	qdrant.Config  `yaml:",inline"`
	CollectionName string `yaml:"collection_name"`
	VectorSize     int    `yaml:"vector_size"`
	DistanceMetric string `yaml:"distance_metric"`
}

// ClientConfig returns the connection settings for the Qdrant client.
func (q QdrantConfig) ClientConfig() *qdrant.Config {
	cfg := q.Config
	return &cfg
}

// CollectionConfig returns the schema used to create the collection.
func (q QdrantConfig) CollectionConfig() *qdrant.CollectionConfig {
	cfg := qdrant.DefaultCollectionConfig(q.CollectionName, q.VectorSize)
	if q.DistanceMetric != "" {
		if distance, err := qdrant.ParseDistance(q.DistanceMetric); err == nil {
			cfg = cfg.WithDistance(distance)
		}
	}
	return cfg
}

// SearchConfig holds the retrieval defaults applied when a request
// does not override them.
type SearchConfig struct {
	DefaultLimit   int     `yaml:"default_limit"`
	ScoreThreshold float32 `yaml:"score_threshold"`
}

// ConversationConfig bounds the in-memory conversation history.
type ConversationConfig struct {
	MaxTurns int `yaml:"max_turns"`
}

// IngestConfig controls corpus ingestion.
type IngestConfig struct {
	Dir       string `yaml:"dir"`
	BatchSize int    `yaml:"batch_size"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ConfigValidationError reports an invalid configuration field.
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e *ConfigValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// DefaultConfig returns the configuration used when no file or
// environment overrides are present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Qdrant: QdrantConfig{
			Config:         *qdrant.DefaultConfig(),
			CollectionName: "medical_text",
			VectorSize:     384,
			DistanceMetric: "Cosine",
		},
		Embedding: *embedding.DefaultConfig(),
		Search: SearchConfig{
			DefaultLimit:   5,
			ScoreThreshold: 0.65,
		},
		LLM: *llm.DefaultConfig(),
		Conversation: ConversationConfig{
			MaxTurns: 10,
		},
		Ingest: IngestConfig{
			Dir:       "corpus",
			BatchSize: 32,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadConfig reads a YAML configuration file, expands ${VAR} references
// from the environment, overlays the result onto the defaults, and
// applies environment variable overrides. Pass an empty path to use
// defaults and environment overrides only.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(config)

	// The collection schema is authoritative for vector width.
	config.Embedding.VectorSize = config.Qdrant.VectorSize

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func applyEnvOverrides(config *Config) {
	config.Server.Host = getEnv("ONCORA_HOST", config.Server.Host)
	config.Server.Port = getIntEnv("ONCORA_PORT", config.Server.Port)
	config.Qdrant.URL = getEnv("QDRANT_URL", config.Qdrant.URL)
	config.Qdrant.APIKey = getEnv("QDRANT_API_KEY", config.Qdrant.APIKey)
	config.Ingest.Dir = getEnv("ONCORA_CORPUS_DIR", config.Ingest.Dir)

	if url := os.Getenv("OLLAMA_URL"); url != "" {
		config.Embedding.OllamaURL = url
		config.LLM.URL = url
	}
}

// Validate checks the configuration for values the service cannot
// start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ConfigValidationError{
			Field:   "server.port",
			Message: "must be between 1 and 65535",
		}
	}
	if c.Qdrant.CollectionName == "" {
		return &ConfigValidationError{
			Field:   "qdrant.collection_name",
			Message: "collection name is required",
		}
	}
	if c.Qdrant.VectorSize < 1 {
		return &ConfigValidationError{
			Field:   "qdrant.vector_size",
			Message: "must be at least 1",
		}
	}
	if _, err := qdrant.ParseDistance(c.Qdrant.DistanceMetric); err != nil {
		return &ConfigValidationError{
			Field:   "qdrant.distance_metric",
			Message: err.Error(),
		}
	}
	if err := c.Qdrant.Config.Validate(); err != nil {
		return &ConfigValidationError{Field: "qdrant", Message: err.Error()}
	}
	if err := c.Embedding.Validate(); err != nil {
		return &ConfigValidationError{Field: "embedding", Message: err.Error()}
	}
	if err := c.LLM.Validate(); err != nil {
		return &ConfigValidationError{Field: "llm", Message: err.Error()}
	}
	if c.Search.DefaultLimit < 1 {
		return &ConfigValidationError{
			Field:   "search.default_limit",
			Message: "must be at least 1",
		}
	}
	if c.Search.ScoreThreshold < 0 || c.Search.ScoreThreshold > 1 {
		return &ConfigValidationError{
			Field:   "search.score_threshold",
			Message: "must be between 0 and 1",
		}
	}
	if c.Conversation.MaxTurns < 1 {
		return &ConfigValidationError{
			Field:   "conversation.max_turns",
			Message: "must be at least 1",
		}
	}
	if c.Ingest.BatchSize < 1 {
		return &ConfigValidationError{
			Field:   "ingest.batch_size",
			Message: "must be at least 1",
		}
	}
	return nil
}

// RetrieverConfig maps the search settings onto the retriever.
func (c *Config) RetrieverConfig() *rag.RetrieverConfig {
	return &rag.RetrieverConfig{
		Collection:     c.Qdrant.CollectionName,
		DefaultLimit:   c.Search.DefaultLimit,
		ScoreThreshold: c.Search.ScoreThreshold,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
