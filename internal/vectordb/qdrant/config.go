package qdrant

import (
	"fmt"
	"strings"
	"time"
)

// Distance is a Qdrant distance metric.
type Distance string

const (
	DistanceCosine Distance = "Cosine"
	DistanceEuclid Distance = "Euclid"
	DistanceDot    Distance = "Dot"
)

// ParseDistance maps a configured metric name to a Distance.
func ParseDistance(s string) (Distance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cosine":
		return DistanceCosine, nil
	case "euclid", "euclidean":
		return DistanceEuclid, nil
	case "dot":
		return DistanceDot, nil
	default:
		return "", fmt.Errorf("invalid distance metric %q", s)
	}
}

// Fusion selects the store-side fusion of dense and sparse prefetch results.
// The fused score scale is the store's concern; callers only rely on results
// being ranked and thresholded.
type Fusion string

const (
	FusionRRF  Fusion = "rrf"
	FusionDBSF Fusion = "dbsf"
)

// ParseFusion maps a configured fusion name to a Fusion.
func ParseFusion(s string) (Fusion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rrf":
		return FusionRRF, nil
	case "dbsf":
		return FusionDBSF, nil
	default:
		return "", fmt.Errorf("invalid fusion method %q", s)
	}
}

// Named vector fields of a hybrid collection.
const (
	DenseVectorName  = "dense"
	SparseVectorName = "sparse"
)

// Config holds Qdrant client configuration.
type Config struct {
	URL        string        `yaml:"url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	Fusion     Fusion        `yaml:"fusion"`
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		URL:        "http://localhost:6333",
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
		Fusion:     FusionRRF,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("retry_delay must be positive")
	}
	if _, err := ParseFusion(string(c.Fusion)); err != nil {
		return err
	}
	return nil
}

// BaseURL returns the store URL without a trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.URL, "/")
}

// CollectionConfig describes a hybrid collection: a named dense vector field
// plus a named sparse vector field on every point.
type CollectionConfig struct {
	Name       string
	VectorSize int
	Distance   Distance
	// SparseIDF applies inverse document frequency to sparse weights on the
	// store side, so clients only ship term frequencies.
	SparseIDF     bool
	OnDiskPayload bool
}

// DefaultCollectionConfig returns a cosine hybrid collection configuration.
func DefaultCollectionConfig(name string, vectorSize int) *CollectionConfig {
	return &CollectionConfig{
		Name:       name,
		VectorSize: vectorSize,
		Distance:   DistanceCosine,
		SparseIDF:  true,
	}
}

// WithDistance sets the distance metric.
func (c *CollectionConfig) WithDistance(d Distance) *CollectionConfig {
	c.Distance = d
	return c
}

// Validate validates the collection configuration.
func (c *CollectionConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("collection name is required")
	}
	if c.VectorSize < 1 {
		return fmt.Errorf("vector_size must be at least 1")
	}
	switch c.Distance {
	case DistanceCosine, DistanceEuclid, DistanceDot:
	default:
		return fmt.Errorf("invalid distance metric %q", c.Distance)
	}
	return nil
}

// SearchOptions control a hybrid query.
type SearchOptions struct {
	Limit          int
	ScoreThreshold float32
	Filter         map[string]interface{}
	WithPayload    bool
}

// DefaultSearchOptions returns the default search options.
func DefaultSearchOptions() *SearchOptions {
	return &SearchOptions{
		Limit:       5,
		WithPayload: true,
	}
}

// WithLimit sets the maximum result count.
func (o *SearchOptions) WithLimit(limit int) *SearchOptions {
	o.Limit = limit
	return o
}

// WithScoreThreshold sets the minimum fused score.
func (o *SearchOptions) WithScoreThreshold(threshold float32) *SearchOptions {
	o.ScoreThreshold = threshold
	return o
}

// WithFilter sets a payload filter in Qdrant filter syntax.
func (o *SearchOptions) WithFilter(filter map[string]interface{}) *SearchOptions {
	o.Filter = filter
	return o
}
