package embedder

import (
	"context"
	"time"
)

// Client maps text to fixed-length vectors.
type Client interface {
	// Embed generates embeddings for the given texts, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
	// Dimensions returns the length of the produced vectors.
	Dimensions() int
	// Close releases provider resources.
	Close() error
}

// Config holds settings shared by all providers.
type Config struct {
	Model      string        `json:"model"`
	BaseURL    string        `json:"base_url,omitempty"`
	Dimensions int           `json:"dimensions,omitempty"`
	BatchSize  int           `json:"batch_size,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty"`
}

const (
	// DefaultModel is used when Config.Model is empty.
	DefaultModel = "text-embedding-3-small"
	// DefaultBatchSize bounds the texts sent in one provider request.
	DefaultBatchSize = 100
)

var knownDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"all-MiniLM-L6-v2":       384,
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Dimensions <= 0 {
		c.Dimensions = knownDimensions[c.Model]
	}
	if c.Dimensions <= 0 {
		c.Dimensions = 1536
	}
}

// embedSingle is the EmbedSingle implementation shared by the wrappers.
func embedSingle(ctx context.Context, c Client, text string) ([]float32, error) {
	embeddings, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, ErrNoEmbeddings
	}
	return embeddings[0], nil
}
