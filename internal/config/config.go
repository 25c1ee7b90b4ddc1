// Package config provides configuration loading for the library and
// its CLI.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig indicates a validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root configuration.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Store      StoreConfig      `koanf:"store"`
	Embeddings EmbeddingsConfig `koanf:"embeddings"`
	Retrieval  RetrievalConfig  `koanf:"retrieval"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// StoreConfig controls the embedded vector store.
type StoreConfig struct {
	// Path is the persistence directory. Empty selects an in-memory
	// store.
	Path string `koanf:"path"`

	// Compress enables gzip compression of persisted data.
	Compress bool `koanf:"compress"`
}

// EmbeddingsConfig controls the embedding endpoint.
type EmbeddingsConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	APIKey  string `koanf:"api_key"`
}

// RetrievalConfig controls chunking and the inline-vs-retrieve router.
type RetrievalConfig struct {
	// ChunkSize is the maximum chunk window size in runes.
	ChunkSize int `koanf:"chunk_size"`

	// ChunkOverlap is the overlap between consecutive windows in runes.
	ChunkOverlap int `koanf:"chunk_overlap"`

	// TopK is the retrieval fan-out per attachment.
	TopK int `koanf:"top_k"`

	// InlineThreshold is the default attachment length (runes) at or
	// below which content is inlined verbatim instead of retrieved.
	InlineThreshold int `koanf:"inline_threshold"`

	// Separator joins the pieces of the assembled context.
	Separator string `koanf:"separator"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: logging.format must be 'json' or 'console', got %q", ErrInvalidConfig, c.Logging.Format)
	}
	if c.Embeddings.BaseURL == "" {
		return fmt.Errorf("%w: embeddings.base_url required", ErrInvalidConfig)
	}
	if c.Embeddings.Model == "" {
		return fmt.Errorf("%w: embeddings.model required", ErrInvalidConfig)
	}
	if c.Retrieval.ChunkSize <= 0 {
		return fmt.Errorf("%w: retrieval.chunk_size must be positive", ErrInvalidConfig)
	}
	if c.Retrieval.ChunkOverlap < 0 || c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
		return fmt.Errorf("%w: retrieval.chunk_overlap must be in [0, chunk_size)", ErrInvalidConfig)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", ErrInvalidConfig)
	}
	if c.Retrieval.InlineThreshold < 0 {
		return fmt.Errorf("%w: retrieval.inline_threshold must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// envTransform maps environment variable names to koanf paths.
//
//	LLMTOOLS_STORE_PATH          -> store.path
//	LLMTOOLS_EMBEDDINGS_BASE_URL -> embeddings.base_url
//	LLMTOOLS_RETRIEVAL_TOP_K     -> retrieval.top_k
func envTransform(key string) string {
	key = strings.TrimPrefix(key, envPrefix)
	key = strings.ToLower(key)

	// First underscore separates the section from the field; the
	// field itself may contain underscores.
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		return key
	}
	return parts[0] + "." + parts[1]
}
