// Package vector provides the text embedding interface and utilities for
// vector encoding and similarity used by the vector-database service.
package vector

import (
	"context"
	"fmt"

	"github.com/ErykVaughn/vector-database/internal/vector/providers"
)

// Embedder defines the interface for converting text into a fixed-length
// vector. One implementation is constructed at startup and shared by all
// request handlers; the model is deterministic for a fixed version and any
// failure propagates to the caller.
type Embedder interface {
	// Initialize sets up the embedder with any required configuration.
	Initialize() error

	// CreateEmbedding converts text into a vector representation.
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the length of the vectors this embedder produces.
	Dimensions() int
}

// NewEmbedder constructs an Embedder for the named provider. Supported
// providers are "mock", "ollama" and "openai".
func NewEmbedder(provider string, cfg providers.Config) (Embedder, error) {
	switch provider {
	case providers.ProviderMock, "":
		return NewMockEmbedder(cfg.Dimensions), nil
	case providers.ProviderOllama:
		return providers.NewOllamaEmbedder(cfg), nil
	case providers.ProviderOpenAI:
		return providers.NewOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}
