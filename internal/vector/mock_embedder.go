package vector

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"math"

	"github.com/ErykVaughn/vector-database/internal/schema"
)

// MockEmbedder is a simple implementation of the Embedder interface.
// It creates deterministic but simplistic embeddings: the same text always
// produces the same unit-length vector. Used in tests and dev runs where
// no embedding model is available.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder creates a new MockEmbedder with the specified dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = schema.DefaultEmbeddingDim
	}
	return &MockEmbedder{
		dimensions: dimensions,
	}
}

// Initialize sets up the embedder with any required configuration.
func (e *MockEmbedder) Initialize() error {
	return nil // no model to load
}

// Dimensions returns the length of the vectors this embedder produces.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// CreateEmbedding generates a mock embedding for the given text.
// It uses the MD5 hash of the text to seed every dimension, so identical
// inputs map to identical vectors.
func (e *MockEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	embedding := make([]float32, e.dimensions)

	hash := md5.Sum([]byte(text))

	for i := 0; i < e.dimensions; i++ {
		// Wrap around the hash if the dimension count exceeds it.
		hashIdx := (i * 4) % len(hash)
		seed := binary.LittleEndian.Uint32(append(hash[hashIdx:], hash[:4]...))

		// Value between -1 and 1 derived from the seed.
		embedding[i] = float32(seed%1000)/500.0 - 1.0
	}

	normalizeEmbedding(embedding)

	return embedding, nil
}

// normalizeEmbedding scales the embedding to unit length.
func normalizeEmbedding(embedding []float32) {
	var sumSquares float32
	for _, val := range embedding {
		sumSquares += val * val
	}

	magnitude := float32(math.Sqrt(float64(sumSquares)))
	if magnitude == 0 {
		return
	}

	for i := range embedding {
		embedding[i] /= magnitude
	}
}
