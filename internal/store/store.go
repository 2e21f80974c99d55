// Package store provides the vector storage interface and its backends.
// The milvus backend delegates indexing and similarity search to an
// external Milvus service; the sqlite backend keeps vectors in a local
// database and ranks them in process, for development and tests.
package store

import (
	"context"

	"github.com/ErykVaughn/vector-database/internal/schema"
)

// VectorStore defines the interface for persisting embedding vectors with
// their metadata and searching them by similarity. Identifiers are
// assigned by the store on insert.
type VectorStore interface {
	// Initialize opens the backend and ensures the collection, its schema
	// and its index exist and are ready for queries.
	Initialize(ctx context.Context) error

	// Close closes the store and releases any resources.
	Close() error

	// Insert writes vectors and their metadata as one batch and returns
	// the assigned identifiers, in input order.
	Insert(ctx context.Context, vectors [][]float32, metadata []schema.RecordMetadata) ([]int64, error)

	// Delete removes the record with the given identifier.
	Delete(ctx context.Context, id int64) error

	// Search returns up to topK records nearest to the given vector under
	// the cosine metric, ordered by descending score.
	Search(ctx context.Context, vector []float32, topK int) ([]schema.SearchHit, error)

	// Stats reports collection, index and partition statistics.
	Stats(ctx context.Context) (schema.CollectionStats, error)
}
