package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ErykVaughn/vector-database/internal/schema"
	"github.com/ErykVaughn/vector-database/internal/vector"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "records.db")
	s := NewSQLiteStore(dbPath)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize error: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close error: %v", err)
		}
	})
	return s
}

func embedAll(t *testing.T, texts ...string) [][]float32 {
	t.Helper()

	embedder := vector.NewMockEmbedder(32)
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := embedder.CreateEmbedding(context.Background(), text)
		if err != nil {
			t.Fatalf("CreateEmbedding error: %v", err)
		}
		vectors[i] = vec
	}
	return vectors
}

func TestSQLiteStoreInsertAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)

	metadata := []schema.RecordMetadata{
		{Name: "John Smith", Email: "john@example.com"},
		{Name: "Jane Doe", Email: "jane@example.com"},
	}
	ids, err := s.Insert(context.Background(), embedAll(t, "John Smith", "Jane Doe"), metadata)
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}

	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	if ids[0] == ids[1] {
		t.Errorf("expected distinct ids, got %v", ids)
	}
}

func TestSQLiteStoreSearchReturnsNearestFirst(t *testing.T) {
	s := newTestStore(t)

	names := []string{"John Smith", "Jane Doe", "Bob Jones"}
	metadata := make([]schema.RecordMetadata, len(names))
	for i, name := range names {
		metadata[i] = schema.RecordMetadata{Name: name}
	}
	if _, err := s.Insert(context.Background(), embedAll(t, names...), metadata); err != nil {
		t.Fatalf("Insert error: %v", err)
	}

	query := embedAll(t, "Jane Doe")[0]
	hits, err := s.Search(context.Background(), query, 2)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}

	if len(hits) != 2 {
		t.Fatalf("expected 2 hits for top_k=2, got %d", len(hits))
	}
	if hits[0].Metadata.Name != "Jane Doe" {
		t.Errorf("expected exact match first, got %q", hits[0].Metadata.Name)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("hits not ordered by descending score: %v then %v", hits[0].Score, hits[1].Score)
	}
}

func TestSQLiteStoreDeleteDecrementsStats(t *testing.T) {
	s := newTestStore(t)

	metadata := []schema.RecordMetadata{
		{Name: "John Smith"},
		{Name: "Jane Doe"},
	}
	ids, err := s.Insert(context.Background(), embedAll(t, "John Smith", "Jane Doe"), metadata)
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}

	before, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}

	if err := s.Delete(context.Background(), ids[0]); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	after, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}

	if after.TotalVectors != before.TotalVectors-1 {
		t.Errorf("expected total_vectors to drop from %d to %d, got %d",
			before.TotalVectors, before.TotalVectors-1, after.TotalVectors)
	}
}

func TestSQLiteStoreStatsEmptyCollection(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}

	if !stats.IsEmpty {
		t.Error("expected empty collection")
	}
	if stats.TotalVectors != 0 {
		t.Errorf("expected 0 vectors, got %d", stats.TotalVectors)
	}
	if stats.CollectionName != schema.CollectionName {
		t.Errorf("unexpected collection name %q", stats.CollectionName)
	}
}

func TestSQLiteStoreInsertMismatchedBatch(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Insert(context.Background(), embedAll(t, "John Smith"), nil)
	if err == nil {
		t.Fatal("expected error for mismatched batch, got nil")
	}
}
