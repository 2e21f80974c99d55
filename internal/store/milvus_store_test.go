package store

import (
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/ErykVaughn/vector-database/internal/schema"
)

func TestCollectSearchHitsEmptyResultSet(t *testing.T) {
	// An empty collection can answer with a result set that has no id
	// column at all; it must not be treated as a malformed response.
	results := []client.SearchResult{
		{ResultCount: 0},
	}

	hits, err := collectSearchHits(results)
	if err != nil {
		t.Fatalf("collectSearchHits failed on empty result set: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("got %d hits from empty result set, want 0", len(hits))
	}
}

func TestCollectSearchHits(t *testing.T) {
	results := []client.SearchResult{
		{
			ResultCount: 2,
			IDs:         entity.NewColumnInt64(schema.FieldID, []int64{7, 3}),
			Scores:      []float32{0.9, 0.4},
		},
	}

	hits, err := collectSearchHits(results)
	if err != nil {
		t.Fatalf("collectSearchHits failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].ID != 7 || hits[0].Score != 0.9 {
		t.Errorf("first hit = %+v, want id 7 score 0.9", hits[0])
	}
	if hits[1].ID != 3 || hits[1].Score != 0.4 {
		t.Errorf("second hit = %+v, want id 3 score 0.4", hits[1])
	}
}

func TestCollectSearchHitsUnexpectedIDColumn(t *testing.T) {
	results := []client.SearchResult{
		{
			ResultCount: 1,
			IDs:         entity.NewColumnVarChar(schema.FieldID, []string{"abc"}),
			Scores:      []float32{0.5},
		},
	}

	if _, err := collectSearchHits(results); err == nil {
		t.Fatal("collectSearchHits should reject a non-int64 id column")
	}
}
