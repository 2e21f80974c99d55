package vectordb

import (
	"path/filepath"
	"testing"

	"github.com/ErykVaughn/vector-database/internal/schema"
)

func sqliteTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Store.Backend = "sqlite"
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "vectordb-test.db")
	cfg.Embedder.Provider = "mock"
	cfg.Embedder.Dimensions = 32
	return cfg
}

func TestCreateComponents(t *testing.T) {
	cfg := sqliteTestConfig(t)

	st, emb, err := CreateComponents(t.Context(), cfg, nil)
	if err != nil {
		t.Fatalf("CreateComponents failed: %v", err)
	}
	defer st.Close()

	if emb.Dimensions() != 32 {
		t.Errorf("embedder dimensions = %d, want 32", emb.Dimensions())
	}
}

func TestCreateComponentsUnknownBackend(t *testing.T) {
	cfg := sqliteTestConfig(t)
	cfg.Store.Backend = "cassandra"

	if _, _, err := CreateComponents(t.Context(), cfg, nil); err == nil {
		t.Fatal("CreateComponents with unknown backend should fail")
	}
}

func TestServiceInsertAndQuery(t *testing.T) {
	svc, err := NewService(ServiceOptions{Config: sqliteTestConfig(t)})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	defer svc.GetStore().Close()

	for _, name := range []string{"John Smith", "Jane Doe"} {
		id, err := svc.InsertRecord(t.Context(), schema.RecordMetadata{Name: name})
		if err != nil {
			t.Fatalf("InsertRecord(%q) failed: %v", name, err)
		}
		if id <= 0 {
			t.Errorf("InsertRecord(%q) returned id %d, want positive", name, id)
		}
	}

	hits, err := svc.QueryRecords(t.Context(), "Jane Doe", 1)
	if err != nil {
		t.Fatalf("QueryRecords failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].Metadata.Name != "Jane Doe" {
		t.Errorf("nearest hit = %q, want Jane Doe", hits[0].Metadata.Name)
	}
}

func TestQueryRecordsDefaultTopK(t *testing.T) {
	svc, err := NewService(ServiceOptions{Config: sqliteTestConfig(t)})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	defer svc.GetStore().Close()

	for i := 0; i < schema.DefaultTopK+5; i++ {
		if _, err := svc.InsertRecord(t.Context(), schema.RecordMetadata{
			Name: "Person " + string(rune('A'+i)),
		}); err != nil {
			t.Fatalf("seed insert failed: %v", err)
		}
	}

	hits, err := svc.QueryRecords(t.Context(), "Person A", 0)
	if err != nil {
		t.Fatalf("QueryRecords failed: %v", err)
	}
	if len(hits) != schema.DefaultTopK {
		t.Errorf("got %d hits with top_k 0, want default %d", len(hits), schema.DefaultTopK)
	}
}
