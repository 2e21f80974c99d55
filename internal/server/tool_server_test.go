package server

import (
	"fmt"
	"testing"

	"github.com/ErykVaughn/vector-database/internal/errortypes"
	"github.com/ErykVaughn/vector-database/internal/schema"
	"github.com/ErykVaughn/vector-database/internal/vector"
)

func newTestToolServer(t *testing.T, st *MockStore) *MCPRecordToolServer {
	t.Helper()
	srv := NewRecordToolServer(st, vector.NewMockEmbedder(16))
	if err := srv.Initialize(); err != nil {
		t.Fatalf("Failed to initialize tool server: %v", err)
	}
	return srv
}

func TestInsertRecordTool(t *testing.T) {
	st := &MockStore{}
	srv := newTestToolServer(t, st)

	response, err := srv.handleInsertRecord(nil, schema.InsertRecordRequest{
		Name:    "John Smith",
		Address: "1 Main St",
	})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}

	if response.Status != "success" {
		t.Errorf("Expected status 'success', got '%s'", response.Status)
	}
	if response.ID != 1 {
		t.Errorf("Expected id 1, got %d", response.ID)
	}
	if len(st.Metadata) != 1 || st.Metadata[0].Name != "John Smith" {
		t.Errorf("stored metadata = %+v, want one John Smith record", st.Metadata)
	}
}

func TestInsertRecordToolEmptyName(t *testing.T) {
	st := &MockStore{}
	srv := newTestToolServer(t, st)

	response, err := srv.handleInsertRecord(nil, schema.InsertRecordRequest{})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}

	if response.Status != "error" {
		t.Errorf("Expected status 'error', got '%s'", response.Status)
	}
	if len(st.Metadata) != 0 {
		t.Errorf("store should be untouched, has %d records", len(st.Metadata))
	}
}

func TestQueryRecordsTool(t *testing.T) {
	st := &MockStore{}
	srv := newTestToolServer(t, st)

	for _, name := range []string{"John Smith", "Jane Doe"} {
		if resp, err := srv.handleInsertRecord(nil, schema.InsertRecordRequest{Name: name}); err != nil || resp.Status != "success" {
			t.Fatalf("seed insert failed: %v / %+v", err, resp)
		}
	}

	response, err := srv.handleQueryRecords(nil, schema.QueryRecordsRequest{
		QueryText: "Jane Doe",
		TopK:      1,
	})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}

	if response.Status != "success" {
		t.Errorf("Expected status 'success', got '%s'", response.Status)
	}
	if len(response.Results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(response.Results))
	}
	if response.Results[0].Metadata.Name != "Jane Doe" {
		t.Errorf("nearest result = %q, want Jane Doe", response.Results[0].Metadata.Name)
	}
}

func TestQueryRecordsToolSearchFailure(t *testing.T) {
	st := &MockStore{FailSearch: errortypes.DatabaseError(fmt.Errorf("connection refused"), "search failed")}
	srv := newTestToolServer(t, st)

	response, err := srv.handleQueryRecords(nil, schema.QueryRecordsRequest{QueryText: "anyone"})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}

	if response.Status != "error" {
		t.Errorf("Expected status 'error', got '%s'", response.Status)
	}
	if response.Error == "" {
		t.Error("Expected non-empty error message")
	}
}

func TestDeleteRecordTool(t *testing.T) {
	st := &MockStore{}
	srv := newTestToolServer(t, st)

	response, err := srv.handleDeleteRecord(nil, schema.DeleteRecordRequest{ID: 42})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}

	if response.Status != "success" {
		t.Errorf("Expected status 'success', got '%s'", response.Status)
	}
}

func TestGetStatsTool(t *testing.T) {
	st := &MockStore{}
	srv := newTestToolServer(t, st)

	if resp, err := srv.handleInsertRecord(nil, schema.InsertRecordRequest{Name: "John Smith"}); err != nil || resp.Status != "success" {
		t.Fatalf("seed insert failed: %v / %+v", err, resp)
	}

	response, err := srv.handleGetStats(nil, schema.GetStatsRequest{})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}

	if response.Status != "success" {
		t.Errorf("Expected status 'success', got '%s'", response.Status)
	}
	if response.Stats == nil || response.Stats.TotalVectors != 1 {
		t.Errorf("stats = %+v, want 1 total vector", response.Stats)
	}
}

func TestToolServerInitializeMissingDependencies(t *testing.T) {
	srv := NewRecordToolServer(nil, nil)
	if err := srv.Initialize(); err == nil {
		t.Error("Initialize with nil dependencies should fail")
	}
}

func TestToolServerStartBeforeInitialize(t *testing.T) {
	srv := NewRecordToolServer(&MockStore{}, vector.NewMockEmbedder(16))
	if err := srv.Start(); err == nil {
		t.Error("Start before Initialize should fail")
	}
}
