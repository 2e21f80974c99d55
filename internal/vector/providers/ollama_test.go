package providers

import (
	"context"
	"net/http"
	"testing"
)

func TestOllamaCreateEmbedding(t *testing.T) {
	server := MockServer(t, MockResponseConfig{
		StatusCode: http.StatusOK,
		ResponseBody: map[string]interface{}{
			"embedding": []float64{0.1, 0.2, 0.3},
		},
	})
	defer server.Close()

	embedder := NewOllamaEmbedder(Config{BaseURL: server.URL, Dimensions: 3})

	embedding, err := embedder.CreateEmbedding(context.Background(), "John Smith")
	if err != nil {
		t.Fatalf("CreateEmbedding returned error: %v", err)
	}

	expected := []float32{0.1, 0.2, 0.3}
	if len(embedding) != len(expected) {
		t.Fatalf("expected %d values, got %d", len(expected), len(embedding))
	}
	for i, v := range expected {
		if embedding[i] != v {
			t.Errorf("embedding[%d] = %v, want %v", i, embedding[i], v)
		}
	}
}

func TestOllamaCreateEmbeddingServerError(t *testing.T) {
	server := MockServer(t, MockResponseConfig{
		StatusCode:   http.StatusInternalServerError,
		ResponseBody: "model not loaded",
	})
	defer server.Close()

	embedder := NewOllamaEmbedder(Config{BaseURL: server.URL})

	_, err := embedder.CreateEmbedding(context.Background(), "John Smith")
	if err == nil {
		t.Fatal("expected error for server failure, got nil")
	}
}

func TestOllamaCreateEmbeddingEmptyResult(t *testing.T) {
	server := MockServer(t, MockResponseConfig{
		StatusCode:   http.StatusOK,
		ResponseBody: map[string]interface{}{"embedding": []float64{}},
	})
	defer server.Close()

	embedder := NewOllamaEmbedder(Config{BaseURL: server.URL})

	_, err := embedder.CreateEmbedding(context.Background(), "John Smith")
	if err == nil {
		t.Fatal("expected error for empty embedding, got nil")
	}
}

func TestOllamaDefaults(t *testing.T) {
	embedder := NewOllamaEmbedder(Config{})

	if embedder.Dimensions() != OllamaDefaultDimensions {
		t.Errorf("expected default dimensions %d, got %d", OllamaDefaultDimensions, embedder.Dimensions())
	}
	if embedder.model != OllamaDefaultModel {
		t.Errorf("expected default model %q, got %q", OllamaDefaultModel, embedder.model)
	}
}
