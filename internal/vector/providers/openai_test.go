package providers

import (
	"context"
	"net/http"
	"testing"
)

func TestOpenAIRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIEmbedder(Config{})
	if err == nil {
		t.Fatal("expected error when API key is missing, got nil")
	}
}

func TestOpenAICreateEmbedding(t *testing.T) {
	server := MockServer(t, MockResponseConfig{
		StatusCode: http.StatusOK,
		ResponseBody: map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float64{0.5, -0.5}, "index": 0},
			},
		},
	})
	defer server.Close()

	embedder, err := NewOpenAIEmbedder(Config{APIKey: "test-key", BaseURL: server.URL, Dimensions: 2})
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder returned error: %v", err)
	}

	embedding, err := embedder.CreateEmbedding(context.Background(), "John Smith")
	if err != nil {
		t.Fatalf("CreateEmbedding returned error: %v", err)
	}

	if len(embedding) != 2 || embedding[0] != 0.5 || embedding[1] != -0.5 {
		t.Errorf("unexpected embedding: %v", embedding)
	}
}

func TestOpenAICreateEmbeddingAPIError(t *testing.T) {
	server := MockServer(t, MockResponseConfig{
		StatusCode: http.StatusUnauthorized,
		ResponseBody: map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Incorrect API key provided",
				"type":    "invalid_request_error",
			},
		},
	})
	defer server.Close()

	embedder, err := NewOpenAIEmbedder(Config{APIKey: "bad-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder returned error: %v", err)
	}

	_, err = embedder.CreateEmbedding(context.Background(), "John Smith")
	if err == nil {
		t.Fatal("expected error for API failure, got nil")
	}
}

func TestOpenAICreateEmbeddingEmptyData(t *testing.T) {
	server := MockServer(t, MockResponseConfig{
		StatusCode:   http.StatusOK,
		ResponseBody: map[string]interface{}{"data": []map[string]interface{}{}},
	})
	defer server.Close()

	embedder, err := NewOpenAIEmbedder(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder returned error: %v", err)
	}

	_, err = embedder.CreateEmbedding(context.Background(), "John Smith")
	if err == nil {
		t.Fatal("expected error for empty data, got nil")
	}
}
