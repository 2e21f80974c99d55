package providers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// MockResponseConfig holds configuration for mock API responses.
type MockResponseConfig struct {
	StatusCode   int
	ResponseBody interface{}
	Headers      map[string]string
}

// MockServer creates a test server that returns the configured response.
func MockServer(t *testing.T, config MockResponseConfig) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range config.Headers {
			w.Header().Set(k, v)
		}

		if _, exists := config.Headers["Content-Type"]; !exists {
			w.Header().Set("Content-Type", "application/json")
		}

		w.WriteHeader(config.StatusCode)

		if config.ResponseBody != nil {
			var respBytes []byte
			var err error

			switch body := config.ResponseBody.(type) {
			case string:
				respBytes = []byte(body)
			case []byte:
				respBytes = body
			default:
				respBytes, err = json.Marshal(body)
				if err != nil {
					t.Fatalf("Failed to marshal mock response: %v", err)
				}
			}

			if _, err := w.Write(respBytes); err != nil {
				t.Fatalf("Failed to write mock response: %v", err)
			}
		}
	}))
}
