// Package providers contains the embedding model adapters. Each provider
// wraps one external embedding API behind the service's Embedder contract.
package providers

import "time"

const (
	// Provider constants
	ProviderMock   = "mock"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	// DefaultTimeout bounds one embedding API round trip.
	DefaultTimeout = 30 * time.Second
)

// Config holds common configuration for embedding providers.
type Config struct {
	// APIKey authenticates against hosted providers. Unused by ollama.
	APIKey string

	// Model is the embedding model identifier.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// Dimensions is the expected vector length. Providers that support
	// dimension reduction send it with the request; others only report it.
	Dimensions int

	// Timeout bounds one API round trip. Defaults to DefaultTimeout.
	Timeout time.Duration
}
