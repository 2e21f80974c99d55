// Package config loads and saves the vector-database service configuration.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/localrivet/configurator"

	"github.com/ErykVaughn/vector-database/internal/schema"
)

// Config represents the vector-database service configuration
type Config struct {
	// Store contains storage-related configuration.
	Store struct {
		// Backend selects the vector store implementation ("milvus", "sqlite").
		Backend string `json:"backend" env:"STORE_BACKEND" validate:"required"`

		// SQLitePath is the path to the SQLite database file, used when
		// Backend is "sqlite".
		SQLitePath string `json:"sqlite_path" env:"SQLITE_PATH"`
	} `json:"store"`

	// Milvus contains connection settings for the milvus backend.
	Milvus struct {
		// Address is the host:port of the Milvus server.
		Address string `json:"address" env:"MILVUS_ADDRESS"`

		// Collection is the collection name holding the records.
		Collection string `json:"collection" env:"MILVUS_COLLECTION"`

		// Shards is the sharding factor used when the collection is first
		// created.
		Shards int `json:"shards" env:"MILVUS_SHARDS" validate:"min:1"`
	} `json:"milvus"`

	// Embedder contains embedding-related configuration.
	Embedder struct {
		// Provider is the name of the embedding provider to use
		// ("mock", "ollama", "openai").
		Provider string `json:"provider" env:"EMBEDDER_PROVIDER"`

		// Model is the embedding model name for HTTP providers.
		Model string `json:"model" env:"EMBEDDER_MODEL"`

		// BaseURL overrides the provider's API endpoint.
		BaseURL string `json:"base_url" env:"EMBEDDER_BASE_URL"`

		// ApiKey is the API key for the embedding provider.
		ApiKey string `json:"api_key" env:"EMBEDDER_API_KEY"`

		// Dimensions is the number of dimensions for the embeddings.
		Dimensions int `json:"dimensions" env:"EMBEDDER_DIMENSIONS" validate:"min:1"`
	} `json:"embedder"`

	// Ingest contains file upload configuration.
	Ingest struct {
		// BatchSize is how many records accumulate before one storage write.
		BatchSize int `json:"batch_size" env:"INGEST_BATCH_SIZE" validate:"min:1"`
	} `json:"ingest"`

	// Server contains HTTP and MCP surface configuration.
	Server struct {
		// Addr is the listen address of the HTTP API.
		Addr string `json:"addr" env:"SERVER_ADDR"`

		// EnableMCP also exposes the record tools over stdio MCP.
		EnableMCP bool `json:"enable_mcp" env:"SERVER_ENABLE_MCP"`
	} `json:"server"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename = ".vectordbconfig"
	DefaultSQLitePath     = ".vectordb.db"
	DefaultMilvusAddress  = "localhost:19530"
	DefaultServerAddr     = ":8000"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Store.Backend = "milvus"
	config.Store.SQLitePath = DefaultSQLitePath
	config.Milvus.Address = DefaultMilvusAddress
	config.Milvus.Collection = schema.CollectionName
	config.Milvus.Shards = schema.DefaultShards
	config.Embedder.Provider = "mock"
	config.Embedder.Dimensions = schema.DefaultEmbeddingDim
	config.Ingest.BatchSize = schema.DefaultUploadBatchSize
	config.Server.Addr = DefaultServerAddr
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path
func LoadConfigWithPath(configPath string) (*Config, error) {
	stdLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	// Check if the file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// File doesn't exist, return default config
		stdLogger.Info("Config file not found, using default configuration", "path", configPath)
		cfg.configPath = configPath
		cfg.lastModifiedAt = time.Now()
		return cfg, nil
	}

	stdLogger.Info("Loading configuration", "path", configPath)

	config := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider()).
		WithProvider(configurator.NewFileProvider(configPath)).
		WithProvider(configurator.NewEnvProvider("VECTORDB")).
		WithValidator(configurator.NewDefaultValidator())

	ctx := context.Background()
	if err := config.Load(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}
