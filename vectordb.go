// Package vectordb wires the vector-database service together: an
// embedding provider, a vector store backend, and the HTTP and MCP
// surfaces that expose the record operations.
package vectordb

import (
	"context"
	"log/slog"
	"time"

	"github.com/ErykVaughn/vector-database/internal/config"
	"github.com/ErykVaughn/vector-database/internal/errortypes"
	"github.com/ErykVaughn/vector-database/internal/schema"
	"github.com/ErykVaughn/vector-database/internal/server"
	"github.com/ErykVaughn/vector-database/internal/store"
	"github.com/ErykVaughn/vector-database/internal/telemetry"
	"github.com/ErykVaughn/vector-database/internal/vector"
	"github.com/ErykVaughn/vector-database/internal/vector/providers"
)

// Config represents the configuration for the vector-database service.
type Config = config.Config

// shutdownTimeout bounds how long Stop waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// Service represents the vector-database service.
type Service struct {
	config     *config.Config
	store      store.VectorStore
	embedder   vector.Embedder
	metrics    *telemetry.MetricsCollector
	api        *server.API
	toolServer server.RecordToolServer
	logger     *slog.Logger
}

// ServiceOptions defines the options for creating a new Service.
type ServiceOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewService creates a new vector-database Service with the given options.
// If opts.Config is provided, it is used directly. Otherwise, if
// opts.ConfigPath is provided, configuration is loaded from that path.
// If neither is provided, DefaultConfig() is used.
func NewService(opts ServiceOptions) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for service initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for service initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration")
		cfg = DefaultConfig()
	}

	ctx := context.Background()
	st, emb, err := CreateComponents(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to create components during service initialization", "error", err)
		return nil, err
	}

	metrics := telemetry.NewMetricsCollector()

	api, err := server.NewAPI(st, emb, metrics, cfg.Ingest.BatchSize, logger)
	if err != nil {
		logger.Error("Failed to initialize HTTP API component", "error", err)
		return nil, err
	}

	svc := &Service{
		config:   cfg,
		store:    st,
		embedder: emb,
		metrics:  metrics,
		api:      api,
		logger:   logger,
	}

	if cfg.Server.EnableMCP {
		logger.Info("Initializing record tool server component")
		toolServer := server.NewRecordToolServer(st, emb)
		if err := toolServer.Initialize(); err != nil {
			logger.Error("Failed to initialize MCP record tool server component", "error", err)
			return nil, errortypes.ConfigError(err, "Failed to initialize MCP record tool server component")
		}
		svc.toolServer = toolServer
	}

	logger.Info("Vector-database service successfully initialized")
	return svc, nil
}

// DefaultConfig returns the default configuration for the service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// Start starts the service. When MCP is enabled the tool server runs on
// its own goroutine over stdio while the HTTP API serves on the
// configured address. Start blocks until the HTTP server stops.
func (s *Service) Start() error {
	s.logger.Info("Starting vector-database service", "addr", s.config.Server.Addr)

	if s.toolServer != nil {
		go func() {
			if err := s.toolServer.Start(); err != nil {
				s.logger.Error("MCP record tool server exited", "error", err)
			}
		}()
	}

	return s.api.Start(s.config.Server.Addr)
}

// Stop stops the service, draining in-flight HTTP requests and closing
// the store.
func (s *Service) Stop() error {
	s.logger.Info("Stopping vector-database service")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.api.Stop(ctx); err != nil {
		s.logger.Error("Error stopping HTTP API", "error", err)
		return err
	}

	if s.toolServer != nil {
		if err := s.toolServer.Stop(); err != nil {
			s.logger.Error("Error stopping tool server", "error", err)
			return err
		}
	}

	s.logger.Info("Closing store")
	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close store", "error", err)
		return err
	}

	s.logger.Info("Vector-database service stopped")
	return nil
}

// GetStore returns the vector store instance used by the service.
func (s *Service) GetStore() store.VectorStore {
	return s.store
}

// GetEmbedder returns the embedder instance used by the service.
func (s *Service) GetEmbedder() vector.Embedder {
	return s.embedder
}

// CreateComponents creates and initializes the store and embedder of the
// vector-database service without creating a Service instance. This is
// useful for tooling that needs direct access to the components.
func CreateComponents(ctx context.Context, cfg *Config, logger *slog.Logger) (store.VectorStore, vector.Embedder, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Initialize embedder first: the collection schema dimension follows
	// the embedder's output dimension.
	logger.Info("Initializing embedder", "provider", cfg.Embedder.Provider, "dimensions", cfg.Embedder.Dimensions)
	emb, err := vector.NewEmbedder(cfg.Embedder.Provider, providers.Config{
		APIKey:     cfg.Embedder.ApiKey,
		Model:      cfg.Embedder.Model,
		BaseURL:    cfg.Embedder.BaseURL,
		Dimensions: cfg.Embedder.Dimensions,
	})
	if err != nil {
		logger.Error("Failed to create embedder", "provider", cfg.Embedder.Provider, "error", err)
		return nil, nil, errortypes.ConfigError(err, "Failed to create embedder")
	}
	if err := emb.Initialize(); err != nil {
		logger.Error("Failed to initialize embedder", "error", err)
		return nil, nil, errortypes.ConfigError(err, "Failed to initialize embedder")
	}

	var st store.VectorStore
	switch cfg.Store.Backend {
	case "milvus", "":
		logger.Info("Initializing Milvus vector store", "address", cfg.Milvus.Address, "collection", cfg.Milvus.Collection)
		st = store.NewMilvusStore(store.MilvusConfig{
			Address:    cfg.Milvus.Address,
			Collection: cfg.Milvus.Collection,
			Dim:        emb.Dimensions(),
			Shards:     int32(cfg.Milvus.Shards),
		}, logger)
	case "sqlite":
		logger.Info("Initializing SQLite vector store", "path", cfg.Store.SQLitePath)
		st = store.NewSQLiteStore(cfg.Store.SQLitePath)
	default:
		err := errortypes.ConfigError(nil, "unknown store backend: "+cfg.Store.Backend)
		logger.Error("Unknown store backend", "backend", cfg.Store.Backend)
		return nil, nil, err
	}

	if err := st.Initialize(ctx); err != nil {
		logger.Error("Failed to initialize vector store", "backend", cfg.Store.Backend, "error", err)
		return nil, nil, errortypes.DatabaseError(err, "Failed to initialize vector store")
	}

	logger.Info("Components successfully initialized")
	return st, emb, nil
}

// InsertRecord embeds the record's name and stores one vector, returning
// the assigned id.
func (s *Service) InsertRecord(ctx context.Context, meta schema.RecordMetadata) (int64, error) {
	s.logger.Debug("Inserting record", "name_length", len(meta.Name))

	emb, err := s.embedder.CreateEmbedding(ctx, meta.Name)
	if err != nil {
		s.logger.Error("Failed to create embedding", "error", err)
		return 0, err
	}

	ids, err := s.store.Insert(ctx, [][]float32{emb}, []schema.RecordMetadata{meta})
	if err != nil {
		s.logger.Error("Failed to insert record", "error", err)
		return 0, err
	}

	s.logger.Info("Successfully inserted record", "id", ids[0])
	return ids[0], nil
}

// QueryRecords retrieves the topK records nearest to the query text.
func (s *Service) QueryRecords(ctx context.Context, queryText string, topK int) ([]schema.SearchHit, error) {
	if topK <= 0 {
		topK = schema.DefaultTopK
	}

	s.logger.Debug("Creating embedding for query", "query", queryText)
	queryVec, err := s.embedder.CreateEmbedding(ctx, queryText)
	if err != nil {
		s.logger.Error("Failed to create embedding for query", "query", queryText, "error", err)
		return nil, err
	}

	s.logger.Debug("Searching for similar records", "top_k", topK)
	hits, err := s.store.Search(ctx, queryVec, topK)
	if err != nil {
		s.logger.Error("Failed to search vector store", "top_k", topK, "error", err)
		return nil, err
	}

	s.logger.Info("Retrieved records", "count", len(hits))
	return hits, nil
}
