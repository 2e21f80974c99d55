package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/localrivet/gomcp/server"

	"github.com/ErykVaughn/vector-database/internal/errortypes"
	"github.com/ErykVaughn/vector-database/internal/ingest"
	"github.com/ErykVaughn/vector-database/internal/schema"
	"github.com/ErykVaughn/vector-database/internal/store"
	"github.com/ErykVaughn/vector-database/internal/vector"
)

// MCPRecordToolServer implements the RecordToolServer interface, exposing
// the record operations as MCP tools over stdio.
type MCPRecordToolServer struct {
	store     store.VectorStore
	embedder  vector.Embedder
	mcpServer server.Server
}

// NewRecordToolServer creates a new MCPRecordToolServer instance.
func NewRecordToolServer(st store.VectorStore, embedder vector.Embedder) *MCPRecordToolServer {
	return &MCPRecordToolServer{
		store:    st,
		embedder: embedder,
	}
}

// Initialize initializes the server with dependencies and configurations.
func (s *MCPRecordToolServer) Initialize() error {
	slog.Info("Initializing MCP Record Tool Server")

	if s.store == nil || s.embedder == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "tool server initialization failed")
	}

	srv := server.NewServer("vector-database")

	srv = srv.Tool(schema.ToolInsertRecord, "Insert a record, embedding its name for similarity search",
		s.handleInsertRecord)

	srv = srv.Tool(schema.ToolQueryRecords, "Find records whose names are most similar to a query text",
		s.handleQueryRecords)

	srv = srv.Tool(schema.ToolDeleteRecord, "Delete a record by its integer id",
		s.handleDeleteRecord)

	srv = srv.Tool(schema.ToolGetStats, "Report collection, partition and index statistics",
		s.handleGetStats)

	s.mcpServer = srv
	slog.Info("MCP Record Tool Server initialized successfully", "tool_count", 4)
	return nil
}

// Start starts the MCP server on the stdio transport.
func (s *MCPRecordToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start tool server")
	}

	slog.Info("Starting MCP Record Tool Server")

	stdioServer := s.mcpServer.AsStdio()
	return stdioServer.Run()
}

// Stop gracefully shuts down the MCP server.
func (s *MCPRecordToolServer) Stop() error {
	slog.Info("Stopping MCP Record Tool Server")
	// The server exits when stdin is closed
	return nil
}

// handleInsertRecord handles the insert_record MCP tool call.
func (s *MCPRecordToolServer) handleInsertRecord(ctx *server.Context, req schema.InsertRecordRequest) (schema.InsertRecordResponse, error) {
	slog.Info("Processing insert_record request", "name_length", len(req.Name))

	response := schema.InsertRecordResponse{
		Status: "success",
	}

	if req.Name == "" {
		err := errortypes.ValidationError(errors.New("name cannot be empty"), "invalid insert_record request")
		errortypes.LogError(nil, err)
		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	meta := schema.RecordMetadata{
		Name:        req.Name,
		Address:     req.Address,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}

	ids, err := ingest.InsertMapped(context.Background(), s.store, s.embedder, []schema.RecordMetadata{meta})
	if err != nil {
		errortypes.LogError(nil, err)
		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	response.ID = ids[0]
	slog.Info("Successfully inserted record", "id", ids[0])
	return response, nil
}

// handleQueryRecords handles the query_records MCP tool call.
func (s *MCPRecordToolServer) handleQueryRecords(ctx *server.Context, req schema.QueryRecordsRequest) (schema.QueryRecordsResponse, error) {
	slog.Info("Processing query_records request", "query", req.QueryText, "top_k", req.TopK)

	response := schema.QueryRecordsResponse{
		Status: "success",
	}

	topK := req.TopK
	if topK <= 0 {
		topK = schema.DefaultTopK
		slog.Debug("Using default top_k for query_records", "top_k", topK)
	}

	queryVec, err := s.embedder.CreateEmbedding(context.Background(), req.QueryText)
	if err != nil {
		err = errortypes.APIError(err, "failed to create embedding for query").
			WithField("query", req.QueryText)
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	hits, err := s.store.Search(context.Background(), queryVec, topK)
	if err != nil {
		err = errortypes.DatabaseError(err, "failed to search vector store").
			WithField("top_k", topK)
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	response.Results = hits
	slog.Info("Successfully retrieved query results", "count", len(hits))
	return response, nil
}

// handleDeleteRecord handles the delete_record MCP tool call.
func (s *MCPRecordToolServer) handleDeleteRecord(ctx *server.Context, req schema.DeleteRecordRequest) (schema.DeleteRecordResponse, error) {
	slog.Info("Processing delete_record request", "id", req.ID)

	response := schema.DeleteRecordResponse{
		Status: "success",
	}

	if err := s.store.Delete(context.Background(), req.ID); err != nil {
		err = errortypes.DatabaseError(err, "failed to delete record").
			WithField("record_id", req.ID)
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	slog.Info("Successfully deleted record", "id", req.ID)
	return response, nil
}

// handleGetStats handles the get_stats MCP tool call.
func (s *MCPRecordToolServer) handleGetStats(ctx *server.Context, req schema.GetStatsRequest) (schema.GetStatsResponse, error) {
	slog.Info("Processing get_stats request")

	response := schema.GetStatsResponse{
		Status: "success",
	}

	stats, err := s.store.Stats(context.Background())
	if err != nil {
		err = errortypes.DatabaseError(err, "failed to read collection statistics")
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	response.Stats = &stats
	slog.Info("Successfully read collection statistics", "total_vectors", stats.TotalVectors)
	return response, nil
}
