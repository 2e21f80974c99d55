// Package server provides the HTTP and MCP tool surfaces of the
// vector-database service.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ErykVaughn/vector-database/internal/errortypes"
	"github.com/ErykVaughn/vector-database/internal/ingest"
	"github.com/ErykVaughn/vector-database/internal/schema"
	"github.com/ErykVaughn/vector-database/internal/store"
	"github.com/ErykVaughn/vector-database/internal/telemetry"
	"github.com/ErykVaughn/vector-database/internal/vector"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// API serves the REST endpoints for inserting, querying and deleting
// vector records.
type API struct {
	store      store.VectorStore
	embedder   vector.Embedder
	metrics    *telemetry.MetricsCollector
	batchSize  int
	logger     *slog.Logger
	httpServer *http.Server
}

// NewAPI creates an API serving requests against the given store and
// embedder. A non-positive batchSize falls back to the upload default.
func NewAPI(st store.VectorStore, embedder vector.Embedder, metrics *telemetry.MetricsCollector, batchSize int, logger *slog.Logger) (*API, error) {
	if st == nil || embedder == nil {
		return nil, errortypes.ConfigError(ErrMissingDependencies, "API initialization failed")
	}
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	if batchSize <= 0 {
		batchSize = schema.DefaultUploadBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		store:     st,
		embedder:  embedder,
		metrics:   metrics,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Routes builds the gin engine with all API routes registered.
func (a *API) Routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/insert", a.handleInsert)
	router.POST("/batch_insert", a.handleBatchInsert)
	router.POST("/upload_file", a.handleUploadFile)
	router.POST("/query", a.handleQuery)
	router.GET("/stats", a.handleStats)
	router.DELETE("/delete/:vector_id", a.handleDelete)

	router.GET("/healthz", a.handleHealthz)
	router.GET("/metrics", a.handleMetrics)

	return router
}

// Start begins serving HTTP requests on the given address. It blocks
// until the server stops.
func (a *API) Start(addr string) error {
	a.httpServer = &http.Server{
		Addr:    addr,
		Handler: a.Routes(),
	}

	a.logger.Info("Starting HTTP API", "addr", addr)
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errortypes.NetworkError(err, "HTTP server failed")
	}
	return nil
}

// Stop gracefully shuts down the HTTP server, waiting for in-flight
// requests to drain.
func (a *API) Stop(ctx context.Context) error {
	if a.httpServer == nil {
		return nil
	}
	a.logger.Info("Stopping HTTP API")
	return a.httpServer.Shutdown(ctx)
}

// handleInsert embeds the record's Name and stores one vector.
func (a *API) handleInsert(c *gin.Context) {
	var req schema.InsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBadRequest(c, "Invalid insert request", err)
		return
	}

	start := time.Now()
	ids, err := ingest.InsertMapped(c.Request.Context(), a.store, a.embedder, []schema.RecordMetadata{req.Metadata()})
	if err != nil {
		HandleError(c, err)
		return
	}
	a.metrics.IncrementCounter(telemetry.MetricInserts, 1)
	a.metrics.IncrementCounter(telemetry.MetricInsertedVectors, 1)
	a.metrics.IncrementCounter(telemetry.MetricEmbeddings, 1)
	a.metrics.RecordTimer(telemetry.TimerInsert, time.Since(start))

	a.logger.Info("Inserted record", "id", ids[0])
	c.JSON(http.StatusOK, schema.InsertResponse{
		Status:  "success",
		ID:      ids[0],
		Message: fmt.Sprintf("inserted record %d", ids[0]),
	})
}

// handleBatchInsert embeds and stores a list of records as one write.
func (a *API) handleBatchInsert(c *gin.Context) {
	var reqs []schema.InsertRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		HandleBadRequest(c, "Invalid batch insert request", err)
		return
	}
	if len(reqs) == 0 {
		HandleBadRequest(c, "Batch must contain at least one record", errors.New("empty batch"))
		return
	}

	metadata := make([]schema.RecordMetadata, len(reqs))
	for i, req := range reqs {
		metadata[i] = req.Metadata()
	}

	start := time.Now()
	ids, err := ingest.InsertMapped(c.Request.Context(), a.store, a.embedder, metadata)
	if err != nil {
		HandleError(c, err)
		return
	}
	a.metrics.IncrementCounter(telemetry.MetricInserts, 1)
	a.metrics.IncrementCounter(telemetry.MetricInsertedVectors, int64(len(ids)))
	a.metrics.IncrementCounter(telemetry.MetricEmbeddings, int64(len(ids)))
	a.metrics.RecordTimer(telemetry.TimerInsert, time.Since(start))

	a.logger.Info("Inserted batch", "count", len(ids))
	c.JSON(http.StatusOK, schema.BatchInsertResponse{
		Status:   "success",
		Inserted: len(ids),
		Message:  fmt.Sprintf("inserted %d records", len(ids)),
	})
}

// handleUploadFile streams an NDJSON file line by line through the batch
// inserter. Any malformed line or storage failure fails the whole request;
// batches already flushed stay committed.
func (a *API) handleUploadFile(c *gin.Context) {
	reader, err := uploadReader(c)
	if err != nil {
		HandleBadRequest(c, "Invalid file upload", err)
		return
	}
	defer reader.Close()

	start := time.Now()
	inserter := ingest.NewBatchInserter(a.store, a.embedder, a.batchSize, a.metrics)

	lines := 0
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		lines++

		meta, err := ingest.MapLine(line)
		if err != nil {
			a.uploadFailed(c, inserter, err)
			return
		}
		if err := inserter.Add(c.Request.Context(), meta); err != nil {
			a.uploadFailed(c, inserter, err)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		a.uploadFailed(c, inserter, errortypes.ValidationError(err, "failed to read upload"))
		return
	}
	if err := inserter.Flush(c.Request.Context()); err != nil {
		a.uploadFailed(c, inserter, err)
		return
	}

	a.metrics.IncrementCounter(telemetry.MetricUploads, 1)
	a.metrics.IncrementCounter(telemetry.MetricUploadLines, int64(lines))
	a.metrics.IncrementCounter(telemetry.MetricInsertedVectors, int64(inserter.Inserted()))
	a.metrics.RecordTimer(telemetry.TimerUpload, time.Since(start))

	a.logger.Info("Processed upload", "lines", lines, "inserted", inserter.Inserted())
	c.JSON(http.StatusOK, schema.UploadResponse{
		Status:   "success",
		Lines:    lines,
		Inserted: inserter.Inserted(),
		Message:  fmt.Sprintf("inserted %d records", inserter.Inserted()),
	})
}

// uploadFailed reports a failed upload. Records flushed before the failure
// remain in the store, so the committed count is logged for the operator.
func (a *API) uploadFailed(c *gin.Context, inserter *ingest.BatchInserter, err error) {
	a.logger.Error("Upload failed", "error", err, "committed", inserter.Inserted())
	HandleInternalError(c, fmt.Sprintf("error processing file: %v", err), err)
}

// uploadReader returns the NDJSON payload: the multipart "file" part when
// present, the raw request body otherwise.
func uploadReader(c *gin.Context) (io.ReadCloser, error) {
	file, err := c.FormFile("file")
	if err == nil {
		return file.Open()
	}
	if c.Request.Body == nil {
		return nil, errors.New("request has no body")
	}
	return c.Request.Body, nil
}

// handleQuery embeds the query text and returns the nearest records.
func (a *API) handleQuery(c *gin.Context) {
	var req schema.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBadRequest(c, "Invalid query request", err)
		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = schema.DefaultTopK
	}

	embedStart := time.Now()
	queryVec, err := a.embedder.CreateEmbedding(c.Request.Context(), req.QueryText)
	if err != nil {
		a.metrics.IncrementCounter(telemetry.MetricEmbeddingFailures, 1)
		HandleError(c, err)
		return
	}
	a.metrics.IncrementCounter(telemetry.MetricEmbeddings, 1)
	a.metrics.RecordTimer(telemetry.TimerEmbedding, time.Since(embedStart))

	searchStart := time.Now()
	hits, err := a.store.Search(c.Request.Context(), queryVec, topK)
	if err != nil {
		HandleError(c, err)
		return
	}
	a.metrics.IncrementCounter(telemetry.MetricQueries, 1)
	a.metrics.RecordTimer(telemetry.TimerSearch, time.Since(searchStart))

	if hits == nil {
		hits = []schema.SearchHit{}
	}
	c.JSON(http.StatusOK, schema.QueryResponse{
		Status:  "success",
		Results: hits,
	})
}

// handleStats reports collection, partition, and index statistics.
func (a *API) handleStats(c *gin.Context) {
	stats, err := a.store.Stats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	a.metrics.SetGauge("collection.row_count", float64(stats.TotalVectors))
	c.JSON(http.StatusOK, stats)
}

// handleDelete removes one record by its integer identifier.
func (a *API) handleDelete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("vector_id"), 10, 64)
	if err != nil {
		HandleBadRequest(c, "vector_id must be an integer", err)
		return
	}

	if err := a.store.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	a.metrics.IncrementCounter(telemetry.MetricDeletes, 1)

	a.logger.Info("Deleted record", "id", id)
	c.JSON(http.StatusOK, schema.DeleteResponse{
		Status:  "success",
		Message: fmt.Sprintf("deleted record %d", id),
	})
}

// handleHealthz reports liveness and component status. The store check
// is a live statistics read, so a lost backend connection turns the
// report degraded.
func (a *API) handleHealthz(c *gin.Context) {
	storeStatus := "up"
	status := "ok"
	if _, err := a.store.Stats(c.Request.Context()); err != nil {
		storeStatus = "down"
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"components": gin.H{
			"store":    storeStatus,
			"embedder": fmt.Sprintf("up (%d dims)", a.embedder.Dimensions()),
		},
	})
}

// handleMetrics reports the collected metrics snapshot.
func (a *API) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, a.metrics.Snapshot())
}
