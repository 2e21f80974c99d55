package ingest

import (
	"context"
	"time"

	"github.com/ErykVaughn/vector-database/internal/schema"
	"github.com/ErykVaughn/vector-database/internal/store"
	"github.com/ErykVaughn/vector-database/internal/telemetry"
	"github.com/ErykVaughn/vector-database/internal/vector"
)

// BatchInserter accumulates mapped records and writes them to the store
// in fixed-size batches: each record's Name is embedded and the batch is
// submitted as one storage write. The batch boundary is a throughput
// knob, not a consistency boundary — batches flushed earlier stay
// committed when a later one fails. No retry, no rollback.
type BatchInserter struct {
	store     store.VectorStore
	embedder  vector.Embedder
	metrics   *telemetry.MetricsCollector
	batchSize int
	pending   []schema.RecordMetadata
	inserted  int
}

// NewBatchInserter creates a BatchInserter flushing every batchSize
// records. A non-positive batchSize falls back to the upload default;
// a nil metrics collector disables flush telemetry.
func NewBatchInserter(st store.VectorStore, embedder vector.Embedder, batchSize int, metrics *telemetry.MetricsCollector) *BatchInserter {
	if batchSize <= 0 {
		batchSize = schema.DefaultUploadBatchSize
	}
	return &BatchInserter{
		store:     st,
		embedder:  embedder,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// Add queues one mapped record and flushes when the batch is full.
func (b *BatchInserter) Add(ctx context.Context, meta schema.RecordMetadata) error {
	b.pending = append(b.pending, meta)
	if len(b.pending) >= b.batchSize {
		return b.flush(ctx)
	}
	return nil
}

// Flush writes any remaining partial batch.
func (b *BatchInserter) Flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}
	return b.flush(ctx)
}

// Inserted returns how many records have been durably written so far.
func (b *BatchInserter) Inserted() int {
	return b.inserted
}

func (b *BatchInserter) flush(ctx context.Context) error {
	start := time.Now()
	ids, err := InsertMapped(ctx, b.store, b.embedder, b.pending)
	if err != nil {
		return err
	}
	if b.metrics != nil {
		b.metrics.IncrementCounter(telemetry.MetricBatchFlushes, 1)
		b.metrics.IncrementCounter(telemetry.MetricEmbeddings, int64(len(ids)))
		b.metrics.RecordTimer(telemetry.TimerInsert, time.Since(start))
	}
	b.inserted += len(ids)
	b.pending = b.pending[:0]
	return nil
}

// InsertMapped embeds the Name of every record and submits vectors and
// metadata to the store as one write, returning the assigned ids in input
// order. Embedding failures abort the write before anything is stored.
func InsertMapped(ctx context.Context, st store.VectorStore, embedder vector.Embedder, metadata []schema.RecordMetadata) ([]int64, error) {
	if len(metadata) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(metadata))
	for i, meta := range metadata {
		vec, err := embedder.CreateEmbedding(ctx, meta.Name)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}

	return st.Insert(ctx, vectors, metadata)
}
