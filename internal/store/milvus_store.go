package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/ErykVaughn/vector-database/internal/errortypes"
	"github.com/ErykVaughn/vector-database/internal/schema"
)

// MilvusConfig holds the connection and collection settings for the
// Milvus backend.
type MilvusConfig struct {
	// Address is the host:port of the Milvus service.
	Address string

	// Collection is the collection name. Defaults to schema.CollectionName.
	Collection string

	// Dim is the vector dimension declared on the collection schema.
	Dim int

	// Shards is the sharding factor, fixed at collection creation.
	Shards int32
}

// MilvusStore is a VectorStore backed by an external Milvus service.
// One connection is opened at startup and shared by every request; the
// store itself holds no request state.
type MilvusStore struct {
	cfg    MilvusConfig
	client client.Client
	logger *slog.Logger
}

// NewMilvusStore creates a MilvusStore with the given configuration.
func NewMilvusStore(cfg MilvusConfig, logger *slog.Logger) *MilvusStore {
	if cfg.Collection == "" {
		cfg.Collection = schema.CollectionName
	}
	if cfg.Dim <= 0 {
		cfg.Dim = schema.DefaultEmbeddingDim
	}
	if cfg.Shards <= 0 {
		cfg.Shards = schema.DefaultShards
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MilvusStore{cfg: cfg, logger: logger}
}

// Initialize connects to Milvus, creates the collection and its HNSW
// index if absent, and loads the collection for querying. An existing
// collection is reopened as-is after its vector dimension is checked
// against the configured one.
func (s *MilvusStore) Initialize(ctx context.Context) error {
	s.logger.Info("Connecting to Milvus", "address", s.cfg.Address)

	c, err := client.NewClient(ctx, client.Config{Address: s.cfg.Address})
	if err != nil {
		return errortypes.NetworkError(err, "failed to connect to Milvus").
			WithField("address", s.cfg.Address)
	}
	s.client = c

	if err := s.ensureCollection(ctx); err != nil {
		s.client.Close()
		return err
	}

	if err := s.ensureIndex(ctx); err != nil {
		s.client.Close()
		return err
	}

	if err := s.client.LoadCollection(ctx, s.cfg.Collection, false); err != nil {
		s.client.Close()
		return errortypes.DatabaseError(err, "failed to load collection").
			WithField("collection", s.cfg.Collection)
	}

	s.logger.Info("Milvus collection ready", "collection", s.cfg.Collection, "dim", s.cfg.Dim)
	return nil
}

// ensureCollection creates the collection if it does not exist. For an
// existing collection the declared vector dimension must match; a
// mismatch fails startup instead of silently reusing the old schema.
func (s *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := s.client.HasCollection(ctx, s.cfg.Collection)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to check collection existence").
			WithField("collection", s.cfg.Collection)
	}

	if has {
		return s.validateCollection(ctx)
	}

	collSchema := entity.NewSchema().
		WithName(s.cfg.Collection).
		WithDescription(schema.CollectionDescription).
		WithField(entity.NewField().
			WithName(schema.FieldID).
			WithDataType(entity.FieldTypeInt64).
			WithIsPrimaryKey(true).
			WithIsAutoID(true)).
		WithField(entity.NewField().
			WithName(schema.FieldVector).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(s.cfg.Dim))).
		WithField(entity.NewField().
			WithName(schema.FieldMetadata).
			WithDataType(entity.FieldTypeJSON))

	s.logger.Info("Creating collection", "collection", s.cfg.Collection, "shards", s.cfg.Shards)
	if err := s.client.CreateCollection(ctx, collSchema, s.cfg.Shards); err != nil {
		return errortypes.DatabaseError(err, "failed to create collection").
			WithField("collection", s.cfg.Collection)
	}
	return nil
}

// validateCollection checks the vector field of an existing collection
// against the configured dimension.
func (s *MilvusStore) validateCollection(ctx context.Context) error {
	desc, err := s.client.DescribeCollection(ctx, s.cfg.Collection)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to describe existing collection").
			WithField("collection", s.cfg.Collection)
	}

	for _, field := range desc.Schema.Fields {
		if field.Name != schema.FieldVector {
			continue
		}
		dimStr, ok := field.TypeParams[entity.TypeParamDim]
		if !ok {
			return errortypes.ConfigError(errors.New("vector field has no dimension"), "existing collection schema is invalid").
				WithField("collection", s.cfg.Collection)
		}
		dim, err := strconv.Atoi(dimStr)
		if err != nil || dim != s.cfg.Dim {
			return errortypes.ConfigError(
				fmt.Errorf("collection dimension %s does not match configured %d", dimStr, s.cfg.Dim),
				"existing collection schema mismatch").
				WithField("collection", s.cfg.Collection)
		}
		return nil
	}

	return errortypes.ConfigError(errors.New("existing collection has no vector field"), "existing collection schema mismatch").
		WithField("collection", s.cfg.Collection)
}

// ensureIndex creates the HNSW index on the vector field when none
// exists yet. Built once; there is no versioning or rebuild.
func (s *MilvusStore) ensureIndex(ctx context.Context) error {
	indexes, err := s.client.DescribeIndex(ctx, s.cfg.Collection, schema.FieldVector)
	if err == nil && len(indexes) > 0 {
		return nil
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, schema.IndexM, schema.IndexEfConstruction)
	if err != nil {
		return errortypes.ConfigError(err, "failed to build HNSW index parameters")
	}

	s.logger.Info("Creating HNSW index",
		"collection", s.cfg.Collection,
		"M", schema.IndexM,
		"efConstruction", schema.IndexEfConstruction)
	if err := s.client.CreateIndex(ctx, s.cfg.Collection, schema.FieldVector, idx, false); err != nil {
		return errortypes.DatabaseError(err, "failed to create index").
			WithField("collection", s.cfg.Collection)
	}
	return nil
}

// Close closes the Milvus connection.
func (s *MilvusStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Insert writes one batch of vectors and metadata documents and returns
// the identifiers Milvus assigned.
func (s *MilvusStore) Insert(ctx context.Context, vectors [][]float32, metadata []schema.RecordMetadata) ([]int64, error) {
	if len(vectors) != len(metadata) {
		return nil, errortypes.InternalError(
			fmt.Errorf("vector count %d does not match metadata count %d", len(vectors), len(metadata)),
			"mismatched insert batch")
	}
	if len(vectors) == 0 {
		return nil, nil
	}

	metaDocs := make([][]byte, len(metadata))
	for i, m := range metadata {
		doc, err := json.Marshal(m)
		if err != nil {
			return nil, errortypes.InternalError(err, "failed to encode metadata document")
		}
		metaDocs[i] = doc
	}

	vectorCol := entity.NewColumnFloatVector(schema.FieldVector, s.cfg.Dim, vectors)
	metaCol := entity.NewColumnJSONBytes(schema.FieldMetadata, metaDocs)

	result, err := s.client.Insert(ctx, s.cfg.Collection, "", vectorCol, metaCol)
	if err != nil {
		return nil, errortypes.DatabaseError(err, "failed to insert vectors").
			WithField("count", len(vectors))
	}

	idCol, ok := result.(*entity.ColumnInt64)
	if !ok {
		return nil, errortypes.DatabaseError(
			fmt.Errorf("unexpected id column type %T", result),
			"insert returned unexpected identifiers")
	}
	return idCol.Data(), nil
}

// Delete removes one record by identifier equality.
func (s *MilvusStore) Delete(ctx context.Context, id int64) error {
	expr := fmt.Sprintf("%s in [%d]", schema.FieldID, id)
	if err := s.client.Delete(ctx, s.cfg.Collection, "", expr); err != nil {
		return errortypes.DatabaseError(err, "failed to delete vector").
			WithField("id", id)
	}
	return nil
}

// Search runs a cosine similarity search for the topK nearest records.
func (s *MilvusStore) Search(ctx context.Context, vector []float32, topK int) ([]schema.SearchHit, error) {
	sp, err := entity.NewIndexHNSWSearchParam(schema.SearchEf)
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to build search parameters")
	}

	results, err := s.client.Search(
		ctx,
		s.cfg.Collection,
		nil,
		"",
		[]string{schema.FieldMetadata},
		[]entity.Vector{entity.FloatVector(vector)},
		schema.FieldVector,
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, errortypes.DatabaseError(err, "vector search failed").
			WithField("top_k", topK)
	}

	return collectSearchHits(results)
}

// collectSearchHits flattens the per-query result sets into hits. Empty
// result sets are skipped before the id column is inspected; an empty
// collection can return them with no id column at all.
func collectSearchHits(results []client.SearchResult) ([]schema.SearchHit, error) {
	var hits []schema.SearchHit
	for _, result := range results {
		if result.ResultCount == 0 {
			continue
		}

		idCol, ok := result.IDs.(*entity.ColumnInt64)
		if !ok {
			return nil, errortypes.DatabaseError(
				fmt.Errorf("unexpected id column type %T", result.IDs),
				"search returned unexpected identifiers")
		}

		var metaCol *entity.ColumnJSONBytes
		for _, field := range result.Fields {
			if field.Name() == schema.FieldMetadata {
				metaCol, _ = field.(*entity.ColumnJSONBytes)
			}
		}

		for i := 0; i < result.ResultCount; i++ {
			hit := schema.SearchHit{
				ID:    idCol.Data()[i],
				Score: result.Scores[i],
			}
			if metaCol != nil {
				if err := json.Unmarshal(metaCol.Data()[i], &hit.Metadata); err != nil {
					return nil, errortypes.DatabaseError(err, "failed to decode metadata document").
						WithField("id", hit.ID)
				}
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// Stats reads collection, index and partition metadata and returns it as
// one flat object.
func (s *MilvusStore) Stats(ctx context.Context) (schema.CollectionStats, error) {
	var stats schema.CollectionStats

	desc, err := s.client.DescribeCollection(ctx, s.cfg.Collection)
	if err != nil {
		return stats, errortypes.DatabaseError(err, "failed to describe collection").
			WithField("collection", s.cfg.Collection)
	}

	stats.CollectionName = desc.Schema.CollectionName
	stats.Description = desc.Schema.Description
	for _, field := range desc.Schema.Fields {
		if field.PrimaryKey {
			stats.PrimaryField = field.Name
			stats.PrimaryFieldType = field.DataType.Name()
		}
	}

	statMap, err := s.client.GetCollectionStatistics(ctx, s.cfg.Collection)
	if err != nil {
		return stats, errortypes.DatabaseError(err, "failed to read collection statistics").
			WithField("collection", s.cfg.Collection)
	}
	if rowCount, ok := statMap["row_count"]; ok {
		n, err := strconv.ParseInt(rowCount, 10, 64)
		if err != nil {
			return stats, errortypes.DatabaseError(err, "failed to parse row count")
		}
		stats.TotalVectors = n
	}
	stats.IsEmpty = stats.TotalVectors == 0

	partitions, err := s.client.ShowPartitions(ctx, s.cfg.Collection)
	if err != nil {
		return stats, errortypes.DatabaseError(err, "failed to list partitions").
			WithField("collection", s.cfg.Collection)
	}
	for _, p := range partitions {
		stats.Partitions = append(stats.Partitions, p.Name)
	}

	indexes, err := s.client.DescribeIndex(ctx, s.cfg.Collection, schema.FieldVector)
	if err == nil {
		for _, idx := range indexes {
			params := idx.Params()
			stats.Indexes = append(stats.Indexes, schema.IndexStats{
				FieldName:  schema.FieldVector,
				IndexType:  indexTypeOf(params),
				MetricType: metricTypeOf(params),
				Params:     params,
			})
		}
	}

	return stats, nil
}

func indexTypeOf(params map[string]string) string {
	if t, ok := params["index_type"]; ok {
		return t
	}
	return "unknown"
}

func metricTypeOf(params map[string]string) string {
	if t, ok := params["metric_type"]; ok {
		return t
	}
	return "unknown"
}
