// Package schema defines the record shape, request/response types, and
// collection constants shared by the HTTP surface, the MCP tool surface,
// and the vector store backends.
package schema

// Collection layout. These mirror the schema the service declares against
// the vector store at startup: an auto-assigned integer primary key, a
// fixed-dimension float vector, and a JSON metadata document.
const (
	// CollectionName is the name of the collection holding the records.
	CollectionName = "distributed_vector_db"

	// CollectionDescription is the description attached to the collection
	// when it is first created.
	CollectionDescription = "Distributed vector database with metadata"

	// FieldID is the auto-generated integer primary key field.
	FieldID = "id"

	// FieldVector is the embedding vector field.
	FieldVector = "vector"

	// FieldMetadata is the JSON metadata field.
	FieldMetadata = "metadata"

	// DefaultEmbeddingDim is the vector dimension of the default
	// sentence-embedding models (MiniLM family).
	DefaultEmbeddingDim = 384

	// DefaultShards is the sharding factor fixed at collection creation.
	DefaultShards = 4
)

// Index parameters for the HNSW similarity index built over FieldVector.
const (
	IndexM              = 48
	IndexEfConstruction = 400
	SearchEf            = 64
)

const (
	// DefaultTopK is the number of neighbors returned when a query does
	// not specify top_k.
	DefaultTopK = 10

	// DefaultUploadBatchSize is how many mapped records accumulate before
	// the batch inserter issues one storage write during a file upload.
	DefaultUploadBatchSize = 1000
)

// RecordMetadata is the typed metadata document stored alongside each
// vector. The embedding is always computed from Name.
type RecordMetadata struct {
	Name        string `json:"Name"`
	Address     string `json:"Address"`
	Email       string `json:"Email"`
	PhoneNumber string `json:"PhoneNumber"`
}

// SearchHit is one similarity search result.
type SearchHit struct {
	// ID is the storage-assigned identifier of the matched record.
	ID int64 `json:"ID"`

	// Score is the cosine similarity score, higher is closer.
	Score float32 `json:"Score"`

	// Metadata is the stored metadata document of the matched record.
	Metadata RecordMetadata `json:"Metadata"`
}

// IndexStats describes one index configured on the collection.
type IndexStats struct {
	FieldName  string            `json:"field_name"`
	IndexType  string            `json:"index_type"`
	MetricType string            `json:"metric_type"`
	Params     map[string]string `json:"params"`
}

// CollectionStats is the flat statistics object returned by the stats
// operation.
type CollectionStats struct {
	CollectionName   string       `json:"collection_name"`
	Description      string       `json:"description"`
	IsEmpty          bool         `json:"is_empty"`
	TotalVectors     int64        `json:"total_vectors"`
	PrimaryField     string       `json:"primary_field"`
	PrimaryFieldType string       `json:"primary_field_type"`
	Partitions       []string     `json:"partitions"`
	Indexes          []IndexStats `json:"indexes"`
}

// InsertRequest is the body of a single-insert call. Name is required
// because it is the embedded text; the remaining fields default to empty.
type InsertRequest struct {
	Name        string `json:"Name" binding:"required"`
	Address     string `json:"Address"`
	Email       string `json:"Email"`
	PhoneNumber string `json:"PhoneNumber"`
}

// Metadata converts the request into the stored metadata shape.
func (r InsertRequest) Metadata() RecordMetadata {
	return RecordMetadata{
		Name:        r.Name,
		Address:     r.Address,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
	}
}

// InsertResponse acknowledges a single insert.
type InsertResponse struct {
	Status  string `json:"status"`
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// BatchInsertResponse acknowledges a batch insert.
type BatchInsertResponse struct {
	Status   string `json:"status"`
	Inserted int    `json:"inserted"`
	Message  string `json:"message,omitempty"`
}

// UploadResponse acknowledges a completed NDJSON file upload.
type UploadResponse struct {
	Status   string `json:"status"`
	Lines    int    `json:"lines"`
	Inserted int    `json:"inserted"`
	Message  string `json:"message,omitempty"`
}

// QueryRequest asks for the top_k records nearest to the embedding of
// query_text.
type QueryRequest struct {
	QueryText string `json:"query_text" binding:"required"`
	TopK      int    `json:"top_k"`
}

// QueryResponse carries similarity hits ordered by descending score.
type QueryResponse struct {
	Status  string      `json:"status"`
	Results []SearchHit `json:"results"`
}

// DeleteResponse acknowledges a delete-by-identifier.
type DeleteResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// MCP tool names exposed by the tool server.
const (
	ToolInsertRecord = "insert_record"
	ToolQueryRecords = "query_records"
	ToolDeleteRecord = "delete_record"
	ToolGetStats     = "get_stats"
)

// InsertRecordRequest is the input schema for the insert_record tool.
type InsertRecordRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// InsertRecordResponse is the output schema for the insert_record tool.
type InsertRecordResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// QueryRecordsRequest is the input schema for the query_records tool.
type QueryRecordsRequest struct {
	QueryText string `json:"query_text"`
	TopK      int    `json:"top_k,omitempty"`
}

// QueryRecordsResponse is the output schema for the query_records tool.
type QueryRecordsResponse struct {
	Status  string      `json:"status"`
	Results []SearchHit `json:"results,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// DeleteRecordRequest is the input schema for the delete_record tool.
type DeleteRecordRequest struct {
	ID int64 `json:"id"`
}

// DeleteRecordResponse is the output schema for the delete_record tool.
type DeleteRecordResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// GetStatsRequest is the input schema for the get_stats tool.
type GetStatsRequest struct{}

// GetStatsResponse is the output schema for the get_stats tool.
type GetStatsResponse struct {
	Status string           `json:"status"`
	Stats  *CollectionStats `json:"stats,omitempty"`
	Error  string           `json:"error,omitempty"`
}
