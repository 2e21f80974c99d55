package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"crawshaw.io/sqlite"

	"github.com/ErykVaughn/vector-database/internal/errortypes"
	"github.com/ErykVaughn/vector-database/internal/schema"
	"github.com/ErykVaughn/vector-database/internal/vector"
)

// SQLiteStore is a VectorStore backed by a local SQLite database. Vectors
// are stored as blobs and ranked in process with cosine similarity, which
// keeps the same observable contract as the milvus backend for small
// datasets: storage-assigned int64 ids, descending-score search, delete by
// id. Intended for development and tests.
type SQLiteStore struct {
	conn   *sqlite.Conn
	dbPath string

	// crawshaw connections are not safe for concurrent use; HTTP handlers
	// run concurrently, so every statement holds the lock.
	mu sync.Mutex
}

// NewSQLiteStore creates a SQLiteStore persisting to dbPath.
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{dbPath: dbPath}
}

// Initialize opens the database and creates the records table if needed.
func (s *SQLiteStore) Initialize(_ context.Context) error {
	conn, err := sqlite.OpenConn(s.dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to open SQLite database").
			WithField("path", s.dbPath)
	}
	s.conn = conn

	if err := s.createTable(); err != nil {
		s.conn.Close()
		return errortypes.DatabaseError(err, "failed to create records table")
	}

	return nil
}

func (s *SQLiteStore) createTable() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vector BLOB NOT NULL,
		metadata TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`

	stmt, err := s.conn.Prepare(createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare create table statement: %w", err)
	}
	defer stmt.Reset()

	_, err = stmt.Step()
	if err != nil {
		return fmt.Errorf("failed to execute create table statement: %w", err)
	}

	return nil
}

// Close closes the store and releases any resources.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Insert writes the batch row by row and returns the rowids SQLite
// assigned.
func (s *SQLiteStore) Insert(_ context.Context, vectors [][]float32, metadata []schema.RecordMetadata) ([]int64, error) {
	if len(vectors) != len(metadata) {
		return nil, errortypes.InternalError(
			fmt.Errorf("vector count %d does not match metadata count %d", len(vectors), len(metadata)),
			"mismatched insert batch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(vectors))
	now := time.Now().Unix()

	for i, vec := range vectors {
		embedding, err := vector.Float32SliceToBytes(vec)
		if err != nil {
			return nil, errortypes.InternalError(err, "failed to encode vector")
		}

		doc, err := json.Marshal(metadata[i])
		if err != nil {
			return nil, errortypes.InternalError(err, "failed to encode metadata document")
		}

		stmt, err := s.conn.Prepare(`INSERT INTO records (vector, metadata, created_at) VALUES (?, ?, ?);`)
		if err != nil {
			return nil, errortypes.DatabaseError(err, "failed to prepare insert statement")
		}

		stmt.BindBytes(1, embedding)
		stmt.BindText(2, string(doc))
		stmt.BindInt64(3, now)

		if _, err := stmt.Step(); err != nil {
			stmt.Reset()
			return nil, errortypes.DatabaseError(err, "failed to insert record")
		}
		stmt.Reset()

		ids = append(ids, s.conn.LastInsertRowID())
	}

	return ids, nil
}

// Delete removes one record by identifier equality.
func (s *SQLiteStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.conn.Prepare(`DELETE FROM records WHERE id = ?;`)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to prepare delete statement")
	}
	defer stmt.Reset()

	stmt.BindInt64(1, id)
	if _, err := stmt.Step(); err != nil {
		return errortypes.DatabaseError(err, "failed to delete record").
			WithField("id", id)
	}

	return nil
}

// Search scans every stored vector, scores it against the query with
// cosine similarity, and returns the topK best in descending order.
func (s *SQLiteStore) Search(_ context.Context, queryVector []float32, topK int) ([]schema.SearchHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.conn.Prepare(`SELECT id, vector, metadata FROM records;`)
	if err != nil {
		return nil, errortypes.DatabaseError(err, "failed to prepare select statement")
	}
	defer stmt.Reset()

	var hits []schema.SearchHit

	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, errortypes.DatabaseError(err, "failed to scan records")
		}
		if !hasRow {
			break
		}

		id := stmt.ColumnInt64(0)

		embeddingLen := stmt.ColumnLen(1)
		embeddingBytes := make([]byte, embeddingLen)
		stmt.ColumnBytes(1, embeddingBytes)

		stored, err := vector.BytesToFloat32Slice(embeddingBytes)
		if err != nil {
			return nil, errortypes.DatabaseError(err, "failed to decode stored vector").
				WithField("id", id)
		}

		similarity, err := vector.CosineSimilarity(queryVector, stored)
		if err != nil {
			return nil, errortypes.DatabaseError(err, "failed to score stored vector").
				WithField("id", id)
		}

		var meta schema.RecordMetadata
		if err := json.Unmarshal([]byte(stmt.ColumnText(2)), &meta); err != nil {
			return nil, errortypes.DatabaseError(err, "failed to decode metadata document").
				WithField("id", id)
		}

		hits = append(hits, schema.SearchHit{
			ID:       id,
			Score:    float32(similarity),
			Metadata: meta,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}

	return hits, nil
}

// Stats counts the stored records and reports the fixed local layout.
func (s *SQLiteStore) Stats(_ context.Context) (schema.CollectionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats schema.CollectionStats

	stmt, err := s.conn.Prepare(`SELECT COUNT(*) FROM records;`)
	if err != nil {
		return stats, errortypes.DatabaseError(err, "failed to prepare count statement")
	}
	defer stmt.Reset()

	hasRow, err := stmt.Step()
	if err != nil || !hasRow {
		return stats, errortypes.DatabaseError(err, "failed to count records")
	}
	count := stmt.ColumnInt64(0)

	stats = schema.CollectionStats{
		CollectionName:   schema.CollectionName,
		Description:      schema.CollectionDescription,
		IsEmpty:          count == 0,
		TotalVectors:     count,
		PrimaryField:     schema.FieldID,
		PrimaryFieldType: "Int64",
		Partitions:       []string{"_default"},
		Indexes: []schema.IndexStats{
			{
				FieldName:  schema.FieldVector,
				IndexType:  "FLAT",
				MetricType: "COSINE",
				Params:     map[string]string{},
			},
		},
	}

	return stats, nil
}
