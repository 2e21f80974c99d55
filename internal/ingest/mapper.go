// Package ingest maps external line-delimited JSON records onto the
// collection schema and batches them into storage writes.
package ingest

import (
	"encoding/json"

	"github.com/ErykVaughn/vector-database/internal/errortypes"
	"github.com/ErykVaughn/vector-database/internal/schema"
)

// sourceRecord is the external NDJSON shape. Any key may be absent and
// defaults to the empty string.
type sourceRecord struct {
	FirstName string `json:"FIRST_NAME"`
	LastName  string `json:"LAST_NAME"`
	Address   string `json:"ADDRESS"`
	Email     string `json:"EMAIL"`
	Phone     string `json:"PHONE"`
}

// MapLine converts one NDJSON line to the collection's metadata shape.
// Name is FIRST_NAME and LAST_NAME joined with a single space, even when
// one part is missing. Malformed JSON returns a validation error, which
// fails the whole upload request.
func MapLine(line []byte) (schema.RecordMetadata, error) {
	var src sourceRecord
	if err := json.Unmarshal(line, &src); err != nil {
		return schema.RecordMetadata{}, errortypes.ValidationError(err, "malformed NDJSON line")
	}

	return schema.RecordMetadata{
		Name:        src.FirstName + " " + src.LastName,
		Address:     src.Address,
		Email:       src.Email,
		PhoneNumber: src.Phone,
	}, nil
}
