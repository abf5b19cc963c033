// Package serializer defines the wire-encoding contract used by transports,
// plus a JSON implementation.
// file: internal/serializer/serializer.go
package serializer

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Serializer converts between a generic dict-shaped payload and wire bytes.
type Serializer interface {
	// Encode converts a dict-shaped payload into bytes for transport.
	Encode(payload map[string]interface{}) ([]byte, error)
	// Decode converts wire bytes back into a dict-shaped payload.
	Decode(data []byte) (map[string]interface{}, error)
	// MIMEType identifies the wire format for transport-level metadata, the
	// same role pysoa.common.serializer's mime_type property plays.
	MIMEType() string
}

// JSONSerializer is the default Serializer, encoding/decoding via
// encoding/json the same way the original's JSONSerializer wraps msgpack/json.
type JSONSerializer struct{}

// NewJSONSerializer constructs a JSONSerializer.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

// Encode implements Serializer.
func (s *JSONSerializer) Encode(payload map[string]interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "JSONSerializer.Encode")
	}
	return data, nil
}

// Decode implements Serializer.
func (s *JSONSerializer) Decode(data []byte) (map[string]interface{}, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.Wrap(err, "JSONSerializer.Decode")
	}
	return payload, nil
}

// MIMEType implements Serializer.
func (s *JSONSerializer) MIMEType() string {
	return "application/json"
}
