package catalog

import (
	"bytes"
	"fmt"
	"math"

	json "github.com/goccy/go-json"
)

// Codec serializes log entries and data objects. Both built-in codecs emit
// the same self-describing key/value envelope; a store written with one codec
// is read back with the same codec.
type Codec interface {
	EncodeLogEntry(entry *LogEntry) ([]byte, error)
	DecodeLogEntry(data []byte) (*LogEntry, error)
	EncodeDataObject(obj *DataObject) ([]byte, error)
	DecodeDataObject(data []byte) (*DataObject, error)
}

// JSONCodec is the default codec. Numbers decode through UseNumber and are
// normalized so that integral values come back as int64 and everything else
// as float64, keeping integer rows intact across a round-trip.
type JSONCodec struct{}

func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

func (c *JSONCodec) EncodeLogEntry(entry *LogEntry) ([]byte, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(entry)
}

func (c *JSONCodec) DecodeLogEntry(data []byte) (*LogEntry, error) {
	var entry LogEntry
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode log entry: %w", err)
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *JSONCodec) EncodeDataObject(obj *DataObject) ([]byte, error) {
	return json.Marshal(obj)
}

func (c *JSONCodec) DecodeDataObject(data []byte) (*DataObject, error) {
	var obj DataObject
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("failed to decode data object: %w", err)
	}
	normalizeRows(obj.Data)
	return &obj, nil
}

// normalizeRows rewrites decoded scalar values into the canonical in-memory
// types: int64 for integral numbers, float64 otherwise. Both codecs apply it
// so decoded rows compare equal regardless of the wire format.
func normalizeRows(rows []Row) {
	for _, row := range rows {
		for i, v := range row {
			row[i] = normalizeValue(v)
		}
	}
}

func normalizeValue(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		f, err := n.Float64()
		if err != nil {
			return string(n)
		}
		return f
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
			return int64(n)
		}
		return n
	default:
		return v
	}
}
