package storage

import (
	"github.com/bobboyms/tablestore/pkg/catalog"
	"github.com/rs/zerolog"
)

// DefaultDataObjectSize is the number of rows buffered per table before a
// data object is cut. Larger values reduce blob count; smaller values reduce
// the memory high-water mark during long transactions.
const DefaultDataObjectSize = 64 * 1024

// Options configures a Client.
type Options struct {
	// Rows buffered per table before an automatic flush.
	DataObjectSize int

	// Codec for log entries and data objects. A store is written and read
	// with the same codec.
	Codec catalog.Codec

	// StrictArity rejects rows whose length differs from the table's column
	// list. Off by default: rows are opaque tuples and the log format does
	// not care.
	StrictArity bool

	// Logger for operation-level events.
	Logger zerolog.Logger
}

// DefaultOptions returns a safe configuration.
func DefaultOptions() Options {
	return Options{
		DataObjectSize: DefaultDataObjectSize,
		Codec:          catalog.NewJSONCodec(),
		Logger:         zerolog.Nop(),
	}
}
