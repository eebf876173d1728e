package catalog

import (
	"fmt"

	"github.com/bobboyms/tablestore/pkg/errors"
	"github.com/google/uuid"
)

// Persisted namespace. Log ids are zero-padded to 20 digits so that
// lexicographic order of the names equals numeric order of the ids.
const (
	LogPrefix   = "_log_"
	TablePrefix = "_table_"
)

// Row is an ordered tuple of opaque scalar values. The core does not
// interpret them; arity matches the table's column count at write time only
// if the caller opts into strict validation.
type Row []any

// DataobjectAction registers a flushed data object with a table.
type DataobjectAction struct {
	Name  string `json:"Name" bson:"Name"`
	Table string `json:"Table" bson:"Table"`
}

// ChangeMetadataAction declares (or replaces) a table's column list.
type ChangeMetadataAction struct {
	Table   string   `json:"Table" bson:"Table"`
	Columns []string `json:"Columns" bson:"Columns"`
}

// Action is a tagged variant: exactly one of the two sub-actions is set.
// An action document with zero or multiple tags fails Validate, and replay
// refuses to proceed rather than silently skip.
type Action struct {
	AddDataobject  *DataobjectAction     `json:"AddDataobject,omitempty" bson:"AddDataobject,omitempty"`
	ChangeMetadata *ChangeMetadataAction `json:"ChangeMetadata,omitempty" bson:"ChangeMetadata,omitempty"`
}

// Validate checks the exactly-one-tag invariant.
func (a *Action) Validate(table string) error {
	set := 0
	if a.AddDataobject != nil {
		set++
	}
	if a.ChangeMetadata != nil {
		set++
	}
	if set != 1 {
		return &errors.UnknownActionError{Table: table}
	}
	return nil
}

// LogEntry is one blob per committed transaction: the ordered actions it
// performed, keyed by table. Ids are strictly monotonic across the log.
type LogEntry struct {
	Id      uint64              `json:"Id" bson:"Id"`
	Actions map[string][]Action `json:"Actions" bson:"Actions"`
}

// Validate checks every action document in the entry.
func (e *LogEntry) Validate() error {
	for table, actions := range e.Actions {
		for i := range actions {
			if err := actions[i].Validate(table); err != nil {
				return err
			}
		}
	}
	return nil
}

// DataObject is an immutable batch of rows for one table. Len equals
// len(Data) and sizes iteration without materializing the list twice.
type DataObject struct {
	Table string `json:"Table" bson:"Table"`
	Name  string `json:"Name" bson:"Name"`
	Data  []Row  `json:"Data" bson:"Data"`
	Len   int    `json:"Len" bson:"Len"`
}

// LogEntryName builds the blob name for a log id.
func LogEntryName(id uint64) string {
	return fmt.Sprintf("%s%020d", LogPrefix, id)
}

// DataObjectName builds the blob name for a table's data object.
func DataObjectName(table, name string) string {
	return fmt.Sprintf("%s%s_%s", TablePrefix, table, name)
}

// NewObjectID generates a random data-object name. Collisions are treated
// as fatal by callers; the uuid space is effectively unique.
func NewObjectID() string {
	return uuid.NewString()
}
