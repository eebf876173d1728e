package catalog

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// BSONCodec persists the same envelope in BSON. Useful when the backing
// store is shared with BSON tooling; the in-memory result is identical to
// the JSON codec after normalization.
type BSONCodec struct{}

func NewBSONCodec() *BSONCodec {
	return &BSONCodec{}
}

func (c *BSONCodec) EncodeLogEntry(entry *LogEntry) ([]byte, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return bson.Marshal(entry)
}

func (c *BSONCodec) DecodeLogEntry(data []byte) (*LogEntry, error) {
	var entry LogEntry
	if err := bson.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode log entry: %w", err)
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *BSONCodec) EncodeDataObject(obj *DataObject) ([]byte, error) {
	return bson.Marshal(obj)
}

func (c *BSONCodec) DecodeDataObject(data []byte) (*DataObject, error) {
	var obj DataObject
	if err := bson.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode data object: %w", err)
	}
	normalizeRows(obj.Data)
	return &obj, nil
}
