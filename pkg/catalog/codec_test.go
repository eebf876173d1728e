package catalog_test

import (
	"reflect"
	"testing"

	"github.com/bobboyms/tablestore/pkg/catalog"
	"github.com/bobboyms/tablestore/pkg/errors"
)

var codecs = map[string]catalog.Codec{
	"json": catalog.NewJSONCodec(),
	"bson": catalog.NewBSONCodec(),
}

func sampleEntry() *catalog.LogEntry {
	return &catalog.LogEntry{
		Id: 7,
		Actions: map[string][]catalog.Action{
			"x": {
				{ChangeMetadata: &catalog.ChangeMetadataAction{Table: "x", Columns: []string{"a", "b"}}},
				{AddDataobject: &catalog.DataobjectAction{Name: "obj-1", Table: "x"}},
			},
		},
	}
}

func sampleObject() *catalog.DataObject {
	return &catalog.DataObject{
		Table: "x",
		Name:  "obj-1",
		Data: []catalog.Row{
			{"Joey", int64(1)},
			{"Yue", int64(2)},
			{"Pi", 3.5},
		},
		Len: 3,
	}
}

func TestCodec_LogEntryRoundTrip(t *testing.T) {
	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			entry := sampleEntry()

			data, err := codec.EncodeLogEntry(entry)
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			decoded, err := codec.DecodeLogEntry(data)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}

			if !reflect.DeepEqual(entry, decoded) {
				t.Fatalf("round trip mismatch:\n want %+v\n got  %+v", entry, decoded)
			}
		})
	}
}

func TestCodec_DataObjectRoundTrip(t *testing.T) {
	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			obj := sampleObject()

			data, err := codec.EncodeDataObject(obj)
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			decoded, err := codec.DecodeDataObject(data)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}

			// Integral numbers come back as int64, everything else float64
			if !reflect.DeepEqual(obj, decoded) {
				t.Fatalf("round trip mismatch:\n want %+v\n got  %+v", obj, decoded)
			}
		})
	}
}

func TestCodec_Equivalence(t *testing.T) {
	obj := sampleObject()

	jsonBytes, err := codecs["json"].EncodeDataObject(obj)
	if err != nil {
		t.Fatalf("json encode failed: %v", err)
	}
	bsonBytes, err := codecs["bson"].EncodeDataObject(obj)
	if err != nil {
		t.Fatalf("bson encode failed: %v", err)
	}

	fromJSON, err := codecs["json"].DecodeDataObject(jsonBytes)
	if err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	fromBSON, err := codecs["bson"].DecodeDataObject(bsonBytes)
	if err != nil {
		t.Fatalf("bson decode failed: %v", err)
	}

	if !reflect.DeepEqual(fromJSON, fromBSON) {
		t.Fatalf("codecs disagree after normalization:\n json %+v\n bson %+v", fromJSON, fromBSON)
	}
}

func TestJSONCodec_UnknownActionTagIsFatal(t *testing.T) {
	raw := []byte(`{"Id":1,"Actions":{"x":[{"Frobnicate":{"Name":"n"}}]}}`)

	_, err := codecs["json"].DecodeLogEntry(raw)
	if err == nil {
		t.Fatalf("expected decode to fail on unknown action tag")
	}
	if _, ok := err.(*errors.UnknownActionError); !ok {
		t.Fatalf("expected UnknownActionError, got %T: %v", err, err)
	}
}

func TestJSONCodec_EncodeRejectsInvalidAction(t *testing.T) {
	entry := &catalog.LogEntry{
		Id: 1,
		Actions: map[string][]catalog.Action{
			"x": {{}},
		},
	}

	if _, err := codecs["json"].EncodeLogEntry(entry); err == nil {
		t.Fatalf("expected encode to reject untagged action")
	}
}
