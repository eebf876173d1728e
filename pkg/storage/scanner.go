package storage

import (
	"io"

	"github.com/bobboyms/tablestore/pkg/catalog"
	"github.com/bobboyms/tablestore/pkg/errors"
	"github.com/bobboyms/tablestore/pkg/metrics"
)

// Scanner is a lazy, forward-only cursor over a table's rows. It yields the
// transaction's unflushed rows first, in insertion order, then the rows of
// every data object referenced by the snapshot actions followed by the local
// actions, in that list order. Data objects are read one at a time on demand.
//
// The cursor ALIASES the unflushed buffer: it reads it through the
// transaction on every Next, so rows appended during iteration are visible.
// The data-object list is fixed when the scan is opened.
type Scanner struct {
	client *Client
	tx     *Transaction
	table  string

	objects      []string
	unflushedPos int
	objPos       int
	current      *catalog.DataObject
	rowPos       int
}

// Scan opens a cursor over the table. A table absent from the transaction's
// catalog yields an empty sequence unless snapshot actions reference data
// objects for it.
//
// Cursors are independent of commit: a reader that opened its transaction
// before a writer committed keeps observing its own snapshot.
func (c *Client) Scan(table string) (*Scanner, error) {
	if c.tx == nil {
		return nil, &errors.NoTransactionError{}
	}

	all := c.tx.previousActions[table]
	all = append(all[:len(all):len(all)], c.tx.actions[table]...)

	objects := []string{}
	for _, action := range all {
		if action.AddDataobject != nil {
			objects = append(objects, action.AddDataobject.Name)
		}
	}

	metrics.ScansStarted.Inc()
	return &Scanner{
		client:  c,
		tx:      c.tx,
		table:   table,
		objects: objects,
	}, nil
}

// Next returns the next row, or io.EOF when the scan is exhausted.
func (s *Scanner) Next() (catalog.Row, error) {
	buffer := s.tx.unflushed[s.table]
	if s.unflushedPos < len(buffer) {
		row := buffer[s.unflushedPos]
		s.unflushedPos++
		return row, nil
	}

	// Advance to the next data object holding rows
	for s.current == nil || s.rowPos >= s.current.Len {
		if s.objPos >= len(s.objects) {
			return nil, io.EOF
		}

		name := s.objects[s.objPos]
		data, err := s.client.store.Read(catalog.DataObjectName(s.table, name))
		if err != nil {
			return nil, err
		}
		obj, err := s.client.opts.Codec.DecodeDataObject(data)
		if err != nil {
			return nil, err
		}

		s.current = obj
		s.objPos++
		s.rowPos = 0
	}

	row := s.current.Data[s.rowPos]
	s.rowPos++
	return row, nil
}

// Collect drains the cursor into a slice.
func (s *Scanner) Collect() ([]catalog.Row, error) {
	rows := []catalog.Row{}
	for {
		row, err := s.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
