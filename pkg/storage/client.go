package storage

import (
	"fmt"
	"sort"

	"github.com/bobboyms/tablestore/pkg/catalog"
	"github.com/bobboyms/tablestore/pkg/errors"
	"github.com/bobboyms/tablestore/pkg/log"
	"github.com/bobboyms/tablestore/pkg/metrics"
	"github.com/bobboyms/tablestore/pkg/objectstore"
)

// Client drives transactions against an object store. It holds at most one
// open transaction and is not safe for concurrent use from multiple
// goroutines; callers that share a Client must serialize externally.
// Distinct Clients (including on different hosts) are fully independent and
// coordinate only through the atomic name collision on log entries.
type Client struct {
	store objectstore.Storage
	opts  Options
	tx    *Transaction
}

// NewClient creates a client over the given store.
func NewClient(store objectstore.Storage, opts Options) *Client {
	if opts.DataObjectSize <= 0 {
		opts.DataObjectSize = DefaultDataObjectSize
	}
	if opts.Codec == nil {
		opts.Codec = catalog.NewJSONCodec()
	}
	return &Client{
		store: store,
		opts:  opts,
	}
}

// NewTx opens a transaction against a snapshot of committed history.
//
// The snapshot is built by replaying every committed log entry in id order;
// the new transaction's id is the maximum observed id plus one (1 on an empty
// log). Other clients committing after this point do not affect visibility
// for this transaction's scans.
func (c *Client) NewTx() error {
	if c.tx != nil {
		return &errors.ExistingTransactionError{}
	}

	names, err := c.store.ListPrefix(catalog.LogPrefix)
	if err != nil {
		return fmt.Errorf("failed to list log: %w", err)
	}
	// Zero-padded ids: lexicographic sort equals numeric order
	sort.Strings(names)

	tx := newTransaction(0)
	var maxID uint64

	for _, name := range names {
		data, err := c.store.Read(name)
		if err != nil {
			return fmt.Errorf("failed to read log entry %s: %w", name, err)
		}
		entry, err := c.opts.Codec.DecodeLogEntry(data)
		if err != nil {
			return fmt.Errorf("failed to replay %s: %w", name, err)
		}
		if entry.Id > maxID {
			maxID = entry.Id
		}

		for table, actions := range entry.Actions {
			for _, action := range actions {
				tx.previousActions[table] = append(tx.previousActions[table], action)
				if action.ChangeMetadata != nil {
					tx.tables[table] = action.ChangeMetadata.Columns
				}
			}
		}
		metrics.LogEntriesReplayed.Inc()
	}

	tx.Id = maxID + 1
	c.tx = tx

	metrics.TransactionsOpened.Inc()
	log.Tx(c.opts.Logger, tx.Id).Debug().Int("log_entries", len(names)).Msg("transaction opened")
	return nil
}

// CreateTable registers a new table with the given column list. Redefining
// the column list of an existing table is disallowed at the client surface
// even though the log format could represent it.
func (c *Client) CreateTable(table string, columns []string) error {
	if c.tx == nil {
		return &errors.NoTransactionError{}
	}
	if _, exists := c.tx.tables[table]; exists {
		return &errors.TableExistsError{Name: table}
	}

	c.tx.tables[table] = columns
	c.tx.actions[table] = append(c.tx.actions[table], catalog.Action{
		ChangeMetadata: &catalog.ChangeMetadataAction{Table: table, Columns: columns},
	})
	return nil
}

// WriteRow appends a row to the table's unflushed buffer. When the buffer
// reaches the configured data object size, a flush is triggered immediately.
func (c *Client) WriteRow(table string, row catalog.Row) error {
	if c.tx == nil {
		return &errors.NoTransactionError{}
	}
	columns, exists := c.tx.tables[table]
	if !exists {
		return &errors.NoSuchTableError{Name: table}
	}
	if c.opts.StrictArity && len(row) != len(columns) {
		return &errors.RowArityError{Table: table, Want: len(columns), Got: len(row)}
	}

	c.tx.unflushed[table] = append(c.tx.unflushed[table], row)

	if len(c.tx.unflushed[table]) >= c.opts.DataObjectSize {
		return c.FlushRows(table)
	}
	return nil
}

// FlushRows materializes the table's buffered rows as a data object and
// stages an AddDataobject action for it. Idempotent on empty buffers.
//
// A name collision here means the uuid generator produced a duplicate; that
// is treated as fatal and propagated unchanged.
func (c *Client) FlushRows(table string) error {
	if c.tx == nil {
		return &errors.NoTransactionError{}
	}

	data := c.tx.unflushed[table]
	if len(data) == 0 {
		return nil
	}

	rows := make([]catalog.Row, len(data))
	copy(rows, data)

	obj := &catalog.DataObject{
		Table: table,
		Name:  catalog.NewObjectID(),
		Data:  rows,
		Len:   len(rows),
	}
	payload, err := c.opts.Codec.EncodeDataObject(obj)
	if err != nil {
		return fmt.Errorf("failed to encode data object: %w", err)
	}

	if err := c.store.PutIfAbsent(catalog.DataObjectName(table, obj.Name), payload); err != nil {
		return err
	}

	c.tx.actions[table] = append(c.tx.actions[table], catalog.Action{
		AddDataobject: &catalog.DataobjectAction{Name: obj.Name, Table: table},
	})

	// Reset the buffer, keeping the key and backing array
	c.tx.unflushed[table] = data[:0]

	metrics.DataObjectsFlushed.Inc()
	metrics.RowsWritten.Add(float64(obj.Len))
	log.Table(c.opts.Logger, table).Debug().Str("object", obj.Name).Int("rows", obj.Len).Msg("data object flushed")
	return nil
}

// CommitTx publishes the transaction as one log entry.
//
// Pending rows are flushed first, so every data object a committed entry
// references is durable before the entry itself. If the transaction staged
// no actions it commits as a read-only no-op with no blob written. A name
// collision on the log entry means another transaction won this id: the
// transaction is dead, its staged state is discarded, and the caller gets
// ConcurrentCommitError. Any other store error leaves the transaction open
// so the commit may be retried.
func (c *Client) CommitTx() error {
	if c.tx == nil {
		return &errors.NoTransactionError{}
	}

	for table := range c.tx.tables {
		if err := c.FlushRows(table); err != nil {
			metrics.CommitsTotal.WithLabelValues(metrics.ResultError).Inc()
			return err
		}
	}

	if !c.tx.wrote() {
		c.tx = nil
		metrics.CommitsTotal.WithLabelValues(metrics.ResultOK).Inc()
		return nil
	}

	entry := &catalog.LogEntry{Id: c.tx.Id, Actions: c.tx.actions}
	payload, err := c.opts.Codec.EncodeLogEntry(entry)
	if err != nil {
		metrics.CommitsTotal.WithLabelValues(metrics.ResultError).Inc()
		return fmt.Errorf("failed to encode log entry: %w", err)
	}

	err = c.store.PutIfAbsent(catalog.LogEntryName(c.tx.Id), payload)
	switch err.(type) {
	case nil:
		log.Tx(c.opts.Logger, c.tx.Id).Debug().Msg("transaction committed")
		c.tx = nil
		metrics.CommitsTotal.WithLabelValues(metrics.ResultOK).Inc()
		return nil
	case *errors.ObjectExistsError:
		// First writer wins on the log id. This transaction is dead; data
		// objects it already flushed become orphans.
		id := c.tx.Id
		c.tx = nil
		metrics.CommitsTotal.WithLabelValues(metrics.ResultConflict).Inc()
		log.Tx(c.opts.Logger, id).Warn().Msg("commit lost log id race")
		return &errors.ConcurrentCommitError{Id: id}
	default:
		metrics.CommitsTotal.WithLabelValues(metrics.ResultError).Inc()
		return fmt.Errorf("failed to publish log entry: %w", err)
	}
}

// Tables returns the tables visible to the open transaction and their column
// lists: the union of snapshot tables and locally created ones.
func (c *Client) Tables() (map[string][]string, error) {
	if c.tx == nil {
		return nil, &errors.NoTransactionError{}
	}
	tables := make(map[string][]string, len(c.tx.tables))
	for name, columns := range c.tx.tables {
		tables[name] = append([]string(nil), columns...)
	}
	return tables, nil
}

// SnapshotActions returns the committed actions for a table as observed by
// the open transaction's snapshot, in log-id order.
func (c *Client) SnapshotActions(table string) ([]catalog.Action, error) {
	if c.tx == nil {
		return nil, &errors.NoTransactionError{}
	}
	return append([]catalog.Action(nil), c.tx.previousActions[table]...), nil
}

// TxID returns the id the open transaction will commit under.
func (c *Client) TxID() (uint64, error) {
	if c.tx == nil {
		return 0, &errors.NoTransactionError{}
	}
	return c.tx.Id, nil
}
