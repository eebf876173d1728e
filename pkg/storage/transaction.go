package storage

import (
	"github.com/bobboyms/tablestore/pkg/catalog"
)

// Transaction holds the state of one optimistic transaction: the snapshot of
// committed history taken when it was opened, the actions and rows staged
// locally, and the tables visible to it (snapshot tables plus locally created
// ones).
//
// A Transaction is exclusively owned by the Client that opened it and is
// consumed by commit or discarded on conflict. It is not safe for concurrent
// use.
type Transaction struct {
	Id uint64

	// previousActions reflect the snapshot taken when the transaction was
	// opened. They are never updated mid-transaction, even if other clients
	// commit concurrently.
	previousActions map[string][]catalog.Action

	// actions staged by this transaction, appended at flush and create-table
	// time, published as a single log entry at commit.
	actions map[string][]catalog.Action

	// tables maps each visible table to its column list. Last writer wins on
	// the column list during replay.
	tables map[string][]string

	// unflushed buffers rows per table until a data object is cut.
	unflushed map[string][]catalog.Row
}

func newTransaction(id uint64) *Transaction {
	return &Transaction{
		Id:              id,
		previousActions: make(map[string][]catalog.Action),
		actions:         make(map[string][]catalog.Action),
		tables:          make(map[string][]string),
		unflushed:       make(map[string][]catalog.Row),
	}
}

// wrote reports whether the transaction staged any action. A transaction
// that wrote nothing commits as a no-op without publishing a log entry.
func (tx *Transaction) wrote() bool {
	for _, actions := range tx.actions {
		if len(actions) > 0 {
			return true
		}
	}
	return false
}
