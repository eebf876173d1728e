package objectstore

import (
	"bytes"
	"fmt"

	"github.com/bobboyms/tablestore/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var bucketObjects = []byte("objects")

// BoltStorage keeps blobs in a single BoltDB bucket. Bolt runs one write
// transaction at a time, so the existence check and the put inside Update
// form an atomic create-exclusive, the same contract a UNIQUE constraint
// gives on a relational backend.
type BoltStorage struct {
	db *bolt.DB
}

// NewBoltStorage opens (or creates) a bolt-backed store at path.
func NewBoltStorage(path string) (*BoltStorage, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketObjects)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStorage{db: db}, nil
}

// Close closes the database.
func (s *BoltStorage) Close() error {
	return s.db.Close()
}

func (s *BoltStorage) PutIfAbsent(name string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketObjects)
		if b.Get([]byte(name)) != nil {
			return &errors.ObjectExistsError{Name: name}
		}
		return b.Put([]byte(name), data)
	})
}

func (s *BoltStorage) ListPrefix(prefix string) ([]string, error) {
	names := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketObjects).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			names = append(names, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (s *BoltStorage) Read(name string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketObjects).Get([]byte(name))
		if v == nil {
			return &errors.ObjectNotFoundError{Name: name}
		}
		// Bolt memory is only valid inside the transaction
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
