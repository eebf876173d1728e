package objectstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bobboyms/tablestore/pkg/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FileStorage keeps each blob as a flat file under a base directory.
// PutIfAbsent relies on os.Link failing when the target name exists, which is
// atomic on POSIX filesystems: the blob either appears fully written under
// its final name or not at all.
type FileStorage struct {
	basedir string
	logger  zerolog.Logger
	mu      sync.Mutex
}

// Options configures FileStorage.
type Options struct {
	// Base directory for blob files. Created if missing.
	Dir string

	// Logger for backend debug events.
	Logger zerolog.Logger
}

// DefaultOptions returns a safe configuration.
func DefaultOptions() Options {
	return Options{
		Dir:    "./tablestore_data",
		Logger: zerolog.Nop(),
	}
}

// NewFileStorage opens a file-backed store at dir with default options.
func NewFileStorage(dir string) (*FileStorage, error) {
	opts := DefaultOptions()
	opts.Dir = dir
	return NewFileStorageWithOptions(opts)
}

func NewFileStorageWithOptions(opts Options) (*FileStorage, error) {
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStorage{
		basedir: opts.Dir,
		logger:  opts.Logger,
	}, nil
}

// PutIfAbsent writes data to a temporary file, then links it to the final
// name. The link fails on collision; the temporary is unlinked on every path.
func (fs *FileStorage) PutIfAbsent(name string, data []byte) error {
	// The mutex serializes this store's own bookkeeping only; the protocol
	// does not require it. The atomicity guarantee comes from os.Link.
	fs.mu.Lock()
	defer fs.mu.Unlock()

	tmpname := filepath.Join(fs.basedir, uuid.NewString())
	if err := os.WriteFile(tmpname, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	defer os.Remove(tmpname)

	filename := filepath.Join(fs.basedir, name)
	if err := os.Link(tmpname, filename); err != nil {
		if os.IsExist(err) {
			fs.logger.Debug().Str("name", name).Msg("put-if-absent collision")
			return &errors.ObjectExistsError{Name: name}
		}
		return fmt.Errorf("failed to link %s: %w", name, err)
	}

	fs.logger.Debug().Str("name", name).Int("bytes", len(data)).Msg("blob created")
	return nil
}

func (fs *FileStorage) ListPrefix(prefix string) ([]string, error) {
	entries, err := os.ReadDir(fs.basedir)
	if err != nil {
		return nil, fmt.Errorf("failed to list store directory: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (fs *FileStorage) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(fs.basedir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.ObjectNotFoundError{Name: name}
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
