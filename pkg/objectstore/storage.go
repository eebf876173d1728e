package objectstore

// Storage is a flat namespace of immutable blobs. All durability and
// concurrency guarantees of the store reduce to the atomicity of PutIfAbsent:
// once it returns success, the blob is visible to every later ListPrefix and
// Read in the system.
type Storage interface {
	// PutIfAbsent creates the blob atomically. Returns
	// *errors.ObjectExistsError if a blob of that name exists. On any other
	// failure no partially visible blob of that name may remain.
	PutIfAbsent(name string, data []byte) error

	// ListPrefix returns all names with the given prefix. Order is
	// unspecified; callers sort.
	ListPrefix(prefix string) ([]string, error)

	// Read returns the full blob, or *errors.ObjectNotFoundError if absent.
	Read(name string) ([]byte, error)
}
