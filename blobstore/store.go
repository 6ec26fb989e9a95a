// Package blobstore abstracts where index snapshots live.
//
// A Store holds immutable named blobs. The local and in-memory stores cover
// single-machine use; the s3 and minio subpackages store snapshots in object
// storage so an index built once can be loaded anywhere.
package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a named blob does not exist.
//
// Implementations must return an error that satisfies
// errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("blobstore: blob not found")

// Store is an abstraction for storing and retrieving immutable blobs.
//
// Implementations must be safe for concurrent use. Put overwrites an
// existing blob of the same name; readers opened before the overwrite keep
// seeing the old content or fail cleanly, never a mix.
type Store interface {
	// Put stores the contents of r under name.
	Put(ctx context.Context, name string, r io.Reader) error

	// Get opens the named blob for reading. The caller must close the
	// returned reader.
	Get(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes the named blob. Deleting a missing blob is not an
	// error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
