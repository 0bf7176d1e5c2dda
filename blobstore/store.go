package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when an object does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// UnknownSize is passed to Put when the body length is not known up front
// (e.g. compressed uploads).
const UnknownSize int64 = -1

// Store is the remote pool receiving finished staging files.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put uploads body under key. size is the exact body length or UnknownSize.
	Put(ctx context.Context, key string, body io.Reader, size int64) error

	// Exists reports whether key is present in the pool.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
