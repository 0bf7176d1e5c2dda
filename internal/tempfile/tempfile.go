package tempfile

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hupe1980/logpool/internal/fs"
)

// File is an append-only staging file.
type File struct {
	path    string
	f       fs.File
	size    int64
	created time.Time
	seq     int
}

// Create opens a new staging file. It fails with an error satisfying
// errors.Is(err, os.ErrExist) if path is already present, so a file left by a
// previous run is never appended to. A nil fsys means the local filesystem.
func Create(fsys fs.FileSystem, path string, seq int, now time.Time) (*File, error) {
	f, err := fs.Or(fsys).OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, err
	}
	return &File{
		path:    path,
		f:       f,
		created: now,
		seq:     seq,
	}, nil
}

// Write appends p and accounts for the bytes actually written.
func (t *File) Write(p []byte) (int, error) {
	if t.f == nil {
		return 0, os.ErrClosed
	}
	n, err := t.f.Write(p)
	t.size += int64(n)
	return n, err
}

// Size returns the number of bytes written since the file was opened.
func (t *File) Size() int64 { return t.size }

// Age returns the time elapsed since the file was opened.
func (t *File) Age(now time.Time) time.Duration { return now.Sub(t.created) }

// Created returns the creation time.
func (t *File) Created() time.Time { return t.created }

// Seq returns the rotation sequence number.
func (t *File) Seq() int { return t.seq }

// Path returns the file path.
func (t *File) Path() string { return t.path }

// Sync flushes the file to stable storage.
func (t *File) Sync() error {
	if t.f == nil {
		return os.ErrClosed
	}
	return t.f.Sync()
}

// Close syncs and closes the handle. Calling Close twice is a no-op.
func (t *File) Close() error {
	if t.f == nil {
		return nil
	}
	f := t.f
	t.f = nil
	syncErr := f.Sync()
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", t.path, err)
	}
	if syncErr != nil && !errors.Is(syncErr, os.ErrClosed) {
		return fmt.Errorf("sync %s: %w", t.path, syncErr)
	}
	return nil
}
