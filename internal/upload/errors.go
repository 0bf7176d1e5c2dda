package upload

import "errors"

var (
	// ErrClosed is returned when a job is submitted after Close.
	ErrClosed = errors.New("upload dispatcher closed")

	// ErrUpload wraps failures reported by the remote store.
	ErrUpload = errors.New("upload failed")
)
