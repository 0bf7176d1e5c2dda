package logpool

import (
	"errors"
	"fmt"

	"github.com/hupe1980/logpool/internal/upload"
)

var (
	// ErrConfiguration is returned by Open for invalid settings. Use errors.As
	// with *ConfigError for the offending field.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrFilesystem wraps failures writing, creating or closing staging files.
	ErrFilesystem = errors.New("staging filesystem error")

	// ErrUpload wraps failures reported by the remote store. Upload errors are
	// logged and counted; they never fail Receive.
	ErrUpload = upload.ErrUpload

	// ErrClosed is returned when an operation is attempted on a closed engine.
	ErrClosed = errors.New("engine closed")
)

// ConfigError describes a rejected setting.
//
// It matches ErrConfiguration with errors.Is; the underlying cause (if any)
// is reachable via errors.Is/As as well.
type ConfigError struct {
	Field  string
	Reason string
	cause  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrConfiguration}
	}
	return []error{ErrConfiguration, e.cause}
}

func configError(field, reason string, cause error) error {
	return &ConfigError{Field: field, Reason: reason, cause: cause}
}

func filesystemError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrFilesystem, op, path, err)
}
