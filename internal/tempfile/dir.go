package tempfile

import (
	"errors"
	"fmt"

	"github.com/hupe1980/logpool/internal/fs"
)

// ErrNotDirectory is returned when the staging path exists but is not a
// directory.
var ErrNotDirectory = errors.New("not a directory")

// ErrNotWritable is returned when the staging directory cannot be written.
var ErrNotWritable = errors.New("directory not writable")

// EnsureDir creates dir if needed and verifies it is a writable directory.
// A nil fsys means the local filesystem.
func EnsureDir(fsys fs.FileSystem, dir string) error {
	fsys = fs.Or(fsys)
	if err := fsys.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	info, err := fsys.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}
	if err := checkWritable(dir); err != nil {
		return fmt.Errorf("%s: %w: %w", dir, ErrNotWritable, err)
	}
	return nil
}
