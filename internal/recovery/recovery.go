// Package recovery finds staging files left behind by a previous run and
// hands them back to the upload path.
package recovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/logpool/internal/fs"
)

// Scanner lists recoverable staging files in a directory.
type Scanner struct {
	// Dir is scanned non-recursively.
	Dir string
	// Extension selects staging files (e.g. ".txt").
	Extension string
	// Exclude reports paths that must be skipped, such as the file the
	// engine is currently writing.
	Exclude func(path string) bool
	// FS defaults to the local filesystem.
	FS fs.FileSystem
}

// Scan returns the matching regular files in Dir, sorted by name.
// A missing directory yields no files.
func (s *Scanner) Scan() ([]string, error) {
	entries, err := fs.Or(s.FS).ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if !strings.HasSuffix(e.Name(), s.Extension) {
			continue
		}
		p := filepath.Join(s.Dir, e.Name())
		if s.Exclude != nil && s.Exclude(p) {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// Resubmit queues every recovered file through submit and returns how many
// were handed over. Submission stops at the first error.
func (s *Scanner) Resubmit(submit func(path string) error) (int, error) {
	paths, err := s.Scan()
	if err != nil {
		return 0, err
	}
	for i, p := range paths {
		if err := submit(p); err != nil {
			return i, err
		}
	}
	return len(paths), nil
}

// ResubmitSync uploads every recovered file through submit, running at most
// limit at once, and waits for all of them. Individual failures do not stop
// the pass; they are joined into the returned error.
func (s *Scanner) ResubmitSync(ctx context.Context, submit func(ctx context.Context, path string) error, limit int) (int, error) {
	paths, err := s.Scan()
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	errs := make([]error, len(paths))
	for i, p := range paths {
		g.Go(func() error {
			errs[i] = submit(gctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return len(paths), errors.Join(errs...)
}
