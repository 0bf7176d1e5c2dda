package naming

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// Prefix is the logical prefix of every staging file name.
	Prefix = "ls.logpool."

	// Extension is the staging file extension. Recovery only picks up files
	// carrying it.
	Extension = ".txt"

	// timeLayout truncates to minute granularity.
	timeLayout = "2006-01-02T15.04"
)

// Namer builds staging file names for one engine instance.
type Namer struct {
	dir  string
	host string
	tags []string
	now  func() time.Time
}

// New creates a Namer. An empty host falls back to os.Hostname and a nil clock
// to the UTC wall clock.
func New(dir, host string, tags []string, now func() time.Time) *Namer {
	if host == "" {
		host = Hostname()
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Namer{
		dir:  NormalizeDir(dir),
		host: host,
		tags: append([]string(nil), tags...),
		now:  now,
	}
}

// Name returns the base name of the staging file for the given sequence number.
func (n *Namer) Name(seq int) string {
	var b strings.Builder
	b.WriteString(Prefix)
	b.WriteString(n.host)
	b.WriteByte('.')
	b.WriteString(n.now().Format(timeLayout))
	b.WriteByte('.')
	if len(n.tags) > 0 {
		b.WriteString("tag_")
		b.WriteString(strings.Join(n.tags, "."))
		b.WriteByte('.')
	}
	b.WriteString("part")
	b.WriteString(strconv.Itoa(seq))
	b.WriteString(Extension)
	return b.String()
}

// Path returns the full staging path for the given sequence number.
func (n *Namer) Path(seq int) string {
	return n.dir + n.Name(seq)
}

// Dir returns the normalized staging directory, always ending in exactly one
// path separator.
func (n *Namer) Dir() string {
	return n.dir
}

// NormalizeDir cleans dir and appends a single trailing separator.
func NormalizeDir(dir string) string {
	if dir == "" {
		dir = "."
	}
	dir = filepath.Clean(dir)
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}

// Hostname returns the host identifier embedded in file names.
func Hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "localhost"
	}
	return h
}

// IsStagingFile reports whether name carries the staging extension.
func IsStagingFile(name string) bool {
	return strings.HasSuffix(name, Extension)
}
