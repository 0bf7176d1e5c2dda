// Package codec turns records into the bytes appended to staging files.
//
// Every encoded record ends with exactly one newline so staging files are
// line-oriented regardless of the codec.
package codec

import "fmt"

// Codec encodes records.
// Implementations must be safe for concurrent use.
type Codec interface {
	Encode(v any) ([]byte, error)
	Name() string
}

// Default is the codec used when none is configured.
var Default Codec = Line{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "", "line":
		return Line{}, true
	case "json", "json_lines":
		return JSON{}, true
	default:
		return nil, false
	}
}

// MustEncode is a helper for tests and examples.
func MustEncode(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Encode(v)
	if err != nil {
		panic(fmt.Errorf("codec %s encode failed: %w", c.Name(), err))
	}
	return b
}

func terminate(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		return b
	}
	return append(b, '\n')
}
