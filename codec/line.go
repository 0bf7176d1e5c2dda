package codec

import (
	"fmt"

	gojson "github.com/goccy/go-json"
)

// Line writes textual records one per line.
//
// Strings, byte slices, errors and fmt.Stringers are written as-is. Any other
// value is rendered as a single JSON object so structured records never span
// several lines.
type Line struct{}

// Encode renders v as one newline-terminated line.
func (Line) Encode(v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return []byte("\n"), nil
	case string:
		return terminate([]byte(x)), nil
	case []byte:
		out := make([]byte, len(x), len(x)+1)
		copy(out, x)
		return terminate(out), nil
	case error:
		return terminate([]byte(x.Error())), nil
	case fmt.Stringer:
		return terminate([]byte(x.String())), nil
	}

	b, err := gojson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("line codec: %w", err)
	}
	return terminate(b), nil
}

// Name returns "line".
func (Line) Name() string { return "line" }
