package codec

import gojson "github.com/goccy/go-json"

// JSON writes each record as one JSON document per line (JSON Lines),
// backed by github.com/goccy/go-json.
type JSON struct{}

// Encode marshals v and appends a newline.
func (JSON) Encode(v any) ([]byte, error) {
	b, err := gojson.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Name returns "json".
func (JSON) Name() string { return "json" }
