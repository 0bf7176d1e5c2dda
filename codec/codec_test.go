package codec

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringer struct{}

func (stringer) String() string { return "from stringer" }

func TestLine_Encode(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "hello", "hello\n"},
		{"already terminated", "hello\n", "hello\n"},
		{"bytes", []byte("raw"), "raw\n"},
		{"error", errors.New("boom"), "boom\n"},
		{"stringer", stringer{}, "from stringer\n"},
		{"map", map[string]any{"a": 1}, "{\"a\":1}\n"},
		{"nil", nil, "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Line{}.Encode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestLine_DoesNotAliasInput(t *testing.T) {
	in := make([]byte, 3, 16)
	copy(in, "abc")
	out, err := Line{}.Encode(in)
	require.NoError(t, err)
	out[0] = 'x'
	assert.Equal(t, "abc", string(in))
}

func TestJSON_Encode(t *testing.T) {
	type event struct {
		Message string    `json:"message"`
		At      time.Time `json:"@timestamp"`
	}
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	b, err := JSON{}.Encode(event{Message: "hi", At: at})
	require.NoError(t, err)
	assert.Equal(t, `{"message":"hi","@timestamp":"2026-10-19T12:00:00Z"}`+"\n", string(b))

	_, err = JSON{}.Encode(make(chan int))
	assert.Error(t, err)
}

func TestByName(t *testing.T) {
	c, ok := ByName("line")
	require.True(t, ok)
	assert.Equal(t, "line", c.Name())

	c, ok = ByName("json")
	require.True(t, ok)
	assert.Equal(t, "json", c.Name())

	_, ok = ByName("msgpack")
	assert.False(t, ok)
}

func TestMustEncode(t *testing.T) {
	assert.Equal(t, "x\n", string(MustEncode(nil, "x")))
	assert.Panics(t, func() { MustEncode(JSON{}, func() {}) })
}
