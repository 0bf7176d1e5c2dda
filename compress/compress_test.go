package compress

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
	}{
		{"", None},
		{"none", None},
		{"LZ4", LZ4},
		{"zstd", ZSTD},
		{"zst", ZSTD},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := Parse("gzip")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "", None.Extension())
	assert.Equal(t, ".lz4", LZ4.Extension())
	assert.Equal(t, ".zst", ZSTD.Extension())
	assert.Equal(t, "zstd", ZSTD.String())
}

func TestReader(t *testing.T) {
	payload := strings.Repeat("2026-10-19T10:00:00Z host app: request served\n", 500)

	for _, a := range []Algorithm{None, LZ4, ZSTD} {
		t.Run(a.String(), func(t *testing.T) {
			cr, err := Reader(a, strings.NewReader(payload))
			require.NoError(t, err)

			compressed, err := io.ReadAll(cr)
			require.NoError(t, err)
			require.NoError(t, cr.Close())

			if a != None {
				assert.Less(t, len(compressed), len(payload))
			}

			dr, err := NewReader(a, bytes.NewReader(compressed))
			require.NoError(t, err)
			defer dr.Close()

			got, err := io.ReadAll(dr)
			require.NoError(t, err)
			assert.Equal(t, payload, string(got))
		})
	}
}

func TestZstdWriterReuse(t *testing.T) {
	for i := 0; i < 3; i++ {
		var buf bytes.Buffer
		w, err := NewWriter(ZSTD, &buf)
		require.NoError(t, err)
		_, err = w.Write([]byte("line\n"))
		require.NoError(t, err)
		require.NoError(t, w.Close())
		require.NoError(t, w.Close())

		r, err := NewReader(ZSTD, &buf)
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "line\n", string(got))
		r.Close()
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	_, err := NewWriter(Algorithm(9), io.Discard)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	_, err = NewReader(Algorithm(9), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}
