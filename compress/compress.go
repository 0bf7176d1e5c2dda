// Package compress provides optional upload-time compression of staging files.
//
// Staging files are always written uncompressed. When compression is enabled
// the upload path streams each file through an encoder and appends the
// algorithm's extension to the remote key.
package compress

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm defines the compression algorithm used.
type Algorithm uint8

const (
	// None uploads files as written.
	None Algorithm = 0
	// LZ4 uses the LZ4 frame format (fast, moderate ratio).
	LZ4 Algorithm = 1
	// ZSTD uses Zstandard (better ratio, good default for logs).
	ZSTD Algorithm = 2
)

// ErrUnknownAlgorithm is returned for unrecognized algorithm names or values.
var ErrUnknownAlgorithm = errors.New("compress: unknown algorithm")

// Parse returns the algorithm named s ("", "none", "lz4", "zstd").
func Parse(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd", "zst":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Algorithm(%d)", uint8(a))
	}
}

// Extension returns the suffix appended to remote keys.
func (a Algorithm) Extension() string {
	switch a {
	case LZ4:
		return ".lz4"
	case ZSTD:
		return ".zst"
	default:
		return ""
	}
}

// ZSTD encoder pool; encoders are expensive to allocate.
var zstdEncoderPool sync.Pool

func getZstdEncoder(w io.Writer) (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		enc := v.(*zstd.Encoder)
		enc.Reset(w)
		return enc, nil
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

type zstdWriter struct {
	*zstd.Encoder
	once sync.Once
	err  error
}

func (z *zstdWriter) Close() error {
	z.once.Do(func() {
		z.err = z.Encoder.Close()
		zstdEncoderPool.Put(z.Encoder)
	})
	return z.err
}

// NewWriter returns a WriteCloser that compresses into w.
// Close flushes the final frame but does not close w.
func NewWriter(a Algorithm, w io.Writer) (io.WriteCloser, error) {
	switch a {
	case None:
		return nopWriteCloser{w}, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case ZSTD:
		enc, err := getZstdEncoder(w)
		if err != nil {
			return nil, err
		}
		return &zstdWriter{Encoder: enc}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, a)
	}
}

// NewReader returns a ReadCloser that decompresses r.
func NewReader(a Algorithm, r io.Reader) (io.ReadCloser, error) {
	switch a {
	case None:
		return io.NopCloser(r), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case ZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, a)
	}
}

// Reader returns a reader yielding the compressed form of src.
// Compression runs in a goroutine feeding a pipe; closing the returned reader
// stops it. For None, src is returned unchanged.
func Reader(a Algorithm, src io.Reader) (io.ReadCloser, error) {
	if a == None {
		return io.NopCloser(src), nil
	}

	pr, pw := io.Pipe()
	w, err := NewWriter(a, pw)
	if err != nil {
		return nil, err
	}

	go func() {
		_, err := io.Copy(w, src)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		_ = pw.CloseWithError(err)
	}()

	return pr, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
