package resource

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Uploads(t *testing.T) {
	c := NewController(Config{MaxUploads: 2})

	require.NoError(t, c.AcquireUpload(context.Background()))
	require.NoError(t, c.AcquireUpload(context.Background()))
	assert.Equal(t, int64(2), c.InFlight())

	// Try 3rd
	assert.False(t, c.TryAcquireUpload())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireUpload(ctx), context.DeadlineExceeded)

	c.ReleaseUpload()
	assert.Equal(t, int64(1), c.InFlight())

	assert.True(t, c.TryAcquireUpload())
}

func TestController_DefaultsToOneSlot(t *testing.T) {
	c := NewController(Config{})
	assert.Equal(t, int64(1), c.Config().MaxUploads)
	assert.True(t, c.TryAcquireUpload())
	assert.False(t, c.TryAcquireUpload())
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	require.NoError(t, c.AcquireUpload(context.Background()))
	assert.True(t, c.TryAcquireUpload())
	c.ReleaseUpload()
	assert.Equal(t, int64(0), c.InFlight())
	require.NoError(t, c.AcquireBandwidth(context.Background(), 1<<20))
	assert.Equal(t, 0, c.Burst())
}

func TestRateLimitedReader(t *testing.T) {
	c := NewController(Config{MaxUploads: 1, BandwidthBytesPerSec: 16})
	assert.Equal(t, 16, c.Burst())

	src := strings.Repeat("x", 64)
	r := NewRateLimitedReader(context.Background(), strings.NewReader(src), c)

	buf := make([]byte, 1024)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.LessOrEqual(t, n, 16)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, len(src), n+len(rest))
}

func TestRateLimitedReader_Canceled(t *testing.T) {
	c := NewController(Config{MaxUploads: 1, BandwidthBytesPerSec: 1})

	ctx, cancel := context.WithCancel(context.Background())
	r := NewRateLimitedReader(ctx, bytes.NewReader(make([]byte, 8)), c)

	// Drain the initial burst, then cancel the wait for the next token.
	_, err := r.Read(make([]byte, 1))
	require.NoError(t, err)
	cancel()

	_, err = io.ReadAll(r)
	assert.Error(t, err)
}

func TestRateLimitedReader_Unlimited(t *testing.T) {
	var c *Controller
	r := NewRateLimitedReader(context.Background(), strings.NewReader("hello"), c)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
