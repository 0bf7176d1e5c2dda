package blobstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "b", strings.NewReader("2"), 1))
	require.NoError(t, store.Put(ctx, "a", strings.NewReader("1"), 1))

	data, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", string(data))
	assert.Equal(t, []string{"a", "b"}, store.Keys())
	assert.Equal(t, int64(2), store.PutCount())

	ok, err := store.Exists(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "b"))
	ok, err = store.Exists(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_PutError(t *testing.T) {
	store := NewMemoryStore()
	boom := errors.New("pool unreachable")
	store.SetPutError(boom)

	err := store.Put(context.Background(), "a", strings.NewReader("1"), 1)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, store.Keys())
	assert.Equal(t, int64(1), store.PutCount())

	store.SetPutError(nil)
	require.NoError(t, store.Put(context.Background(), "a", strings.NewReader("1"), 1))
}

func TestMemoryStore_PeakConcurrency(t *testing.T) {
	store := NewMemoryStore()
	store.SetPutDelay(20 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Put(context.Background(), "k", strings.NewReader("x"), 1)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, store.PeakConcurrency(), int64(2))
}
