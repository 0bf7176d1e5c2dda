package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	// 1. Put an object
	key := "my-prefix/ls.logpool.h.2014-05-30T02.52.part0.txt"
	data := "hello world\nsecond line\n"

	err := store.Put(ctx, key, strings.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	// Verify file exists on disk
	expectedPath := filepath.Join(tmpDir, "my-prefix", "ls.logpool.h.2014-05-30T02.52.part0.txt")
	content, err := os.ReadFile(expectedPath)
	require.NoError(t, err)
	require.Equal(t, data, string(content))

	// 2. Exists
	ok, err := store.Exists(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.Exists(ctx, "missing.txt")
	require.NoError(t, err)
	require.False(t, ok)

	// 3. Overwrite keeps the latest body
	err = store.Put(ctx, key, strings.NewReader("v2"), 2)
	require.NoError(t, err)
	content, err = os.ReadFile(expectedPath)
	require.NoError(t, err)
	require.Equal(t, "v2", string(content))

	// 4. Delete
	require.NoError(t, store.Delete(ctx, key))
	ok, err = store.Exists(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	// Deleting again is fine
	require.NoError(t, store.Delete(ctx, key))

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Join(tmpDir, "my-prefix"))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "../outside.txt", "a/../../outside.txt"} {
		err := store.Put(ctx, key, strings.NewReader("x"), 1)
		require.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Put(ctx, "a.txt", strings.NewReader("x"), 1)
	require.ErrorIs(t, err, context.Canceled)
}
