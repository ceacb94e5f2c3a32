package media

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutIsExclusive(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "uploads/a.png", bytes.NewReader([]byte("first")), "image/png"))
	err = store.Put(ctx, "uploads/a.png", bytes.NewReader([]byte("second")), "image/png")
	require.ErrorIs(t, err, ErrExists)

	data, err := os.ReadFile(filepath.Join(store.Root(), "uploads", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	exists, err := store.Exists(ctx, "uploads/a.png")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalStoreDeleteMissingIsOK(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "uploads/never-there.png"))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, p := range []string{"../escape.png", "uploads/../../escape.png", "/etc/passwd", ""} {
		assert.Error(t, store.Put(ctx, p, bytes.NewReader(nil), ""), p)
		_, err := store.Exists(ctx, p)
		assert.Error(t, err, p)
	}
}

func TestLocalStoreListSkipsTempFiles(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "uploads/a.png", bytes.NewReader([]byte("a")), ""))
	require.NoError(t, store.Put(ctx, "uploads/b.gif", bytes.NewReader([]byte("bb")), ""))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "uploads", tmpPrefix+"half"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "README"), []byte("x"), 0o644))

	objects, err := store.List(ctx, UploadPrefix)
	require.NoError(t, err)

	paths := make([]string, 0, len(objects))
	for _, o := range objects {
		paths = append(paths, o.Path)
	}
	assert.ElementsMatch(t, []string{"uploads/a.png", "uploads/b.gif"}, paths)
}
