package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates a missing base directory", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "blobs")
		store, err := New(Config{BaseDir: base})
		require.NoError(t, err)
		require.NotNil(t, store)

		info, err := os.Stat(base)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("empty base directory is an error", func(t *testing.T) {
		_, err := New(Config{BaseDir: "   "})
		assert.Error(t, err)
	})

	t.Run("base path pointing at a file is an error", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "occupied")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
		_, err := New(Config{BaseDir: file})
		assert.Error(t, err)
	})
}

func TestBlobStore_PutObject(t *testing.T) {
	base := t.TempDir()
	store, err := New(Config{BaseDir: base})
	require.NoError(t, err)

	t.Run("writes the blob and returns a file uri", func(t *testing.T) {
		uri, err := store.PutObject(context.Background(), "media/pic.png", "image/png", strings.NewReader("payload"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(uri, "file://"), uri)

		data, err := os.ReadFile(filepath.Join(base, "media", "pic.png"))
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	})

	t.Run("rejects empty paths", func(t *testing.T) {
		_, err := store.PutObject(context.Background(), "  ", "", strings.NewReader("x"))
		assert.Error(t, err)
	})

	t.Run("rejects traversal outside the base directory", func(t *testing.T) {
		_, err := store.PutObject(context.Background(), "../escape.txt", "", strings.NewReader("x"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "traversal")
	})
}
