package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitehound/sitehound/internal/storage/memory"
)

func TestNewAssetStore(t *testing.T) {
	t.Parallel()
	_, err := NewAssetStore(nil, "", nil, nil)
	assert.Error(t, err, "a blob store is mandatory")
}

func TestAssetStore_Store(t *testing.T) {
	t.Run("downloads and persists the asset", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png-bytes"))
		}))
		defer server.Close()

		blobs := memory.NewBlobStore()
		store, err := NewAssetStore(blobs, "media", nil, nil)
		require.NoError(t, err)

		uri, err := store.Store(context.Background(), server.URL+"/img/hero.png", "example.com_hero_abc123")
		require.NoError(t, err)
		assert.Equal(t, "memory://media/example.com_hero_abc123.png", uri)

		content, ok := blobs.Get("media/example.com_hero_abc123.png")
		require.True(t, ok)
		assert.Equal(t, "png-bytes", string(content))
	})

	t.Run("extension-less sources keep the suggested name", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("data"))
		}))
		defer server.Close()

		blobs := memory.NewBlobStore()
		store, err := NewAssetStore(blobs, "media", nil, nil)
		require.NoError(t, err)

		uri, err := store.Store(context.Background(), server.URL+"/asset", "example.com_asset_def456")
		require.NoError(t, err)
		assert.Equal(t, "memory://media/example.com_asset_def456", uri)
	})

	t.Run("non-2xx download is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		store, err := NewAssetStore(memory.NewBlobStore(), "media", nil, nil)
		require.NoError(t, err)

		_, err = store.Store(context.Background(), server.URL+"/gone.png", "gone")
		assert.Error(t, err)
	})

	t.Run("unreachable host is an error", func(t *testing.T) {
		store, err := NewAssetStore(memory.NewBlobStore(), "media", nil, nil)
		require.NoError(t, err)

		_, err = store.Store(context.Background(), "http://127.0.0.1:1/x.png", "x")
		assert.Error(t, err)
	})
}
