package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClassifyAsset(t *testing.T) {
	t.Parallel()
	cases := []struct {
		url  string
		kind AssetKind
		ok   bool
	}{
		{"http://a.test/pic.jpg", AssetImage, true},
		{"http://a.test/pic.PNG", AssetImage, true},
		{"http://a.test/clip.mp4", AssetVideo, true},
		{"http://a.test/report.pdf", AssetBinary, true},
		{"http://a.test/archive.tar", AssetBinary, true},
		{"http://a.test/page.html", "", false},
		{"http://a.test/no-extension", "", false},
	}
	for _, tc := range cases {
		kind, ok := ClassifyAsset(tc.url)
		assert.Equal(t, tc.ok, ok, tc.url)
		assert.Equal(t, tc.kind, kind, tc.url)
	}
}

func TestMediaPipeline_Dispatch(t *testing.T) {
	t.Run("dispatches media urls and media-typed links", func(t *testing.T) {
		sink := new(MockMediaSink)
		sink.On("Store", mock.Anything, "http://a.test/hero.png", mock.Anything).Return("memory://1", nil)
		sink.On("Store", mock.Anything, "http://a.test/manual.pdf", mock.Anything).Return("memory://2", nil)
		pipeline := NewMediaPipeline(sink, nil, nil)

		assets := pipeline.Dispatch(context.Background(), Artifact{
			MediaURLs: []string{"http://a.test/hero.png"},
			Links:     []string{"http://a.test/about", "http://a.test/manual.pdf"},
		})

		require.Len(t, assets, 2)
		assert.Equal(t, AssetImage, assets[0].Kind)
		assert.Equal(t, "memory://1", assets[0].StoredURI)
		assert.Equal(t, AssetBinary, assets[1].Kind)
		sink.AssertExpectations(t)
	})

	t.Run("deduplicates candidates", func(t *testing.T) {
		sink := new(MockMediaSink)
		sink.On("Store", mock.Anything, "http://a.test/hero.png", mock.Anything).Return("memory://1", nil).Once()
		pipeline := NewMediaPipeline(sink, nil, nil)

		assets := pipeline.Dispatch(context.Background(), Artifact{
			MediaURLs: []string{"http://a.test/hero.png"},
			Links:     []string{"http://a.test/hero.png"},
		})

		require.Len(t, assets, 1)
		sink.AssertExpectations(t)
	})

	t.Run("extension-less media tags default to image", func(t *testing.T) {
		sink := new(MockMediaSink)
		sink.On("Store", mock.Anything, "http://a.test/img/42", mock.Anything).Return("memory://1", nil)
		pipeline := NewMediaPipeline(sink, nil, nil)

		assets := pipeline.Dispatch(context.Background(), Artifact{
			MediaURLs: []string{"http://a.test/img/42"},
		})

		require.Len(t, assets, 1)
		assert.Equal(t, AssetImage, assets[0].Kind)
	})

	t.Run("one failed dispatch does not stop the rest", func(t *testing.T) {
		sink := new(MockMediaSink)
		sink.On("Store", mock.Anything, "http://a.test/bad.png", mock.Anything).
			Return("", errors.New("bucket down"))
		sink.On("Store", mock.Anything, "http://a.test/good.png", mock.Anything).
			Return("memory://ok", nil)
		errorLog := new(recordingErrorLog)
		pipeline := NewMediaPipeline(sink, nil, errorLog)

		assets := pipeline.Dispatch(context.Background(), Artifact{
			MediaURLs: []string{"http://a.test/bad.png", "http://a.test/good.png"},
		})

		require.Len(t, assets, 1)
		assert.Equal(t, "http://a.test/good.png", assets[0].SourceURL)
		require.Len(t, errorLog.entries, 1)
		var derr *DispatchError
		require.ErrorAs(t, errorLog.entries[0], &derr)
		assert.Equal(t, "http://a.test/bad.png", derr.AssetURL)
	})

	t.Run("nil sink classifies without storing", func(t *testing.T) {
		pipeline := NewMediaPipeline(nil, nil, nil)
		assets := pipeline.Dispatch(context.Background(), Artifact{
			MediaURLs: []string{"http://a.test/hero.png"},
		})
		require.Len(t, assets, 1)
		assert.Empty(t, assets[0].StoredURI)
	})
}

type recordingErrorLog struct {
	entries []error
}

func (r *recordingErrorLog) Record(_ string, err error) {
	r.entries = append(r.entries, err)
}

func TestSafeBasename(t *testing.T) {
	t.Parallel()
	a := safeBasename("http://a.test/media/photo.jpg")
	b := safeBasename("http://a.test/media/photo.jpg?size=large")
	assert.NotEqual(t, a, b, "query strings produce distinct names")
	assert.NotContains(t, a, "/")
	assert.NotContains(t, a, "?")
}
