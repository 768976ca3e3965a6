package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitehound/sitehound/internal/crawler"
	"github.com/sitehound/sitehound/internal/database"
)

// fakeProvider returns canned pages or a canned error.
type fakeProvider struct {
	pages []crawler.PageRecord
	err   error

	gotRunID  string
	gotLimit  int
	gotOffset int
}

func (f *fakeProvider) RecordPage(context.Context, crawler.PageRecord) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeProvider) ListPages(_ context.Context, runID string, limit, offset int) ([]crawler.PageRecord, error) {
	f.gotRunID = runID
	f.gotLimit = limit
	f.gotOffset = offset
	return f.pages, f.err
}

func (f *fakeProvider) Close() error { return nil }

func doRequest(t *testing.T, server *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	server := NewServer(database.NoOpProvider{}, nil)

	rec := doRequest(t, server, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = doRequest(t, server, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	server := NewServer(nil, nil)
	rec := doRequest(t, server, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_ListRunPages(t *testing.T) {
	runID := uuid.NewString()

	t.Run("returns the run's pages", func(t *testing.T) {
		provider := &fakeProvider{pages: []crawler.PageRecord{{
			RunID:      runID,
			URL:        "http://example.com/",
			Depth:      0,
			StatusCode: 200,
			FetchedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		}}}
		server := NewServer(provider, nil)

		rec := doRequest(t, server, "/v1/runs/"+runID+"/pages?limit=10&offset=5")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Pages []crawler.PageRecord `json:"pages"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Pages, 1)
		assert.Equal(t, "http://example.com/", body.Pages[0].URL)
		assert.Equal(t, runID, provider.gotRunID)
		assert.Equal(t, 10, provider.gotLimit)
		assert.Equal(t, 5, provider.gotOffset)
	})

	t.Run("invalid run id is a 400", func(t *testing.T) {
		server := NewServer(&fakeProvider{}, nil)
		rec := doRequest(t, server, "/v1/runs/not-a-uuid/pages")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad pagination is a 400", func(t *testing.T) {
		server := NewServer(&fakeProvider{}, nil)
		rec := doRequest(t, server, "/v1/runs/"+runID+"/pages?limit=-3")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("limit is clamped to the maximum", func(t *testing.T) {
		provider := &fakeProvider{}
		server := NewServer(provider, nil)
		rec := doRequest(t, server, "/v1/runs/"+runID+"/pages?limit=99999")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1000, provider.gotLimit)
	})

	t.Run("database failure is a 500", func(t *testing.T) {
		server := NewServer(&fakeProvider{err: errors.New("db down")}, nil)
		rec := doRequest(t, server, "/v1/runs/"+runID+"/pages")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("missing database is a 503", func(t *testing.T) {
		server := NewServer(nil, nil)
		rec := doRequest(t, server, "/v1/runs/"+runID+"/pages")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestParseLimitOffset(t *testing.T) {
	t.Parallel()

	newReq := func(query string) *http.Request {
		return httptest.NewRequest(http.MethodGet, "/pages"+query, nil)
	}

	limit, offset, err := parseLimitOffset(newReq(""), 100, 1000)
	require.NoError(t, err)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 0, offset)

	limit, offset, err = parseLimitOffset(newReq("?limit=50&offset=20"), 100, 1000)
	require.NoError(t, err)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 20, offset)

	_, _, err = parseLimitOffset(newReq("?limit=abc"), 100, 1000)
	assert.Error(t, err)

	_, _, err = parseLimitOffset(newReq("?offset=-1"), 100, 1000)
	assert.Error(t, err)
}
