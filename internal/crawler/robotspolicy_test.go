package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobotsEnforcer(t *testing.T) {
	t.Run("enforces disallow rules", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/robots.txt", r.URL.Path)
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
		}))
		defer server.Close()

		enforcer := NewRobotsEnforcer(true, "sitehound-test/1.0", nil)
		assert.True(t, enforcer.Allowed(context.Background(), server.URL+"/public"))
		assert.False(t, enforcer.Allowed(context.Background(), server.URL+"/private/page"))
	})

	t.Run("caches the ruleset per host", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
		}))
		defer server.Close()

		enforcer := NewRobotsEnforcer(true, "sitehound-test/1.0", nil)
		for i := 0; i < 5; i++ {
			assert.True(t, enforcer.Allowed(context.Background(), server.URL+"/page"))
		}
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("unreachable robots is permissive", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		addr := server.URL
		server.Close()

		enforcer := NewRobotsEnforcer(true, "sitehound-test/1.0", nil)
		assert.True(t, enforcer.Allowed(context.Background(), addr+"/anything"))
	})

	t.Run("disabled enforcement allows everything", func(t *testing.T) {
		enforcer := NewRobotsEnforcer(false, "sitehound-test/1.0", nil)
		assert.True(t, enforcer.Allowed(context.Background(), "http://anywhere.test/path"))
	})
}
