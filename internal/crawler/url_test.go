package crawler

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTP://Example.COM/Path", "http://example.com/Path"},
		{"strips default http port", "http://example.com:80/x", "http://example.com/x"},
		{"strips default https port", "https://example.com:443/x", "https://example.com/x"},
		{"keeps explicit port", "http://example.com:8080/x", "http://example.com:8080/x"},
		{"drops fragment", "http://example.com/page#section", "http://example.com/page"},
		{"empty path becomes slash", "http://example.com", "http://example.com/"},
		{"sorts query parameters", "http://example.com/?b=2&a=1", "http://example.com/?a=1&b=2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeURL(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("equivalent urls normalize identically", func(t *testing.T) {
		t.Parallel()
		a, err := NormalizeURL("HTTP://Example.com:80/page?b=2&a=1#frag")
		require.NoError(t, err)
		b, err := NormalizeURL("http://example.com/page?a=1&b=2")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("rejects non-absolute urls", func(t *testing.T) {
		t.Parallel()
		for _, in := range []string{"", "/relative/path", "example.com/no-scheme", "not a url"} {
			_, err := NormalizeURL(in)
			assert.Error(t, err, "input %q", in)
		}
	})
}

func TestResolveLink(t *testing.T) {
	t.Parallel()
	base, err := url.Parse("http://example.com/dir/page.html")
	require.NoError(t, err)

	t.Run("resolves relative links", func(t *testing.T) {
		t.Parallel()
		got, ok := ResolveLink(base, "other.html")
		require.True(t, ok)
		assert.Equal(t, "http://example.com/dir/other.html", got)

		got, ok = ResolveLink(base, "/rooted")
		require.True(t, ok)
		assert.Equal(t, "http://example.com/rooted", got)
	})

	t.Run("passes through absolute links", func(t *testing.T) {
		t.Parallel()
		got, ok := ResolveLink(base, "https://other.test/a")
		require.True(t, ok)
		assert.Equal(t, "https://other.test/a", got)
	})

	t.Run("rejects non-navigable references", func(t *testing.T) {
		t.Parallel()
		for _, href := range []string{"", "  ", "#anchor", "mailto:a@b.c", "javascript:void(0)", "data:text/plain,hi"} {
			_, ok := ResolveLink(base, href)
			assert.False(t, ok, "href %q", href)
		}
	})

	t.Run("strips fragments from resolved links", func(t *testing.T) {
		t.Parallel()
		got, ok := ResolveLink(base, "/page#middle")
		require.True(t, ok)
		assert.Equal(t, "http://example.com/page", got)
	})
}

func TestHostOf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "example.com", HostOf("http://Example.COM:8080/x"))
	assert.Equal(t, "", HostOf("://bad"))
}
