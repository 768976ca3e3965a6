package sha256

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasher_Hash(t *testing.T) {
	t.Parallel()
	h := Hasher{}

	// Known digest of the empty input.
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", h.Hash(nil))
	assert.Equal(t, h.Hash([]byte("page body")), h.Hash([]byte("page body")))
	assert.NotEqual(t, h.Hash([]byte("a")), h.Hash([]byte("b")))
	assert.Len(t, h.Hash([]byte("x")), 64)
}
