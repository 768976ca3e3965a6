package crawler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileErrorLog_Record(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	log := NewFileErrorLog(path, nil)

	log.Record("fetch http://a.test/page", errors.New("connection refused"))
	log.Record("media dispatch", errors.New("bucket down"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "fetch http://a.test/page: connection refused")
	assert.Contains(t, lines[1], "media dispatch: bucket down")
}

func TestFileErrorLog_NilError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	log := NewFileErrorLog(path, nil)

	log.Record("fetch", nil)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nil errors leave no trace")
}

func TestFileErrorLog_UnwritablePath(t *testing.T) {
	log := NewFileErrorLog(filepath.Join(t.TempDir(), "missing", "dir", "error.log"), nil)
	assert.NotPanics(t, func() {
		log.Record("fetch", errors.New("boom"))
	})
}
