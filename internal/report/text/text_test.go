package text

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBuildRef(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteBuildRef(dir, "https://dev.azure.com/org/proj/_build/results?buildId=7", 7))

	url, err := os.ReadFile(filepath.Join(dir, URLFile))
	require.NoError(t, err)
	assert.Equal(t, "https://dev.azure.com/org/proj/_build/results?buildId=7", string(url))

	id, err := os.ReadFile(filepath.Join(dir, IDFile))
	require.NoError(t, err)
	assert.Equal(t, "7", string(id))
}
