package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.zip")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func TestExtractZIP(t *testing.T) {
	archive := makeZip(t, map[string]string{
		"nodes.dmp": "1\t|\t1\t|\tno rank\t|\n",
		"names.dmp": "1\t|\troot\t|\t\t|\tscientific name\t|\n",
	})
	dest := t.TempDir()

	paths, err := ExtractZIP(archive, dest)
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	data, err := os.ReadFile(filepath.Join(dest, "nodes.dmp"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "no rank")
}

func TestExtractZIPFile(t *testing.T) {
	archive := makeZip(t, map[string]string{
		"nodes.dmp":   "nodes",
		"names.dmp":   "names",
		"readme.txt":  "readme",
		"merged.dmp":  "merged",
		"delnodes.dmp": "deleted",
	})

	path, err := ExtractZIPFile(archive, "names.dmp", t.TempDir())
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "names", string(data))
}

func TestExtractZIPFile_NotFound(t *testing.T) {
	archive := makeZip(t, map[string]string{"nodes.dmp": "nodes"})

	_, err := ExtractZIPFile(archive, "citations.dmp", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in archive")
}

func TestExtractZIP_RejectsZipSlip(t *testing.T) {
	archive := makeZip(t, map[string]string{"../escape.txt": "bad"})

	_, err := ExtractZIP(archive, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip slip")
}
