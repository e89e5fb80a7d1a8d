package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestAllowedExt(t *testing.T) {
	assert.True(t, AllowedExt(".pdf"))
	assert.True(t, AllowedExt(".JPG"))
	assert.True(t, AllowedExt("png"))
	assert.False(t, AllowedExt(".txt"))
	assert.False(t, AllowedExt(""))
}

func TestScanDirectoryFiltersHiddenAndUnsupported(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "invoice.pdf"))
	touch(t, filepath.Join(dir, "receipt.JPG"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, ".hidden.pdf"))
	touch(t, filepath.Join(dir, ".cache", "stale.pdf"))
	touch(t, filepath.Join(dir, "sub", "scan.png"))

	paths, stats, err := ScanDirectory(dir)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "invoice.pdf"),
		filepath.Join(dir, "receipt.JPG"),
		filepath.Join(dir, "sub", "scan.png"),
	}, paths)
	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(2), stats.Skipped, "hidden and unsupported files are skipped")
}
