package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TmpDir returns a fresh temporary directory with symlinks resolved
func TmpDir(tb testing.TB) string {
	tb.Helper()

	// On some systems `/tmp` can be a symlink
	tmpDir, err := filepath.EvalSymlinks(tb.TempDir())
	require.NoError(tb, err)

	return tmpDir
}

// WriteFiles creates files beneath root, keyed by their slash separated path
func WriteFiles(tb testing.TB, root string, files map[string]string) {
	tb.Helper()

	for name, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(name))

		require.NoError(tb, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(tb, os.WriteFile(fullPath, []byte(content), 0o644))
	}
}
