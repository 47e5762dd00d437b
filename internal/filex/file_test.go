package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDBDir_CreatesParent(t *testing.T) {
	tmp := t.TempDir()
	want := filepath.Join(tmp, "data", "nested")

	got, err := EnsureDBDir(filepath.Join(want, "dreams.db"))
	require.NoError(t, err)
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}
}

func TestEnsureDBDir_URIForm(t *testing.T) {
	tmp := t.TempDir()
	want := filepath.Join(tmp, "uri")

	got, err := EnsureDBDir("file:" + filepath.Join(want, "dreams.db") + "?_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = os.Stat(want)
	require.NoError(t, err)
}

func TestEnsureDBDir_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again", "dreams.db")

	first, err := EnsureDBDir(path)
	require.NoError(t, err)
	second, err := EnsureDBDir(path)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnsureDBDir_NothingToDo(t *testing.T) {
	for _, dsn := range []string{
		"",
		":memory:",
		"file:cache_1?mode=memory&cache=shared",
		"dreams.db",
	} {
		got, err := EnsureDBDir(dsn)
		require.NoError(t, err, dsn)
		require.Empty(t, got, dsn)
	}
}

func TestEnsureDBDir_FailsIfFileInTheWay(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := EnsureDBDir(filepath.Join(blocker, "dreams.db"))
	require.Error(t, err, "should fail when a file exists where the directory should be")
}
