package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/seometa/storage"
)

func TestWorkspace(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "nested", "base")

	ws, err := storage.NewWorkspace(base)
	require.NoError(t, err)
	dir := ws.Path()
	assert.True(t, strings.HasPrefix(filepath.Base(dir), "batch-"))
	assert.DirExists(t, dir)

	staged, err := ws.Stage(strings.NewReader("url\nexample.com\n"), ".csv")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(staged))
	assert.True(t, strings.HasPrefix(filepath.Base(staged), "upload_"))
	assert.Equal(t, ".csv", filepath.Ext(staged))

	data, err := os.ReadFile(staged)
	require.NoError(t, err)
	assert.Equal(t, "url\nexample.com\n", string(data))

	out, err := ws.Create("results", ".xlsx")
	require.NoError(t, err)
	require.NoError(t, out.Close())
	assert.True(t, strings.HasPrefix(filepath.Base(out.Name()), "results_"))

	require.NoError(t, ws.Close())
	assert.NoDirExists(t, dir)
	assert.NoFileExists(t, staged)

	require.NoError(t, ws.Close(), "second close is a no-op")
}

func TestWorkspace_UniquePerRun(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	a, err := storage.NewWorkspace(base)
	require.NoError(t, err)
	defer a.Close()
	b, err := storage.NewWorkspace(base)
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.Path(), b.Path())
}

func TestWorkspace_DefaultBase(t *testing.T) {
	t.Parallel()

	ws, err := storage.NewWorkspace("")
	require.NoError(t, err)
	defer ws.Close()
	assert.Equal(t, filepath.Clean(os.TempDir()), filepath.Dir(ws.Path()))
}
