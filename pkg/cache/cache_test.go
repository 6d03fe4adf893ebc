package cache

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *Cache {
	cache, err := New(filepath.Join(t.TempDir(), "charts"))
	require.NoError(t, err)

	return cache
}

func TestCache(t *testing.T) {
	cache := setup(t)

	fileName := "nginx-19.0.2.tgz"
	fileContents := "some-data"

	require.NoError(t, cache.Put(fileName, strings.NewReader(fileContents)))

	path, err := cache.Get(fileName)
	require.NoError(t, err)
	require.FileExists(t, path)
	assert.Equal(t, filepath.Join(cache.Dir(), fileName), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fileContents, string(b))

	entries, err := os.ReadDir(cache.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCache_MissingEntry(t *testing.T) {
	cache := setup(t)

	path, err := cache.Get("nginx-19.0.2.tgz")
	require.Error(t, err)

	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, path)
}

func TestCache_DoubleInsert(t *testing.T) {
	cache := setup(t)

	fileName := "nginx-19.0.2.tgz"
	fileContents := "some-data"

	require.NoError(t, cache.Put(fileName, strings.NewReader(fileContents)))
	assert.ErrorIs(t, cache.Put(fileName, strings.NewReader(fileContents)), fs.ErrExist)
}

func TestCache_ExistingFileIsAHit(t *testing.T) {
	cache := setup(t)

	require.NoError(t, os.WriteFile(cache.Path("nginx-19.0.2.tgz"), []byte("archive"), 0o644))

	path, err := cache.Get("nginx-19.0.2.tgz")
	require.NoError(t, err)
	assert.FileExists(t, path)
}
