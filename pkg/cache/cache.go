package cache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Cache stores downloaded chart archives under their file name.
type Cache struct {
	cacheDir string
}

func New(cacheDir string) (*Cache, error) {
	if cacheDir == "" {
		cacheDir = "."
	}

	if err := os.MkdirAll(cacheDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("creating a cache directory: %w", err)
	}

	return &Cache{cacheDir: cacheDir}, nil
}

func (cache *Cache) Dir() string {
	return cache.cacheDir
}

// Path returns where fileName is (or would be) stored.
func (cache *Cache) Path(fileName string) string {
	return filepath.Join(cache.cacheDir, fileName)
}

func (cache *Cache) Get(fileName string) (path string, err error) {
	path = cache.Path(fileName)

	if !exists(path) {
		return "", fs.ErrNotExist
	}

	return path, nil
}

func (cache *Cache) Put(fileName string, reader io.Reader) error {
	path := cache.Path(fileName)

	if exists(path) {
		zap.S().Warnf("File '%s' already exists in cache", fileName)
		return fs.ErrExist
	}

	zap.S().Infof("Storing file '%s' in cache", fileName)

	// Write under a temporary name so a partial copy is never mistaken for a cached archive.
	file, err := os.CreateTemp(cache.cacheDir, fileName+".*.part")
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		_ = os.Remove(file.Name())
	}()

	if _, err = io.Copy(file, reader); err != nil {
		_ = file.Close()
		return fmt.Errorf("storing file: %w", err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}

	if err = os.Rename(file.Name(), path); err != nil {
		return fmt.Errorf("moving file into cache: %w", err)
	}

	return nil
}

func exists(path string) bool {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			zap.S().Warnf("Looking for file '%s' failed: %v", path, err)
		}

		return false
	}

	return true
}
