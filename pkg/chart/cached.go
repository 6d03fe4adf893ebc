package chart

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/chartpilot/chartpilot/pkg/cache"
	"github.com/chartpilot/chartpilot/pkg/helm"
	"github.com/chartpilot/chartpilot/pkg/params"
	"go.uber.org/zap"
)

var (
	// ErrRepositoryNotRegistered is returned when a locally registered repository was
	// requested but the local helm client does not know its URL.
	ErrRepositoryNotRegistered = errors.New("repository is not registered in the helm client")
	// ErrChartNotDownloaded is returned when pulling finished but the archive is missing.
	ErrChartNotDownloaded = errors.New("chart archive was not downloaded")
)

// Cached references a chart archive downloaded once into a local cache.
type Cached struct {
	path string
}

func (c *Cached) Path() string {
	return c.path
}

func (c *Cached) ApplyInstallParameters(b *params.Builder) {
	b.Add(c.path)
}

// ArchiveName is the file name helm gives to a pulled chart archive.
func ArchiveName(name, version string) string {
	return fmt.Sprintf("%s-%s.tgz", name, version)
}

// NewCached returns the cached archive of chart name at version, pulling it from repo first
// when it is not cached yet. An archive already present in the cache is reused without any
// network access.
func NewCached(ctx context.Context, h *helm.Client, c *cache.Cache, repo Repository, name, version string) (*Cached, error) {
	if name == "" || version == "" {
		return nil, fmt.Errorf("chart name and version are required for caching")
	}

	archive := ArchiveName(name, version)

	if path, err := c.Get(archive); err == nil {
		zap.S().Infof("Using cached chart archive '%s'", path)
		return &Cached{path: path}, nil
	}

	pullParams, err := buildPullParams(ctx, h, repo, name, version)
	if err != nil {
		return nil, err
	}

	err = download(ctx, h, c, pullParams, archive)
	if helm.IsStaleRepositoryError(err) {
		zap.S().Infof("Repository index is outdated, updating it before retrying the download of '%s'", archive)
		if err = h.RepoUpdate(ctx); err != nil {
			return nil, err
		}
		err = download(ctx, h, c, pullParams, archive)
	}
	if err != nil {
		return nil, fmt.Errorf("downloading chart '%s': %w", archive, err)
	}

	return &Cached{path: c.Path(archive)}, nil
}

func download(ctx context.Context, h *helm.Client, c *cache.Cache, pullParams *params.Builder, archive string) error {
	stagingDir, err := os.MkdirTemp("", "chart-pull-")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(stagingDir); rmErr != nil {
			zap.S().Warnf("Removing staging directory '%s' failed: %s", stagingDir, rmErr)
		}
	}()

	if err = h.Pull(ctx, pullParams, stagingDir); err != nil {
		return fmt.Errorf("pulling chart: %w", err)
	}

	file, err := os.Open(filepath.Join(stagingDir, archive))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrChartNotDownloaded
		}
		return fmt.Errorf("opening pulled chart: %w", err)
	}
	defer file.Close()

	if err = c.Put(archive, file); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("caching chart: %w", err)
	}

	return nil
}

func buildPullParams(ctx context.Context, h *helm.Client, repo Repository, name, version string) (*params.Builder, error) {
	b := params.New()

	if repo.UseLocallyRegistered {
		repos, err := h.RepoList(ctx)
		if err != nil {
			return nil, err
		}

		for _, r := range repos {
			if r.URL == repo.URL {
				b.Addf("--version %s", version)
				b.Addf("%s/%s", r.Name, name)
				return b, nil
			}
		}

		return nil, fmt.Errorf("%w: execute 'helm repo add <name> %s' to register it", ErrRepositoryNotRegistered, repo.URL)
	}

	b.Addf("--repo %s", repo.URL)
	if repo.Username != "" {
		b.Addf("--username \"%s\"", repo.Username)
		b.Addf("--password \"%s\"", repo.Password)
	}
	b.Addf("--version %s", version)
	b.Add(name)

	return b, nil
}
