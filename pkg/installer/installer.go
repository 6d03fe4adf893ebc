// Package installer installs charts as releases, replacing any earlier release of the same
// name.
package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chartpilot/chartpilot/pkg/chart"
	"github.com/chartpilot/chartpilot/pkg/fileio"
	"github.com/chartpilot/chartpilot/pkg/helm"
	"github.com/chartpilot/chartpilot/pkg/kube"
	"github.com/chartpilot/chartpilot/pkg/kubectl"
	"github.com/chartpilot/chartpilot/pkg/params"
	"github.com/chartpilot/chartpilot/pkg/process"
	"github.com/chartpilot/chartpilot/pkg/release"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Option func(*Installer)

// WithOutputWriter echoes the tools' output, and the installation diagnostics, to w.
func WithOutputWriter(w process.OutputWriter) Option {
	return func(i *Installer) {
		i.writer = w
	}
}

// WithLauncher runs the tools through l instead of a process.Runner.
func WithLauncher(l process.Launcher) Option {
	return func(i *Installer) {
		i.launcher = l
	}
}

// WithOverridesDir stores the override files in dir instead of the temporary directory.
func WithOverridesDir(dir string) Option {
	return func(i *Installer) {
		i.overridesDir = dir
	}
}

func WithHelmBinary(binary string) Option {
	return func(i *Installer) {
		i.helmBinary = binary
	}
}

func WithKubectlBinary(binary string) Option {
	return func(i *Installer) {
		i.kubectlBinary = binary
	}
}

// Installer drives helm and kubectl to install releases. Installs of the same release name
// must not run concurrently.
type Installer struct {
	writer        process.OutputWriter
	launcher      process.Launcher
	overridesDir  string
	helmBinary    string
	kubectlBinary string

	helm    *helm.Client
	kubectl *kubectl.Client
	now     func() time.Time
}

func New(opts ...Option) *Installer {
	i := &Installer{
		writer:       process.ConsoleWriter{},
		overridesDir: os.TempDir(),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(i)
	}

	if i.launcher == nil {
		i.launcher = process.NewRunner(i.writer)
	}

	i.helm = helm.New(i.launcher, i.helmBinary)
	i.kubectl = kubectl.New(i.launcher, i.kubectlBinary)

	return i
}

// Helm returns the client the installer drives helm with.
func (i *Installer) Helm() *helm.Client {
	return i.helm
}

// Options tune a single installation.
type Options struct {
	// Overrides are serialized to JSON and passed as a values file. Nil passes none.
	Overrides any
	// Timeout is enforced by helm. Zero keeps helm's default.
	Timeout time.Duration
	Cluster *kube.ClusterContext
}

// OverridesPath returns where the overrides of releaseName are written.
func (i *Installer) OverridesPath(releaseName string) string {
	return filepath.Join(i.overridesDir, releaseName+".json")
}

// Install installs source as releaseName and returns its handle. An existing release of
// the same name is uninstalled first. Close the returned release to uninstall it.
func (i *Installer) Install(ctx context.Context, source chart.Source, releaseName string, opts Options) (*release.Release, error) {
	logger := zap.S().With("operation", uuid.NewString(), "release", releaseName)
	kc := opts.Cluster

	exists, err := i.helm.ReleaseExists(ctx, releaseName, kc)
	if err != nil {
		return nil, err
	}

	if exists {
		logger.Infof("Uninstalling the existing release before installing")
		if err = i.helm.Uninstall(ctx, releaseName, kc); err != nil {
			return nil, err
		}
	} else {
		i.removeDanglingReleaseSecret(ctx, logger, releaseName, kc)
	}

	args, err := i.installArgs(source, releaseName, opts)
	if err != nil {
		return nil, err
	}

	err = i.performInstall(ctx, releaseName, args, kc)
	if helm.IsStaleRepositoryError(err) {
		logger.Infof("Repository index is outdated, updating it before retrying the installation")
		if err = i.helm.RepoUpdate(ctx); err != nil {
			return nil, err
		}
		err = i.performInstall(ctx, releaseName, args, kc)
	}
	if err != nil {
		logger.Errorf("Installation failed: %s", err)
		return nil, fmt.Errorf("installing release '%s': %w", releaseName, err)
	}

	logger.Infof("Release installed")

	return release.New(releaseName, i.helm, i.kubectl, kc), nil
}

func (i *Installer) installArgs(source chart.Source, releaseName string, opts Options) (*params.Builder, error) {
	b := helm.UpgradeArgs(opts.Timeout, opts.Cluster)

	if opts.Overrides != nil {
		path := i.OverridesPath(releaseName)
		if err := fileio.WriteJSON(path, opts.Overrides); err != nil {
			return nil, fmt.Errorf("writing overrides: %w", err)
		}
		b.Addf("-f \"%s\"", path)
	}

	// Chart references end with a positional argument, keep them last.
	source.ApplyInstallParameters(b)

	return b, nil
}

func (i *Installer) performInstall(ctx context.Context, releaseName string, args *params.Builder, kc *kube.ClusterContext) error {
	start := i.now()
	defer i.dumpEvents(ctx, releaseName, start, kc)

	return i.helm.Upgrade(ctx, releaseName, args)
}

// removeDanglingReleaseSecret deletes the release record helm sometimes leaves behind after
// an uninstall. Without it the next install fails although helm lists no release. Errors
// are reported and otherwise ignored.
func (i *Installer) removeDanglingReleaseSecret(ctx context.Context, logger *zap.SugaredLogger, releaseName string, kc *kube.ClusterContext) {
	secrets, err := i.kubectl.Secrets(ctx, kc)
	if err != nil {
		i.writer.WriteError(err.Error())
		logger.Warnf("Looking up dangling release records failed: %s", err)
		return
	}

	name := danglingReleaseSecret(secrets, releaseName)
	if name == "" {
		return
	}

	i.writer.Write(fmt.Sprintf("Detected dangling release by discovering secret '%s'", name))
	logger.Infof("Deleting dangling release record '%s'", name)

	if err = i.kubectl.DeleteSecret(ctx, name, kc); err != nil {
		i.writer.WriteError(err.Error())
		logger.Warnf("Deleting dangling release record '%s' failed: %s", name, err)
	}
}

// dumpEvents writes the events of the release's objects seen since start. It never fails.
func (i *Installer) dumpEvents(ctx context.Context, releaseName string, start time.Time, kc *kube.ClusterContext) {
	events, err := i.kubectl.Events(ctx, kc)
	if err != nil {
		zap.S().Debugf("Reading events of release '%s' failed: %s", releaseName, err)
		return
	}

	lines := installationEvents(events, releaseName, start)
	if len(lines) == 0 {
		return
	}

	i.writer.Write("Events from the installation:")
	for _, line := range lines {
		i.writer.Write(line)
	}
}
