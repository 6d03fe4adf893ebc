package helm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chartpilot/chartpilot/pkg/kube"
	"github.com/chartpilot/chartpilot/pkg/params"
	"github.com/chartpilot/chartpilot/pkg/process"
)

const (
	defaultBinary = "helm"

	noRepositoriesMessage = "no repositories to show"
)

// RepositoryEntry is a repository registered in the local helm client.
type RepositoryEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Client drives the helm binary.
type Client struct {
	launcher process.Launcher
	binary   string
}

// New returns a Client running binary through l. An empty binary selects "helm" from PATH.
func New(l process.Launcher, binary string) *Client {
	if binary == "" {
		binary = defaultBinary
	}

	return &Client{
		launcher: l,
		binary:   binary,
	}
}

func (h *Client) Binary() string {
	return h.binary
}

// ReleaseExists reports whether a deployed, failed or uninstalling release record exists.
func (h *Client) ReleaseExists(ctx context.Context, name string, kc *kube.ClusterContext) (bool, error) {
	output, err := process.ExecuteToEnd(ctx, h.launcher, h.binary, listArgs(name, kc), false)
	if err != nil {
		return false, fmt.Errorf("listing releases: %w", err)
	}

	return strings.TrimSpace(output) != "[]", nil
}

func listArgs(name string, kc *kube.ClusterContext) string {
	b := params.New("list")
	b.Addf("--filter %s", name)
	b.Add("--deployed", "--failed", "--uninstalling", "-o json")
	b.ApplyHelmContext(kc)

	return b.Build()
}

// Uninstall removes the release and waits for its resources to be deleted.
func (h *Client) Uninstall(ctx context.Context, name string, kc *kube.ClusterContext) error {
	if _, err := process.ExecuteToEnd(ctx, h.launcher, h.binary, uninstallArgs(name, kc), false); err != nil {
		return fmt.Errorf("uninstalling release '%s': %w", name, err)
	}

	return nil
}

func uninstallArgs(name string, kc *kube.ClusterContext) string {
	b := params.New("uninstall", name, "--wait")
	b.ApplyHelmContext(kc)

	return b.Build()
}

// UpgradeArgs returns the install-or-upgrade flags preceding the chart reference.
func UpgradeArgs(timeout time.Duration, kc *kube.ClusterContext) *params.Builder {
	b := params.New("--install", "--force", "--atomic", "--wait")

	if timeout > 0 {
		b.Addf("--timeout %ss", strconv.FormatFloat(timeout.Seconds(), 'f', -1, 64))
	}

	b.ApplyHelmContext(kc)

	return b
}

// Upgrade installs or upgrades the release with the given arguments.
func (h *Client) Upgrade(ctx context.Context, name string, args *params.Builder) error {
	_, err := process.ExecuteToEnd(ctx, h.launcher, h.binary, upgradeArgs(name, args), false)
	return err
}

func upgradeArgs(name string, args *params.Builder) string {
	return fmt.Sprintf("upgrade %s %s", name, args.Build())
}

// RepoUpdate refreshes the local repository index.
func (h *Client) RepoUpdate(ctx context.Context) error {
	if _, err := process.ExecuteToEnd(ctx, h.launcher, h.binary, "repo update", false); err != nil {
		return fmt.Errorf("updating repositories: %w", err)
	}

	return nil
}

// RepoList returns the repositories registered in the local helm client.
func (h *Client) RepoList(ctx context.Context) ([]RepositoryEntry, error) {
	output, err := process.ExecuteToEnd(ctx, h.launcher, h.binary, "repo list -o json", true)
	if err != nil {
		var execErr *process.ExecutionError
		if errors.As(err, &execErr) && strings.Contains(execErr.Stderr, noRepositoriesMessage) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing repositories: %w", err)
	}

	return parseRepoList(output)
}

func parseRepoList(output string) ([]RepositoryEntry, error) {
	if strings.TrimSpace(output) == "" {
		return nil, nil
	}

	var repos []RepositoryEntry
	if err := json.Unmarshal([]byte(output), &repos); err != nil {
		return nil, fmt.Errorf("decoding repository list: %w", err)
	}

	return repos, nil
}

// Pull downloads a chart archive into destDir.
func (h *Client) Pull(ctx context.Context, args *params.Builder, destDir string) error {
	_, err := process.ExecuteToEnd(ctx, h.launcher, h.binary, pullArgs(args, destDir), false)
	return err
}

func pullArgs(args *params.Builder, destDir string) string {
	b := params.New("pull", args.Build())
	if destDir != "" {
		b.Addf("--destination \"%s\"", destDir)
	}

	return b.Build()
}
