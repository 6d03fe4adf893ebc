// Package release provides the handle to an installed release: port-forward tunnels, command
// execution on its pods and teardown.
package release

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/chartpilot/chartpilot/pkg/helm"
	"github.com/chartpilot/chartpilot/pkg/kube"
	"github.com/chartpilot/chartpilot/pkg/kubectl"
	"github.com/chartpilot/chartpilot/pkg/process"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const forwardingPrefix = "Forwarding from"

var (
	// ErrClosed is returned by operations started after teardown began.
	ErrClosed = errors.New("release has been torn down")
	// ErrNoPortForward is returned when no tunnel listens on the requested local port.
	ErrNoPortForward = errors.New("no port-forward on local port")

	forwardingPortPattern = regexp.MustCompile(`:(\d+) ->`)
)

type tunnel struct {
	target string
	stream *process.Stream
	done   chan struct{}
	err    error
}

func (t *tunnel) stop() error {
	t.stream.Close()
	<-t.done

	return t.err
}

// Release is a live installation. Close it to tear the release down.
type Release struct {
	name    string
	helm    *helm.Client
	kubectl *kubectl.Client
	cluster *kube.ClusterContext

	mu          sync.Mutex
	closed      bool
	tunnels     map[int]*tunnel
	teardownErr error
}

// New returns the handle of the installed release name. Installer.Install is the usual way
// to obtain one.
func New(name string, h *helm.Client, k *kubectl.Client, kc *kube.ClusterContext) *Release {
	return &Release{
		name:    name,
		helm:    h,
		kubectl: k,
		cluster: kc,
		tunnels: map[int]*tunnel{},
	}
}

func (r *Release) Name() string {
	return r.name
}

// DefaultSelector matches the pods labelled with the instance name of the release.
func DefaultSelector(releaseName string) string {
	return "app.kubernetes.io/instance=" + releaseName
}

func (r *Release) StartPortForwardForService(ctx context.Context, service string, remotePort, localPort int) (int, error) {
	return r.StartPortForward(ctx, kubectl.KindService, service, remotePort, localPort)
}

func (r *Release) StartPortForwardForPod(ctx context.Context, pod string, remotePort, localPort int) (int, error) {
	return r.StartPortForward(ctx, kubectl.KindPod, pod, remotePort, localPort)
}

// StartPortForward opens a tunnel to kind/name and returns the local port it listens on. A
// localPort of 0 lets the tool pick one. When the tool does not report an active tunnel
// the returned port is 0 and no error is raised. The tunnel lives until StopPortForward or
// Close, independently of ctx, which only bounds the wait for the tunnel to come up.
func (r *Release) StartPortForward(ctx context.Context, kind, name string, remotePort, localPort int) (int, error) {
	if r.isClosed() {
		return 0, ErrClosed
	}

	target := fmt.Sprintf("%s/%s", kind, name)
	stream := r.kubectl.PortForward(context.WithoutCancel(ctx), kind, name, remotePort, localPort, r.cluster)

	var (
		first string
		ok    bool
	)
	select {
	case first, ok = <-stream.Lines():
	case <-ctx.Done():
		stream.Close()
		return 0, ctx.Err()
	}

	port, matched := parseForwardedPort(first)
	if !ok || !matched {
		if err := stream.Drain(); err != nil {
			zap.S().Warnf("Port-forward to %s failed: %s", target, err)
		} else {
			zap.S().Warnf("Port-forward to %s did not start, first output line: %q", target, first)
		}
		return 0, nil
	}

	t := &tunnel{target: target, stream: stream, done: make(chan struct{})}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		stream.Close()
		return 0, ErrClosed
	}
	r.tunnels[port] = t
	r.mu.Unlock()

	// The tool keeps writing while the tunnel is used; keep reading so it never blocks.
	go func() {
		t.err = stream.Drain()
		close(t.done)
	}()

	zap.S().Infof("Port-forward to %s of release '%s' listening on local port %d", target, r.name, port)

	return port, nil
}

func parseForwardedPort(line string) (int, bool) {
	if !strings.HasPrefix(line, forwardingPrefix) {
		return 0, false
	}

	match := forwardingPortPattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}

	port, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}

	return port, true
}

// StopPortForward closes the tunnel listening on localPort and waits for it to stop.
func (r *Release) StopPortForward(localPort int) error {
	r.mu.Lock()
	t, ok := r.tunnels[localPort]
	delete(r.tunnels, localPort)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w %d", ErrNoPortForward, localPort)
	}

	if err := t.stop(); err != nil {
		return fmt.Errorf("port-forward to %s: %w", t.target, err)
	}

	return nil
}

// PortForwards returns the local ports of the active tunnels in ascending order.
func (r *Release) PortForwards() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ports := make([]int, 0, len(r.tunnels))
	for port := range r.tunnels {
		ports = append(ports, port)
	}
	slices.Sort(ports)

	return ports
}

// ExecuteCommandOnAllPods runs command in every pod matching selector, one pod at a time,
// and stops at the first failure. An empty selector selects the pods of the release.
func (r *Release) ExecuteCommandOnAllPods(ctx context.Context, command, selector string) error {
	if r.isClosed() {
		return ErrClosed
	}

	if selector == "" {
		selector = DefaultSelector(r.name)
	}

	pods, err := r.kubectl.PodNames(ctx, selector, r.cluster)
	if err != nil {
		return err
	}

	for _, pod := range pods {
		zap.S().Infof("Executing command in pod '%s' of release '%s'", pod, r.name)
		if err = r.kubectl.Exec(ctx, pod, command, r.cluster); err != nil {
			return err
		}
	}

	return nil
}

func (r *Release) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.closed
}

// Close stops every tunnel and then uninstalls the release. Failures are logged, not
// returned; Err reports a failed uninstall afterwards. Calling Close again does nothing.
func (r *Release) Close(ctx context.Context) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	tunnels := r.tunnels
	r.tunnels = map[int]*tunnel{}
	r.mu.Unlock()

	if err := stopTunnels(tunnels); err != nil {
		zap.S().Warnf("Stopping port-forwards of release '%s' failed: %s", r.name, err)
	}

	if err := r.helm.Uninstall(ctx, r.name, r.cluster); err != nil {
		zap.S().Errorf("Tearing down release '%s' failed: %s", r.name, err)

		r.mu.Lock()
		r.teardownErr = err
		r.mu.Unlock()
		return
	}

	zap.S().Infof("Release '%s' torn down", r.name)
}

// Err returns the uninstall failure recorded by Close, if any.
func (r *Release) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.teardownErr
}

func stopTunnels(tunnels map[int]*tunnel) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs *multierror.Error
	)

	for port, t := range tunnels {
		g.Go(func() error {
			if err := t.stop(); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("port-forward to %s on local port %d: %w", t.target, port, err))
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()

	return errs.ErrorOrNil()
}
