package release

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chartpilot/chartpilot/pkg/helm"
	"github.com/chartpilot/chartpilot/pkg/kube"
	"github.com/chartpilot/chartpilot/pkg/kubectl"
	"github.com/chartpilot/chartpilot/pkg/process/processtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelease(launcher *processtest.Launcher, kc *kube.ClusterContext) *Release {
	return New("r1", helm.New(launcher, ""), kubectl.New(launcher, ""), kc)
}

func forwarding(port string) processtest.Response {
	return processtest.Response{
		Lines: []string{
			"Forwarding from 127.0.0.1:" + port + " -> 1433",
			"Forwarding from [::1]:" + port + " -> 1433",
		},
		Hold: true,
	}
}

func TestParseForwardedPort(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		port    int
		matched bool
	}{
		{
			name:    "IPv4 tunnel",
			line:    "Forwarding from 127.0.0.1:54321 -> 1433",
			port:    54321,
			matched: true,
		},
		{
			name:    "IPv6 tunnel",
			line:    "Forwarding from [::1]:8080 -> 80",
			port:    8080,
			matched: true,
		},
		{
			name: "Error output",
			line: `Error from server (NotFound): services "r1-mssql" not found`,
		},
		{
			name: "Prefix without port",
			line: "Forwarding from somewhere",
		},
		{
			name: "Empty line",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			port, matched := parseForwardedPort(test.line)
			assert.Equal(t, test.port, port)
			assert.Equal(t, test.matched, matched)
		})
	}
}

func TestStartPortForward(t *testing.T) {
	launcher := processtest.New().On("kubectl port-forward service/r1-mssql", forwarding("54321"))
	r := newRelease(launcher, &kube.ClusterContext{Namespace: "db"})

	port, err := r.StartPortForwardForService(context.Background(), "r1-mssql", 1433, 0)
	require.NoError(t, err)

	assert.Equal(t, 54321, port)
	assert.Equal(t, []int{54321}, r.PortForwards())

	running := launcher.Running()
	require.Len(t, running, 1)
	assert.Equal(t, `port-forward service/r1-mssql :1433 -n "db"`, running[0].Args)
	assert.False(t, running[0].Mute)

	r.Close(context.Background())
	assert.Empty(t, launcher.Running())
	assert.Empty(t, r.PortForwards())
}

func TestStartPortForward_Pod(t *testing.T) {
	launcher := processtest.New().On("kubectl port-forward pod/r1-mssql-0", forwarding("15000"))
	r := newRelease(launcher, nil)

	port, err := r.StartPortForwardForPod(context.Background(), "r1-mssql-0", 1433, 15000)
	require.NoError(t, err)

	assert.Equal(t, 15000, port)
	assert.Equal(t, "port-forward pod/r1-mssql-0 15000:1433", launcher.Running()[0].Args)

	r.Close(context.Background())
}

func TestStartPortForward_NotForwarding(t *testing.T) {
	launcher := processtest.New().On("kubectl port-forward", processtest.Response{
		Lines: []string{`Error from server (NotFound): services "missing" not found`},
		Err:   errors.New("exit status 1"),
	})
	r := newRelease(launcher, nil)

	port, err := r.StartPortForwardForService(context.Background(), "missing", 1433, 0)
	require.NoError(t, err)

	assert.Zero(t, port)
	assert.Empty(t, r.PortForwards())
}

func TestStartPortForward_NoOutput(t *testing.T) {
	launcher := processtest.New()
	r := newRelease(launcher, nil)

	port, err := r.StartPortForwardForService(context.Background(), "quiet", 1433, 0)
	require.NoError(t, err)

	assert.Zero(t, port)
}

func TestStartPortForward_ContextCancelledBeforeReady(t *testing.T) {
	launcher := processtest.New().On("kubectl port-forward", processtest.Response{Hold: true})
	r := newRelease(launcher, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.StartPortForwardForService(ctx, "slow", 1433, 0)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Empty(t, launcher.Running())
	assert.Empty(t, r.PortForwards())
}

func TestStartPortForward_OutlivesStartContext(t *testing.T) {
	launcher := processtest.New().On("kubectl port-forward", forwarding("54321"))
	r := newRelease(launcher, nil)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := r.StartPortForwardForService(ctx, "r1-mssql", 1433, 0)
	require.NoError(t, err)
	cancel()

	assert.Len(t, launcher.Running(), 1)

	r.Close(context.Background())
}

func TestStopPortForward_IsIndependent(t *testing.T) {
	launcher := processtest.New().
		On("kubectl port-forward service/first", forwarding("40001")).
		On("kubectl port-forward service/second", forwarding("40002"))
	r := newRelease(launcher, nil)

	first, err := r.StartPortForwardForService(context.Background(), "first", 80, 0)
	require.NoError(t, err)
	second, err := r.StartPortForwardForService(context.Background(), "second", 80, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{40001, 40002}, r.PortForwards())

	require.NoError(t, r.StopPortForward(first))

	running := launcher.Running()
	require.Len(t, running, 1)
	assert.Equal(t, "port-forward service/second :80", running[0].Args)
	assert.Equal(t, []int{second}, r.PortForwards())

	require.NoError(t, r.StopPortForward(second))
	assert.Empty(t, launcher.Running())

	err = r.StopPortForward(second)
	assert.ErrorIs(t, err, ErrNoPortForward)
}

func TestClose_IsIdempotent(t *testing.T) {
	launcher := processtest.New()
	r := newRelease(launcher, &kube.ClusterContext{Namespace: "db"})

	r.Close(context.Background())
	r.Close(context.Background())

	uninstalls := launcher.CallsWithPrefix("helm uninstall")
	require.Len(t, uninstalls, 1)
	assert.Equal(t, `uninstall r1 --wait -n "db"`, uninstalls[0].Args)
}

func TestClose_StopsTunnelsBeforeUninstall(t *testing.T) {
	launcher := processtest.New().
		On("kubectl port-forward", forwarding("54321")).
		On("helm uninstall", processtest.Response{Err: errors.New("release: not found")})
	r := newRelease(launcher, nil)

	_, err := r.StartPortForwardForService(context.Background(), "r1-mssql", 1433, 0)
	require.NoError(t, err)

	r.Close(context.Background())
	require.EqualError(t, r.Err(), "uninstalling release 'r1': release: not found")

	assert.Empty(t, launcher.Running())

	calls := launcher.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "kubectl", calls[0].Command)
	assert.Equal(t, "helm", calls[1].Command)

	// The failed teardown is not retried.
	r.Close(context.Background())
	assert.Error(t, r.Err())
	assert.Len(t, launcher.CallsWithPrefix("helm uninstall"), 1)
}

func TestOperationsAfterClose(t *testing.T) {
	launcher := processtest.New()
	r := newRelease(launcher, nil)
	r.Close(context.Background())

	_, err := r.StartPortForwardForService(context.Background(), "r1-mssql", 1433, 0)
	assert.ErrorIs(t, err, ErrClosed)

	err = r.ExecuteCommandOnAllPods(context.Background(), "ls", "")
	assert.ErrorIs(t, err, ErrClosed)

	assert.Empty(t, launcher.CallsWithPrefix("kubectl"))
}

func TestExecuteCommandOnAllPods(t *testing.T) {
	launcher := processtest.New().On("kubectl get pods", processtest.Response{Lines: []string{"'r1-0 r1-1'"}})
	r := newRelease(launcher, nil)

	require.NoError(t, r.ExecuteCommandOnAllPods(context.Background(), "cat /etc/hostname", ""))

	pods := launcher.CallsWithPrefix("kubectl get pods")
	require.Len(t, pods, 1)
	assert.Equal(t, "get pods -l app.kubernetes.io/instance=r1 -o jsonpath='{.items[*].metadata.name}'", pods[0].Args)

	execs := launcher.CallsWithPrefix("kubectl exec")
	require.Len(t, execs, 2)
	assert.Equal(t, "exec pod/r1-0 -- cat /etc/hostname", execs[0].Args)
	assert.Equal(t, "exec pod/r1-1 -- cat /etc/hostname", execs[1].Args)
}

func TestExecuteCommandOnAllPods_StopsAtFirstFailure(t *testing.T) {
	launcher := processtest.New().
		On("kubectl get pods", processtest.Response{Lines: []string{"'a b c'"}}).
		On("kubectl exec pod/b", processtest.Response{Err: errors.New("exit status 126")})
	r := newRelease(launcher, nil)

	err := r.ExecuteCommandOnAllPods(context.Background(), "true", "app=db")
	require.EqualError(t, err, "executing command in pod 'b': exit status 126")

	execs := launcher.CallsWithPrefix("kubectl exec")
	require.Len(t, execs, 2)
	assert.Contains(t, launcher.CallsWithPrefix("kubectl get pods")[0].Args, "-l app=db ")
}
