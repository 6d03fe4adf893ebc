// Package kubectl drives the cluster control tool and decodes its JSON output.
package kubectl

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chartpilot/chartpilot/pkg/kube"
	"github.com/chartpilot/chartpilot/pkg/params"
	"github.com/chartpilot/chartpilot/pkg/process"
	corev1 "k8s.io/api/core/v1"
)

const defaultBinary = "kubectl"

// Target kinds accepted by PortForward.
const (
	KindService = "service"
	KindPod     = "pod"
)

type Client struct {
	launcher process.Launcher
	binary   string
}

// New returns a Client running binary through l. An empty binary selects "kubectl" from PATH.
func New(l process.Launcher, binary string) *Client {
	if binary == "" {
		binary = defaultBinary
	}

	return &Client{
		launcher: l,
		binary:   binary,
	}
}

// Secrets lists the secrets of every namespace.
func (k *Client) Secrets(ctx context.Context, kc *kube.ClusterContext) ([]corev1.Secret, error) {
	output, err := process.ExecuteToEnd(ctx, k.launcher, k.binary, getSecretsArgs(kc), true)
	if err != nil {
		return nil, fmt.Errorf("getting secrets: %w", err)
	}

	var list corev1.SecretList
	if err = json.Unmarshal([]byte(output), &list); err != nil {
		return nil, fmt.Errorf("decoding secrets: %w", err)
	}

	return list.Items, nil
}

func getSecretsArgs(kc *kube.ClusterContext) string {
	b := params.New("get secrets", "-A", "-o json")
	b.ApplyKubectlContext(kc)

	return b.Build()
}

func (k *Client) DeleteSecret(ctx context.Context, name string, kc *kube.ClusterContext) error {
	if _, err := process.ExecuteToEnd(ctx, k.launcher, k.binary, deleteSecretArgs(name, kc), false); err != nil {
		return fmt.Errorf("deleting secret '%s': %w", name, err)
	}

	return nil
}

func deleteSecretArgs(name string, kc *kube.ClusterContext) string {
	b := params.New("delete secrets", name)
	b.ApplyKubectlContext(kc)

	return b.Build()
}

// Events lists the events visible in the context's namespace.
func (k *Client) Events(ctx context.Context, kc *kube.ClusterContext) ([]corev1.Event, error) {
	output, err := process.ExecuteToEnd(ctx, k.launcher, k.binary, getEventsArgs(kc), true)
	if err != nil {
		return nil, fmt.Errorf("getting events: %w", err)
	}

	var list corev1.EventList
	if err = json.Unmarshal([]byte(output), &list); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}

	return list.Items, nil
}

func getEventsArgs(kc *kube.ClusterContext) string {
	b := params.New("get events", "-o json")
	b.ApplyKubectlContext(kc)

	return b.Build()
}

// PortForward starts a tunnel to kind/name. The process runs until the stream is closed.
// A localPort of 0 lets the tool pick a free port.
func (k *Client) PortForward(ctx context.Context, kind, name string, remotePort, localPort int, kc *kube.ClusterContext) *process.Stream {
	return k.launcher.Execute(ctx, k.binary, portForwardArgs(kind, name, remotePort, localPort, kc), false)
}

func portForwardArgs(kind, name string, remotePort, localPort int, kc *kube.ClusterContext) string {
	b := params.New("port-forward")
	b.Addf("%s/%s", kind, name)
	if localPort > 0 {
		b.Addf("%d:%d", localPort, remotePort)
	} else {
		b.Addf(":%d", remotePort)
	}
	b.ApplyKubectlContext(kc)

	return b.Build()
}

// PodNames returns the names of the pods matching selector.
func (k *Client) PodNames(ctx context.Context, selector string, kc *kube.ClusterContext) ([]string, error) {
	output, err := process.ExecuteToEnd(ctx, k.launcher, k.binary, getPodsArgs(selector, kc), false)
	if err != nil {
		return nil, fmt.Errorf("getting pods: %w", err)
	}

	return strings.FieldsFunc(output, func(r rune) bool {
		return r == '\'' || r == ' ' || r == '\n'
	}), nil
}

func getPodsArgs(selector string, kc *kube.ClusterContext) string {
	b := params.New("get pods")
	b.Addf("-l %s", selector)
	b.Add("-o jsonpath='{.items[*].metadata.name}'")
	b.ApplyKubectlContext(kc)

	return b.Build()
}

// Exec runs command inside the pod.
func (k *Client) Exec(ctx context.Context, pod, command string, kc *kube.ClusterContext) error {
	if _, err := process.ExecuteToEnd(ctx, k.launcher, k.binary, execArgs(pod, command, kc), false); err != nil {
		return fmt.Errorf("executing command in pod '%s': %w", pod, err)
	}

	return nil
}

func execArgs(pod, command string, kc *kube.ClusterContext) string {
	b := params.New("exec")
	b.Addf("pod/%s", pod)
	b.ApplyKubectlContext(kc)
	b.Add("--", command)

	return b.Build()
}
