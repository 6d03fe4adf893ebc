package kube

import (
	"context"
	"fmt"
	"time"
)

const defaultNamespace = "default"

// ClusterContext describes how the external tools reach the target cluster. Every field is
// optional; nil or empty values are not passed to the tools. A ClusterContext is treated as
// read-only once handed to an installer and may be shared between operations.
type ClusterContext struct {
	// Client-side default throttling limit.
	BurstLimit *int `yaml:"burstLimit"`
	// Enable verbose output.
	Debug *bool `yaml:"debug"`
	// The address and the port for the Kubernetes API server.
	APIServer string `yaml:"apiServer"`
	// Groups to impersonate for the operation.
	AsGroup []string `yaml:"asGroup"`
	// Username to impersonate for the operation.
	AsUser string `yaml:"asUser"`
	// The certificate authority file for the API server connection.
	CAFile string `yaml:"caFile"`
	// Name of the kubeconfig context to use.
	Context string `yaml:"context"`
	// If true, the API server's certificate will not be checked for validity.
	InsecureSkipTLSVerify *bool `yaml:"insecureSkipTLSVerify"`
	// Server name to use for API server certificate validation.
	TLSServerName string `yaml:"tlsServerName"`
	// Bearer token used for authentication.
	Token string `yaml:"token"`
	// Path to the kubeconfig file.
	KubeConfig string `yaml:"kubeconfig"`
	// Namespace scope for the request.
	Namespace string `yaml:"namespace"`
}

// ResolveServiceAddress returns the in-cluster DNS name of a service.
func (c *ClusterContext) ResolveServiceAddress(serviceName string) string {
	namespace := defaultNamespace
	if c != nil && c.Namespace != "" {
		namespace = c.Namespace
	}

	return fmt.Sprintf("%s.%s.svc.cluster.local", serviceName, namespace)
}

// ResolveWorkingServiceAddress resolves the service address and waits until it is resolvable.
func (c *ClusterContext) ResolveWorkingServiceAddress(ctx context.Context, serviceName string, timeout time.Duration) (string, error) {
	address := c.ResolveServiceAddress(serviceName)

	if err := WaitForDNS(ctx, address, timeout); err != nil {
		return "", fmt.Errorf("waiting for service %q: %w", serviceName, err)
	}

	return address, nil
}

// Bool returns a pointer to b, for filling the optional ClusterContext toggles.
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to i.
func Int(i int) *int {
	return &i
}
