package params

import "github.com/chartpilot/chartpilot/pkg/kube"

// ApplyHelmContext appends the package manager's spelling of every set context field.
func (b *Builder) ApplyHelmContext(c *kube.ClusterContext) {
	if c == nil {
		return
	}

	if c.BurstLimit != nil {
		b.Addf("--burst-limit \"%d\"", *c.BurstLimit)
	}
	if c.Debug != nil && *c.Debug {
		b.Add("--debug")
	}
	if c.APIServer != "" {
		b.Addf("--kube-apiserver \"%s\"", c.APIServer)
	}
	for _, group := range c.AsGroup {
		b.Addf("--kube-as-group \"%s\"", group)
	}
	if c.AsUser != "" {
		b.Addf("--kube-as-user \"%s\"", c.AsUser)
	}
	if c.CAFile != "" {
		b.Addf("--kube-ca-file \"%s\"", c.CAFile)
	}
	if c.Context != "" {
		b.Addf("--kube-context \"%s\"", c.Context)
	}
	if c.InsecureSkipTLSVerify != nil && *c.InsecureSkipTLSVerify {
		b.Add("--kube-insecure-skip-tls-verify")
	}
	if c.TLSServerName != "" {
		b.Addf("--kube-tls-server-name \"%s\"", c.TLSServerName)
	}
	if c.Token != "" {
		b.Addf("--kube-token \"%s\"", c.Token)
	}
	if c.KubeConfig != "" {
		b.Addf("--kubeconfig \"%s\"", c.KubeConfig)
	}
	if c.Namespace != "" {
		b.Addf("-n \"%s\"", c.Namespace)
	}
}

// ApplyKubectlContext appends the control tool's spelling of every set context field.
// The control tool has no client-side burst limit, so BurstLimit is not forwarded.
func (b *Builder) ApplyKubectlContext(c *kube.ClusterContext) {
	if c == nil {
		return
	}

	if c.Debug != nil && *c.Debug {
		b.Add("-v 6")
	}
	if c.APIServer != "" {
		b.Addf("--server \"%s\"", c.APIServer)
	}
	for _, group := range c.AsGroup {
		b.Addf("--as-group \"%s\"", group)
	}
	if c.AsUser != "" {
		b.Addf("--as \"%s\"", c.AsUser)
	}
	if c.CAFile != "" {
		b.Addf("--certificate-authority \"%s\"", c.CAFile)
	}
	if c.Context != "" {
		b.Addf("--context \"%s\"", c.Context)
	}
	if c.InsecureSkipTLSVerify != nil && *c.InsecureSkipTLSVerify {
		b.Add("--insecure-skip-tls-verify")
	}
	if c.TLSServerName != "" {
		b.Addf("--tls-server-name \"%s\"", c.TLSServerName)
	}
	if c.Token != "" {
		b.Addf("--token \"%s\"", c.Token)
	}
	if c.KubeConfig != "" {
		b.Addf("--kubeconfig \"%s\"", c.KubeConfig)
	}
	if c.Namespace != "" {
		b.Addf("-n \"%s\"", c.Namespace)
	}
}
