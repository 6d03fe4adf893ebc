package params

import (
	"testing"

	"github.com/chartpilot/chartpilot/pkg/kube"
	"github.com/stretchr/testify/assert"
)

func TestApplyHelmContext(t *testing.T) {
	tests := []struct {
		name     string
		context  *kube.ClusterContext
		expected []string
	}{
		{
			name:     "Nil context",
			expected: nil,
		},
		{
			name:     "Empty context",
			context:  &kube.ClusterContext{},
			expected: nil,
		},
		{
			name:     "Burst limit",
			context:  &kube.ClusterContext{BurstLimit: kube.Int(200)},
			expected: []string{`--burst-limit "200"`},
		},
		{
			name:     "Debug",
			context:  &kube.ClusterContext{Debug: kube.Bool(true)},
			expected: []string{"--debug"},
		},
		{
			name:     "Debug disabled",
			context:  &kube.ClusterContext{Debug: kube.Bool(false)},
			expected: nil,
		},
		{
			name:     "API server",
			context:  &kube.ClusterContext{APIServer: "https://10.0.0.1:6443"},
			expected: []string{`--kube-apiserver "https://10.0.0.1:6443"`},
		},
		{
			name:     "Impersonated groups",
			context:  &kube.ClusterContext{AsGroup: []string{"admins", "devs"}},
			expected: []string{`--kube-as-group "admins"`, `--kube-as-group "devs"`},
		},
		{
			name:     "Impersonated user",
			context:  &kube.ClusterContext{AsUser: "jane"},
			expected: []string{`--kube-as-user "jane"`},
		},
		{
			name:     "CA file",
			context:  &kube.ClusterContext{CAFile: "/etc/ca.pem"},
			expected: []string{`--kube-ca-file "/etc/ca.pem"`},
		},
		{
			name:     "Context",
			context:  &kube.ClusterContext{Context: "kind-dev"},
			expected: []string{`--kube-context "kind-dev"`},
		},
		{
			name:     "Insecure skip TLS verify",
			context:  &kube.ClusterContext{InsecureSkipTLSVerify: kube.Bool(true)},
			expected: []string{"--kube-insecure-skip-tls-verify"},
		},
		{
			name:     "TLS server name",
			context:  &kube.ClusterContext{TLSServerName: "api.local"},
			expected: []string{`--kube-tls-server-name "api.local"`},
		},
		{
			name:     "Token",
			context:  &kube.ClusterContext{Token: "abc"},
			expected: []string{`--kube-token "abc"`},
		},
		{
			name:     "Kubeconfig",
			context:  &kube.ClusterContext{KubeConfig: "/home/me/.kube/config"},
			expected: []string{`--kubeconfig "/home/me/.kube/config"`},
		},
		{
			name:     "Namespace",
			context:  &kube.ClusterContext{Namespace: "db"},
			expected: []string{`-n "db"`},
		},
		{
			name: "All fields in fixed order",
			context: &kube.ClusterContext{
				Namespace:             "db",
				KubeConfig:            "/kc",
				Token:                 "t",
				TLSServerName:         "s",
				InsecureSkipTLSVerify: kube.Bool(true),
				Context:               "c",
				CAFile:                "/ca",
				AsUser:                "u",
				AsGroup:               []string{"g"},
				APIServer:             "a",
				Debug:                 kube.Bool(true),
				BurstLimit:            kube.Int(5),
			},
			expected: []string{
				`--burst-limit "5"`,
				"--debug",
				`--kube-apiserver "a"`,
				`--kube-as-group "g"`,
				`--kube-as-user "u"`,
				`--kube-ca-file "/ca"`,
				`--kube-context "c"`,
				"--kube-insecure-skip-tls-verify",
				`--kube-tls-server-name "s"`,
				`--kube-token "t"`,
				`--kubeconfig "/kc"`,
				`-n "db"`,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := New()
			b.ApplyHelmContext(test.context)

			if test.expected == nil {
				assert.Empty(t, b.Tokens())
				return
			}
			assert.Equal(t, test.expected, b.Tokens())
		})
	}
}

func TestApplyKubectlContext(t *testing.T) {
	tests := []struct {
		name     string
		context  *kube.ClusterContext
		expected []string
	}{
		{
			name:     "Nil context",
			expected: nil,
		},
		{
			name:     "Burst limit is not forwarded",
			context:  &kube.ClusterContext{BurstLimit: kube.Int(200)},
			expected: nil,
		},
		{
			name:     "Debug",
			context:  &kube.ClusterContext{Debug: kube.Bool(true)},
			expected: []string{"-v 6"},
		},
		{
			name:     "API server",
			context:  &kube.ClusterContext{APIServer: "https://10.0.0.1:6443"},
			expected: []string{`--server "https://10.0.0.1:6443"`},
		},
		{
			name:     "Impersonation",
			context:  &kube.ClusterContext{AsGroup: []string{"admins"}, AsUser: "jane"},
			expected: []string{`--as-group "admins"`, `--as "jane"`},
		},
		{
			name:     "CA file",
			context:  &kube.ClusterContext{CAFile: "/etc/ca.pem"},
			expected: []string{`--certificate-authority "/etc/ca.pem"`},
		},
		{
			name:     "Context",
			context:  &kube.ClusterContext{Context: "kind-dev"},
			expected: []string{`--context "kind-dev"`},
		},
		{
			name:     "Insecure skip TLS verify",
			context:  &kube.ClusterContext{InsecureSkipTLSVerify: kube.Bool(true)},
			expected: []string{"--insecure-skip-tls-verify"},
		},
		{
			name:     "TLS server name",
			context:  &kube.ClusterContext{TLSServerName: "api.local"},
			expected: []string{`--tls-server-name "api.local"`},
		},
		{
			name:     "Token",
			context:  &kube.ClusterContext{Token: "abc"},
			expected: []string{`--token "abc"`},
		},
		{
			name:     "Kubeconfig and namespace",
			context:  &kube.ClusterContext{KubeConfig: "/kc", Namespace: "db"},
			expected: []string{`--kubeconfig "/kc"`, `-n "db"`},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := New()
			b.ApplyKubectlContext(test.context)

			if test.expected == nil {
				assert.Empty(t, b.Tokens())
				return
			}
			assert.Equal(t, test.expected, b.Tokens())
		})
	}
}
