// Package chart provides the ways a chart can be referenced by an installation.
package chart

import "github.com/chartpilot/chartpilot/pkg/params"

// Source contributes the chart reference to the install-or-upgrade arguments. It is
// applied last, after every flag.
type Source interface {
	ApplyInstallParameters(b *params.Builder)
}

// LocalPath references an unpacked chart directory or a chart archive on disk.
type LocalPath struct {
	Path string
}

func (l LocalPath) ApplyInstallParameters(b *params.Builder) {
	b.Add(l.Path)
}

// Repository locates a chart repository.
type Repository struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// UseLocallyRegistered resolves the URL against the repositories registered in the
	// local helm client instead of passing it (and the credentials) explicitly.
	UseLocallyRegistered bool `yaml:"useLocallyRegistered"`
}

// LocallyAvailable refers to charts reachable through the repositories already registered
// in the local helm client, e.g. `bitnami/nginx`.
var LocallyAvailable = Repository{}

// FromRepository references a chart by name in a repository.
type FromRepository struct {
	Repository Repository
	Name       string
	// Version is optional; the latest version is installed when empty.
	Version string
}

func (r FromRepository) ApplyInstallParameters(b *params.Builder) {
	if r.Repository.URL != "" && !r.Repository.UseLocallyRegistered {
		b.Addf("--repo %s", r.Repository.URL)
		if r.Repository.Username != "" {
			b.Addf("--username \"%s\"", r.Repository.Username)
			b.Addf("--password \"%s\"", r.Repository.Password)
		}
	}

	if r.Version != "" {
		b.Addf("--version %s", r.Version)
	}

	b.Add(r.Name)
}
