// Package config reads the release definition file consumed by the command line.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/chartpilot/chartpilot/pkg/chart"
	"github.com/chartpilot/chartpilot/pkg/kube"
	"github.com/chartpilot/chartpilot/pkg/mssql"
	"gopkg.in/yaml.v3"
)

const PresetMSSQL = "mssql"

type Definition struct {
	ReleaseName string              `yaml:"releaseName"`
	Chart       Chart               `yaml:"chart"`
	Preset      string              `yaml:"preset"`
	Overrides   map[string]any      `yaml:"overrides"`
	Timeout     string              `yaml:"timeout"`
	Cluster     kube.ClusterContext `yaml:"cluster"`
	// PortForwards are opened once the release is installed.
	PortForwards []PortForward `yaml:"portForwards"`
	// Exec commands run on the pods of the release once it is installed.
	Exec []Exec `yaml:"exec"`
}

type Chart struct {
	Path       string           `yaml:"path"`
	Repository chart.Repository `yaml:"repository"`
	Name       string           `yaml:"name"`
	Version    string           `yaml:"version"`
	// Cache downloads the chart archive once into CacheDir and installs it from there.
	Cache    bool   `yaml:"cache"`
	CacheDir string `yaml:"cacheDir"`
}

type PortForward struct {
	Kind       string `yaml:"kind"`
	Name       string `yaml:"name"`
	RemotePort int    `yaml:"remotePort"`
	LocalPort  int    `yaml:"localPort"`
}

type Exec struct {
	Command  string `yaml:"command"`
	Selector string `yaml:"selector"`
}

func Parse(data []byte) (*Definition, error) {
	var definition Definition

	if err := yaml.Unmarshal(data, &definition); err != nil {
		return nil, fmt.Errorf("could not parse the release definition: %w", err)
	}

	return &definition, nil
}

// InstallTimeout returns the parsed timeout, zero when unset. Validate reports unparsable
// values.
func (d *Definition) InstallTimeout() time.Duration {
	if d.Timeout == "" {
		return 0
	}

	timeout, err := time.ParseDuration(d.Timeout)
	if err != nil {
		return 0
	}

	return timeout
}

// OverrideValues returns the preset values with Overrides applied on top. It returns nil
// when there is neither a preset nor overrides.
func (d *Definition) OverrideValues() (map[string]any, error) {
	values := map[string]any{}

	switch d.Preset {
	case "":
	case PresetMSSQL:
		data, err := json.Marshal(mssql.DefaultConfiguration())
		if err != nil {
			return nil, fmt.Errorf("serializing preset: %w", err)
		}
		if err = json.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("reading preset: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown preset '%s'", d.Preset)
	}

	for key, value := range d.Overrides {
		values[key] = value
	}

	if len(values) == 0 {
		return nil, nil
	}

	return values, nil
}
