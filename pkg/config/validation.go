package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/chartpilot/chartpilot/pkg/kubectl"
	"github.com/hashicorp/go-multierror"
	"k8s.io/apimachinery/pkg/util/validation"
)

// helm refuses longer release names.
const maxReleaseNameLength = 53

type validateSection func(d *Definition) []error

// Validate checks the whole definition and reports every problem found.
func Validate(d *Definition) error {
	var result *multierror.Error

	sections := []validateSection{
		validateReleaseName,
		validateChart,
		validateOverrides,
		validateTimeout,
		validatePortForwards,
		validateExec,
	}
	for _, validate := range sections {
		result = multierror.Append(result, validate(d)...)
	}

	return result.ErrorOrNil()
}

func validateReleaseName(d *Definition) []error {
	if d.ReleaseName == "" {
		return []error{fmt.Errorf("the 'releaseName' field is required")}
	}

	var errs []error

	if len(d.ReleaseName) > maxReleaseNameLength {
		errs = append(errs, fmt.Errorf("release name '%s' must be at most %d characters", d.ReleaseName, maxReleaseNameLength))
	}

	if msgs := validation.IsDNS1123Subdomain(d.ReleaseName); len(msgs) > 0 {
		errs = append(errs, fmt.Errorf("release name '%s' is invalid: %s", d.ReleaseName, strings.Join(msgs, "; ")))
	}

	return errs
}

func validateChart(d *Definition) []error {
	c := d.Chart
	var errs []error

	switch {
	case c.Path == "" && c.Name == "":
		errs = append(errs, fmt.Errorf("either 'chart.path' or 'chart.name' must be specified"))
	case c.Path != "" && c.Name != "":
		errs = append(errs, fmt.Errorf("'chart.path' and 'chart.name' cannot both be specified"))
	}

	if c.Path != "" && (c.Repository.URL != "" || c.Version != "" || c.Cache) {
		errs = append(errs, fmt.Errorf("a chart given by 'chart.path' cannot use a repository, a version or the cache"))
	}

	if c.Repository.UseLocallyRegistered && c.Repository.URL == "" && c.Cache {
		errs = append(errs, fmt.Errorf("'chart.repository.url' is required to cache a chart from a locally registered repository"))
	}

	if c.Repository.Password != "" && c.Repository.Username == "" {
		errs = append(errs, fmt.Errorf("'chart.repository.password' requires 'chart.repository.username'"))
	}

	if c.Cache && c.Version == "" {
		errs = append(errs, fmt.Errorf("'chart.version' is required when 'chart.cache' is enabled"))
	}

	if c.CacheDir != "" && !c.Cache {
		errs = append(errs, fmt.Errorf("'chart.cacheDir' requires 'chart.cache' to be enabled"))
	}

	return errs
}

func validateOverrides(d *Definition) []error {
	if _, err := d.OverrideValues(); err != nil {
		return []error{err}
	}

	return nil
}

func validateTimeout(d *Definition) []error {
	if d.Timeout == "" {
		return nil
	}

	timeout, err := time.ParseDuration(d.Timeout)
	if err != nil {
		return []error{fmt.Errorf("timeout '%s' is not a valid duration: %w", d.Timeout, err)}
	}

	if timeout <= 0 {
		return []error{fmt.Errorf("timeout '%s' must be positive", d.Timeout)}
	}

	return nil
}

func validatePortForwards(d *Definition) []error {
	var errs []error

	for i, pf := range d.PortForwards {
		if pf.Kind != kubectl.KindService && pf.Kind != kubectl.KindPod {
			errs = append(errs, fmt.Errorf("port forward %d: kind '%s' must be either '%s' or '%s'", i, pf.Kind, kubectl.KindService, kubectl.KindPod))
		}
		if pf.Name == "" {
			errs = append(errs, fmt.Errorf("port forward %d: 'name' is required", i))
		}
		if msgs := validation.IsValidPortNum(pf.RemotePort); len(msgs) > 0 {
			errs = append(errs, fmt.Errorf("port forward %d: remote port %d is invalid: %s", i, pf.RemotePort, strings.Join(msgs, "; ")))
		}
		if pf.LocalPort != 0 {
			if msgs := validation.IsValidPortNum(pf.LocalPort); len(msgs) > 0 {
				errs = append(errs, fmt.Errorf("port forward %d: local port %d is invalid: %s", i, pf.LocalPort, strings.Join(msgs, "; ")))
			}
		}
	}

	return errs
}

func validateExec(d *Definition) []error {
	var errs []error

	for i, e := range d.Exec {
		if strings.TrimSpace(e.Command) == "" {
			errs = append(errs, fmt.Errorf("exec %d: 'command' is required", i))
		}
	}

	return errs
}
