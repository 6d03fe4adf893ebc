package deploy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/chartpilot/chartpilot/pkg/cache"
	"github.com/chartpilot/chartpilot/pkg/chart"
	"github.com/chartpilot/chartpilot/pkg/cli/cmd"
	"github.com/chartpilot/chartpilot/pkg/config"
	"github.com/chartpilot/chartpilot/pkg/helm"
	"github.com/chartpilot/chartpilot/pkg/log"
	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const checkLogMessage = "Please check the log file for more information."

// Attempts to parse the specified release definition file, displaying the appropriate messages to
// the user. Returns nil if the definition could not be read or parsed.
func parseDefinition(definitionFile string) *config.Definition {
	data, err := os.ReadFile(definitionFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Auditf("The specified definition file '%s' could not be found.", definitionFile)
		} else {
			cmd.LogError(&cmd.Error{
				UserMessage: fmt.Sprintf("The specified definition file '%s' could not be read.", definitionFile),
				Cause:       err,
			}, checkLogMessage)
		}
		return nil
	}

	definition, err := config.Parse(data)
	if err != nil {
		cmd.LogError(&cmd.Error{
			UserMessage: fmt.Sprintf("The release definition file '%s' could not be parsed.", definitionFile),
			Cause:       err,
		}, checkLogMessage)
		return nil
	}

	return definition
}

// Runs the definition validation, displaying every failure to the user. Returns 'true' if the
// definition is valid; 'false' otherwise.
func isDefinitionValid(definition *config.Definition) bool {
	err := config.Validate(definition)
	if err == nil {
		return true
	}

	log.Audit("Release definition validation found the following errors:")

	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			log.Auditf("  %s", e)
		}
	} else {
		log.Auditf("  %s", err)
	}
	zap.S().Errorf("release definition validation failures: %s", err)

	return false
}

// loadDefinition reads and validates the definition file, telling the user what is wrong.
func loadDefinition(definitionFile string) (*config.Definition, error) {
	definition := parseDefinition(definitionFile)
	if definition == nil || !isDefinitionValid(definition) {
		return nil, cli.Exit("", 1)
	}

	return definition, nil
}

// chartSource turns the chart section of the definition into the reference passed to helm,
// downloading the archive first when caching is enabled.
func chartSource(ctx context.Context, h *helm.Client, c config.Chart) (chart.Source, error) {
	switch {
	case c.Path != "":
		return chart.LocalPath{Path: c.Path}, nil
	case c.Cache:
		store, err := cache.New(cacheDir(c))
		if err != nil {
			return nil, err
		}
		return chart.NewCached(ctx, h, store, c.Repository, c.Name, c.Version)
	default:
		return chart.FromRepository{Repository: c.Repository, Name: c.Name, Version: c.Version}, nil
	}
}

func cacheDir(c config.Chart) string {
	if c.CacheDir != "" {
		return c.CacheDir
	}

	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "chartpilot", "charts")
	}

	return filepath.Join(os.TempDir(), "chartpilot", "charts")
}
