package deploy

import (
	"github.com/chartpilot/chartpilot/pkg/cli/cmd"
	"github.com/chartpilot/chartpilot/pkg/helm"
	"github.com/chartpilot/chartpilot/pkg/log"
	"github.com/chartpilot/chartpilot/pkg/process"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func Uninstall(c *cli.Context) error {
	args := &cmd.DeployArgs

	if err := log.ConfigureGlobalLogger(args.LogFile); err != nil {
		log.Auditf("The log file '%s' could not be set up: %s", args.LogFile, err)
		return cli.Exit("", 1)
	}

	definition, err := loadDefinition(args.DefinitionFile)
	if err != nil {
		return err
	}

	// helm output goes to the log file; the user sees the audit lines.
	h := helm.New(process.NewRunner(process.LogWriter{}), args.HelmBinary)

	exists, err := h.ReleaseExists(c.Context, definition.ReleaseName, &definition.Cluster)
	if err != nil {
		zap.S().Errorf("Looking up release '%s' failed: %s", definition.ReleaseName, err)
		return cli.Exit(checkLogMessage, 1)
	}
	if !exists {
		log.AuditInfof("Release '%s' is not installed.", definition.ReleaseName)
		return nil
	}

	if err = h.Uninstall(c.Context, definition.ReleaseName, &definition.Cluster); err != nil {
		log.AuditComponentFailed("uninstall")
		zap.S().Error(err)
		return cli.Exit(checkLogMessage, 1)
	}
	log.AuditComponentSuccessful("uninstall")

	return nil
}
