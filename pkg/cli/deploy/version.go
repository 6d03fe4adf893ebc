package deploy

import (
	"github.com/chartpilot/chartpilot/pkg/cli/cmd"
	"github.com/chartpilot/chartpilot/pkg/log"
	"github.com/chartpilot/chartpilot/pkg/version"
	"github.com/urfave/cli/v2"
)

func Version(_ *cli.Context) error {
	if cmd.VersionArgs.Short {
		log.Audit(version.GetVersion())
		return nil
	}

	log.Auditf("chartpilot version: %s", version.GetVersion())
	return nil
}
