package deploy

import (
	"github.com/chartpilot/chartpilot/pkg/cli/cmd"
	"github.com/chartpilot/chartpilot/pkg/log"
	"github.com/urfave/cli/v2"
)

func Validate(ctx *cli.Context) error {
	definitionFile := cmd.DeployArgs.DefinitionFile
	if ctx.Args().Present() {
		definitionFile = ctx.Args().First()
	}

	if _, err := loadDefinition(definitionFile); err != nil {
		return err
	}

	log.Auditf("The release definition '%s' is valid.", definitionFile)

	return nil
}
