package main

import (
	"os"

	"github.com/chartpilot/chartpilot/pkg/cli/cmd"
	"github.com/chartpilot/chartpilot/pkg/cli/deploy"
	"github.com/chartpilot/chartpilot/pkg/log"
)

func main() {
	app := cmd.NewApp(
		cmd.NewInstallCommand(deploy.Install),
		cmd.NewUninstallCommand(deploy.Uninstall),
		cmd.NewValidateCommand(deploy.Validate),
		cmd.NewVersionCommand(deploy.Version),
	)

	if err := app.Run(os.Args); err != nil {
		log.AuditError(err.Error())
		os.Exit(1)
	}
}
