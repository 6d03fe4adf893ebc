package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func NewUninstallCommand(action func(*cli.Context) error) *cli.Command {
	return &cli.Command{
		Name:      "uninstall",
		Usage:     "Uninstall a release left installed",
		UsageText: fmt.Sprintf("%s uninstall [OPTIONS]", appName),
		Action:    action,
		Flags: []cli.Flag{
			DefinitionFileFlag,
			LogFileFlag,
			HelmBinaryFlag,
		},
	}
}
