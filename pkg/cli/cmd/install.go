package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func NewInstallCommand(action func(*cli.Context) error) *cli.Command {
	return &cli.Command{
		Name:      "install",
		Usage:     "Install a release and keep it until interrupted",
		UsageText: fmt.Sprintf("%s install [OPTIONS]", appName),
		Action:    action,
		Flags: []cli.Flag{
			DefinitionFileFlag,
			LogFileFlag,
			HelmBinaryFlag,
			KubectlBinaryFlag,
			&cli.BoolFlag{
				Name:        "keep",
				Usage:       "Leave the release installed and exit once it is ready",
				Destination: &DeployArgs.Keep,
			},
			&cli.DurationFlag{
				Name:        "wait-for-dns",
				Usage:       "Wait up to this long for forwarded services to resolve in the cluster DNS",
				Destination: &DeployArgs.WaitForDNS,
			},
		},
	}
}
