package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

type VersionFlags struct {
	Short bool
}

var VersionArgs VersionFlags

func NewVersionCommand(action func(*cli.Context) error) *cli.Command {
	return &cli.Command{
		Name:      "version",
		Usage:     "Print the chartpilot version",
		UsageText: fmt.Sprintf("%s version [--short]", appName),
		Action:    action,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "short",
				Usage:       "Print the bare version only",
				Destination: &VersionArgs.Short,
			},
		},
	}
}
