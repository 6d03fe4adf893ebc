package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// NewValidateCommand accepts the definition file either through the flag or as the only
// argument; the argument wins.
func NewValidateCommand(action func(*cli.Context) error) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a release definition without touching the cluster",
		UsageText: fmt.Sprintf("%s validate [OPTIONS] [DEFINITION_FILE]", appName),
		ArgsUsage: "[DEFINITION_FILE]",
		Action:    action,
		Flags: []cli.Flag{
			DefinitionFileFlag,
		},
	}
}
