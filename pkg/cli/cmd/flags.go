package cmd

import (
	"time"

	"github.com/urfave/cli/v2"
)

type DeployFlags struct {
	DefinitionFile string
	LogFile        string
	HelmBinary     string
	KubectlBinary  string
	Keep           bool
	WaitForDNS     time.Duration
}

var DeployArgs DeployFlags

var (
	DefinitionFileFlag = &cli.StringFlag{
		Name:        "definition-file",
		Aliases:     []string{"f"},
		Usage:       "Path to the release definition file",
		Value:       "release.yaml",
		Destination: &DeployArgs.DefinitionFile,
	}
	LogFileFlag = &cli.StringFlag{
		Name:        "log-file",
		Usage:       "Path to the diagnostic log file",
		Value:       "chartpilot.log",
		Destination: &DeployArgs.LogFile,
	}
	HelmBinaryFlag = &cli.StringFlag{
		Name:        "helm-binary",
		Usage:       "Helm executable to run",
		Value:       "helm",
		EnvVars:     []string{"CHARTPILOT_HELM"},
		Destination: &DeployArgs.HelmBinary,
	}
	KubectlBinaryFlag = &cli.StringFlag{
		Name:        "kubectl-binary",
		Usage:       "kubectl executable to run",
		Value:       "kubectl",
		EnvVars:     []string{"CHARTPILOT_KUBECTL"},
		Destination: &DeployArgs.KubectlBinary,
	}
)
