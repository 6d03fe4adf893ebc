package cmd

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/chartpilot/chartpilot/pkg/version"
)

var appName = filepath.Base(os.Args[0])

// NewApp returns the application serving commands. The version command prints the version,
// so the global --version flag stays hidden.
func NewApp(commands ...*cli.Command) *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Usage = "Install Helm charts as disposable releases"
	app.Version = version.GetVersion()
	app.HideVersion = true
	app.EnableBashCompletion = true
	app.Commands = commands

	return app
}
