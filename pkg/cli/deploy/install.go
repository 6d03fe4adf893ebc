package deploy

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chartpilot/chartpilot/pkg/cli/cmd"
	"github.com/chartpilot/chartpilot/pkg/config"
	"github.com/chartpilot/chartpilot/pkg/installer"
	"github.com/chartpilot/chartpilot/pkg/kubectl"
	"github.com/chartpilot/chartpilot/pkg/log"
	"github.com/chartpilot/chartpilot/pkg/process"
	"github.com/chartpilot/chartpilot/pkg/release"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func Install(c *cli.Context) error {
	args := &cmd.DeployArgs

	// This needs to occur as early as possible so that the subsequent calls can use the log
	if err := log.ConfigureGlobalLogger(args.LogFile); err != nil {
		log.Auditf("The log file '%s' could not be set up: %s", args.LogFile, err)
		return cli.Exit("", 1)
	}

	definition, err := loadDefinition(args.DefinitionFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	inst := installer.New(
		installer.WithOutputWriter(process.ConsoleWriter{}),
		installer.WithHelmBinary(args.HelmBinary),
		installer.WithKubectlBinary(args.KubectlBinary),
	)

	opts := deployOptions{keep: args.Keep, waitForDNS: args.WaitForDNS}
	if err = deployRelease(ctx, inst, definition, opts); err != nil {
		return cli.Exit(checkLogMessage, 1)
	}

	return nil
}

type deployOptions struct {
	keep       bool
	waitForDNS time.Duration
}

// deployRelease installs the release and prepares it for use. Unless keep is set, it then
// holds the release until ctx is done and tears it down.
func deployRelease(ctx context.Context, inst *installer.Installer, definition *config.Definition, opts deployOptions) error {
	source, err := chartSource(ctx, inst.Helm(), definition.Chart)
	if err != nil {
		log.AuditComponentFailed("chart")
		zap.S().Errorf("Resolving chart failed: %s", err)
		return err
	}

	installOpts := installer.Options{
		Timeout: definition.InstallTimeout(),
		Cluster: &definition.Cluster,
	}
	overrides, err := definition.OverrideValues()
	if err != nil {
		return err
	}
	if overrides != nil {
		installOpts.Overrides = overrides
	}

	log.Auditf("Installing release '%s'...", definition.ReleaseName)

	rel, err := inst.Install(ctx, source, definition.ReleaseName, installOpts)
	if err != nil {
		log.AuditComponentFailed("install")
		zap.S().Errorf("Installing release '%s' failed: %s", definition.ReleaseName, err)
		return err
	}
	log.AuditComponentSuccessful("install")

	err = prepareRelease(ctx, rel, definition, opts.waitForDNS)

	if opts.keep && err == nil {
		// Tunnels do not outlive the command.
		for _, port := range rel.PortForwards() {
			if stopErr := rel.StopPortForward(port); stopErr != nil {
				zap.S().Warnf("Stopping port-forward on local port %d failed: %s", port, stopErr)
			}
		}
		log.AuditInfof("Release '%s' is kept installed.", definition.ReleaseName)
		return nil
	}

	if err == nil {
		log.Audit("Press Ctrl+C to uninstall the release.")
		<-ctx.Done()
	}

	// ctx is done at this point; uninstalling must still run.
	rel.Close(context.WithoutCancel(ctx))
	if closeErr := rel.Err(); closeErr != nil {
		log.AuditComponentFailed("uninstall")
		if err == nil {
			err = closeErr
		}
		return err
	}
	log.AuditComponentSuccessful("uninstall")

	return err
}

func prepareRelease(ctx context.Context, rel *release.Release, definition *config.Definition, waitForDNS time.Duration) error {
	kc := &definition.Cluster

	for _, pf := range definition.PortForwards {
		if pf.Kind == kubectl.KindService && waitForDNS > 0 {
			if _, err := kc.ResolveWorkingServiceAddress(ctx, pf.Name, waitForDNS); err != nil {
				log.AuditComponentFailed("dns")
				zap.S().Errorf("Service '%s' did not resolve: %s", pf.Name, err)
				return err
			}
		}

		port, err := rel.StartPortForward(ctx, pf.Kind, pf.Name, pf.RemotePort, pf.LocalPort)
		if err != nil {
			log.AuditComponentFailed("port forward")
			zap.S().Errorf("Port-forward to %s/%s failed: %s", pf.Kind, pf.Name, err)
			return err
		}
		if port == 0 {
			log.AuditComponentFailed("port forward")
			return fmt.Errorf("port-forward to %s/%s did not start", pf.Kind, pf.Name)
		}

		target := pf.Name
		if pf.Kind == kubectl.KindService {
			target = kc.ResolveServiceAddress(pf.Name)
		}
		log.AuditInfof("Forwarding localhost:%d to %s:%d", port, target, pf.RemotePort)
	}

	for _, e := range definition.Exec {
		if err := rel.ExecuteCommandOnAllPods(ctx, e.Command, e.Selector); err != nil {
			log.AuditComponentFailed("exec")
			zap.S().Errorf("Executing '%s' failed: %s", e.Command, err)
			return err
		}
	}

	return nil
}
