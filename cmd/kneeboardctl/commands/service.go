package commands

import (
	"context"
	"os"

	"github.com/timberavionics/kneeboardctl/internal/errors"
	"github.com/timberavionics/kneeboardctl/internal/probe"
	"github.com/timberavionics/kneeboardctl/internal/service"
)

// ServiceCmd groups service-management subcommands.
type ServiceCmd struct {
	Install ServiceInstallCmd `cmd:"" help:"Register the kiosk app for boot-time autostart"`
}

// ServiceInstallCmd implements 'service install'.
type ServiceInstallCmd struct {
	Start bool `help:"Start the service immediately without prompting"`
}

// Run probes, provisions, and registers the kiosk app with the available
// service manager: a systemd unit where systemd exists, a desktop autostart
// entry where only a desktop session does.
func (cmd *ServiceInstallCmd) Run(g *Global) error {
	ctx := context.Background()

	profile := g.DeriveProfile(ctx)
	if err := g.ConfirmTargetEnvironment(profile); err != nil {
		return err
	}
	if _, err := g.Provision(ctx, profile); err != nil {
		return err
	}

	switch profile.ServiceManager {
	case probe.ServiceSystemd:
		return cmd.installSystemd(ctx, g)
	case probe.ServiceDesktopAutostart:
		return cmd.installDesktopAutostart(g)
	default:
		return errors.Precondition("no service manager available on this host")
	}
}

func (cmd *ServiceInstallCmd) installSystemd(ctx context.Context, g *Global) error {
	startNow := cmd.Start
	if !startNow {
		startNow = g.Prompt.Confirm("Start the kneeboard service now?")
	}

	registrar := service.NewRegistrar(g.Runner, g.Logger, g.Config.Service.Name, g.Config.Service.UnitDir)
	return registrar.Install(ctx, service.InstallOptions{
		Runtime:      g.Config.App.Runtime,
		EntryPoint:   g.Config.EntryPointPath(),
		InstallDir:   g.Config.App.InstallDir,
		TemplatePath: g.Config.UnitTemplatePath(),
		StartNow:     startNow,
	})
}

func (cmd *ServiceInstallCmd) installDesktopAutostart(g *Global) error {
	if !g.Prompt.Confirm("Set up desktop autostart for the kneeboard app?") {
		return errors.UserDeclined("autostart setup declined")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return errors.Wrap(err, errors.CategoryPrecondition, "resolving home directory")
	}

	execLine := g.Config.App.Runtime + " " + g.Config.EntryPointPath()
	path, err := service.WriteDesktopAutostart(home, g.Config.Service.Name, execLine)
	if err != nil {
		return err
	}
	g.Logger.Info("Desktop autostart entry written", "path", path)
	return nil
}
