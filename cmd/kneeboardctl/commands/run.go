package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/timberavionics/kneeboardctl/internal/display"
	"github.com/timberavionics/kneeboardctl/internal/errors"
	"github.com/timberavionics/kneeboardctl/internal/launch"
)

// RunCmd implements the 'run' command: the interactive foreground lifecycle.
type RunCmd struct {
	Watch bool `short:"w" help:"Restart the kiosk app when its entry point changes (development)"`
}

// Run provisions dependencies, configures the display, and launches the
// kiosk app, echoing its exit status. The signal context is installed before
// the blocking wait so an operator interrupt still restores the display.
func (cmd *RunCmd) Run(g *Global) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	profile := g.DeriveProfile(ctx)
	if err := g.ConfirmTargetEnvironment(profile); err != nil {
		return err
	}
	if _, err := g.Provision(ctx, profile); err != nil {
		return err
	}

	newLauncher := func() *launch.Launcher {
		disp := display.New(g.Runner, g.Logger, g.Config.Display.BoardOutput, profile.HasDisplaySession)
		return launch.New(g.Runner, disp, g.Logger, profile,
			g.Config.App.Runtime, g.Config.EntryPointPath(), g.Config.App.InstallDir)
	}

	var code int
	var err error
	if cmd.Watch {
		w := &launch.Watcher{
			NewLauncher: newLauncher,
			EntryPoint:  g.Config.EntryPointPath(),
			Logger:      g.Logger,
		}
		code, err = w.Run(ctx)
	} else {
		code, err = newLauncher().Run(ctx)
	}

	if err != nil {
		return errors.Wrap(err, errors.CategoryPrecondition, "launching kiosk app")
	}
	if code != 0 {
		if code < 0 {
			// Killed by signal; fold into the generic failure code.
			code = 1
		}
		return &errors.ExitStatusError{Code: code}
	}
	return nil
}
