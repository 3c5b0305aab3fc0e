// Package launch starts the kiosk app in the foreground, either directly
// (headed) or inside a virtual framebuffer (headless), and guarantees the
// display orientation is restored on every exit path, including operator
// interrupts and crashes of the app itself.
package launch

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/timberavionics/kneeboardctl/internal/display"
	"github.com/timberavionics/kneeboardctl/internal/execx"
	"github.com/timberavionics/kneeboardctl/internal/logfields"
	"github.com/timberavionics/kneeboardctl/internal/probe"
)

// headlessEnv is exported to the child so the app selects its offscreen
// window provider.
const headlessEnv = "HEADLESS=1"

// Strategy names how the kiosk app process is started.
type Strategy string

const (
	StrategyDirect      Strategy = "direct"
	StrategyFramebuffer Strategy = "framebuffer"
)

// Launcher runs the kiosk app once and reports its exit status.
type Launcher struct {
	Runner  execx.Runner
	Display *display.Controller
	Logger  *slog.Logger

	Profile    probe.Profile
	Runtime    string
	EntryPoint string
	WorkDir    string

	state State
}

// New creates a Launcher in the Idle state.
func New(runner execx.Runner, disp *display.Controller, logger *slog.Logger, profile probe.Profile, runtime, entryPoint, workDir string) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		Runner:     runner,
		Display:    disp,
		Logger:     logger,
		Profile:    profile,
		Runtime:    runtime,
		EntryPoint: entryPoint,
		WorkDir:    workDir,
	}
}

// SelectStrategy picks the launch strategy from the profile: no display
// session always means the virtual framebuffer.
func SelectStrategy(profile probe.Profile) Strategy {
	if profile.Headless() {
		return StrategyFramebuffer
	}
	return StrategyDirect
}

// Run executes one full lifecycle: configure display, start the app, wait,
// restore display, and return the child's exit status. The restore is
// registered before the blocking wait so interrupts still trigger it, and it
// runs exactly once iff the display was configured.
func (l *Launcher) Run(ctx context.Context) (int, error) {
	runID := uuid.NewString()
	log := l.Logger.With(logfields.RunID(runID))

	if err := l.transition(StateDisplayConfigured); err != nil {
		return -1, err
	}
	outcome := l.Display.Configure(ctx)
	log.Info("Display configured", logfields.Status(string(outcome.Status)))

	// Guaranteed finally-style restore. Restoration must not be tied to the
	// interrupted ctx, so it uses a fresh context.
	defer func() {
		if l.Display.Configured() {
			restored := l.Display.Restore(context.Background())
			log.Info("Display restored", logfields.Status(string(restored.Status)))
		}
	}()

	strategy := SelectStrategy(l.Profile)
	name, args, extraEnv := l.argv(strategy)

	if err := l.transition(StateRunning); err != nil {
		return -1, err
	}
	log.Info("Starting kiosk app",
		slog.String("strategy", string(strategy)),
		logfields.Path(l.EntryPoint))

	exitCode, err := l.Runner.Interactive(ctx, l.WorkDir, extraEnv, name, args...)

	if terr := l.transition(StateExited); terr != nil {
		return -1, terr
	}
	if err != nil {
		log.Error("Kiosk app could not be started", logfields.Error(err))
		return -1, err
	}

	log.Info("Kiosk app exited", slog.Int("status", exitCode), logfields.State(l.state.String()))
	return exitCode, nil
}

// argv assembles the command line for the selected strategy.
func (l *Launcher) argv(strategy Strategy) (name string, args []string, extraEnv []string) {
	if strategy == StrategyFramebuffer {
		// xvfb-run -a picks a free server number automatically.
		return "xvfb-run", []string{"-a", l.Runtime, l.EntryPoint}, []string{headlessEnv}
	}
	return l.Runtime, []string{l.EntryPoint}, nil
}
