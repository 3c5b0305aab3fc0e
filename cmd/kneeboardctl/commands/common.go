// Package commands defines the kneeboardctl CLI: one subcommand per
// deployment component, sharing the probed device profile and the external
// command runner through a Global context.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/timberavionics/kneeboardctl/internal/config"
	"github.com/timberavionics/kneeboardctl/internal/errors"
	"github.com/timberavionics/kneeboardctl/internal/execx"
	"github.com/timberavionics/kneeboardctl/internal/probe"
	"github.com/timberavionics/kneeboardctl/internal/prompt"
	"github.com/timberavionics/kneeboardctl/internal/provision"
)

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"kneeboard.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Probe     ProbeCmd     `cmd:"" help:"Print the detected device profile without changing anything"`
	Provision ProvisionCmd `cmd:"" help:"Install or verify the kiosk app's runtime dependencies"`
	Run       RunCmd       `cmd:"" help:"Provision and launch the kiosk app in the foreground"`
	Service   ServiceCmd   `cmd:"" help:"Manage boot-time autostart registration"`
	Pack      PackCmd      `cmd:"" help:"Build a versioned release archive"`
	Clean     CleanCmd     `cmd:"" help:"Remove generated caches, bytecode artifacts, and logs"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// Global is the shared state passed to every subcommand.
type Global struct {
	Logger *slog.Logger
	Config *config.Config
	Runner execx.Runner

	// Stdout carries command output; tests substitute a buffer.
	Stdout io.Writer

	// Prompt is shared across all confirmations of a command so each one
	// consumes exactly one input line.
	Prompt *prompt.Prompter
}

// NewGlobal loads configuration and wires the production collaborators.
func (c *CLI) NewGlobal() (*Global, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryPrecondition, "loading configuration")
	}
	logger := slog.Default()
	return &Global{
		Logger: logger,
		Config: cfg,
		Runner: execx.NewSystem(logger),
		Stdout: os.Stdout,
		Prompt: prompt.New(os.Stdin, os.Stdout),
	}, nil
}

// DeriveProfile runs the environment probe once.
func (g *Global) DeriveProfile(ctx context.Context) probe.Profile {
	runner := g.Runner
	prober := probe.New(g.Logger, runner.LookPath)
	return prober.Probe(ctx)
}

// ConfirmTargetEnvironment gates continuation on hosts that are not the
// target board. Declining is the default and ends the operation cleanly.
func (g *Global) ConfirmTargetEnvironment(profile probe.Profile) error {
	if profile.IsTargetBoard {
		return nil
	}
	g.Logger.Warn("This host does not identify as the target board")
	if !g.Prompt.Confirm("Continue on this host anyway?") {
		return errors.UserDeclined("environment mismatch not confirmed")
	}
	return nil
}

// Provision applies the configured dependency set for the profile.
func (g *Global) Provision(ctx context.Context, profile probe.Profile) (*provision.Report, error) {
	p := provision.New(g.Runner, g.Logger)
	return p.Apply(ctx, profile, g.Config.Dependencies, g.Config.Package.ChocoManifest)
}
