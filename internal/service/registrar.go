package service

import (
	"context"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/timberavionics/kneeboardctl/internal/errors"
	"github.com/timberavionics/kneeboardctl/internal/execx"
	"github.com/timberavionics/kneeboardctl/internal/logfields"
)

// activeSettle is how long systemd normally needs before is-active reports a
// freshly started simple service truthfully.
const activeSettle = 2 * time.Second

// Registrar materializes a systemd service for the kiosk app and registers
// it for boot-time autostart. Registration is idempotent: re-running
// overwrites the prior unit file in place.
type Registrar struct {
	Runner execx.Runner
	Logger *slog.Logger

	// Name is the unit name without the .service suffix.
	Name string

	// UnitDir is the service manager's configuration directory.
	UnitDir string

	// Collaborators injectable for tests.
	Geteuid     func() int
	Getenv      func(string) string
	CurrentUser func() (*user.User, error)
	ReadFile    func(string) ([]byte, error)
	WriteFile   func(string, []byte, os.FileMode) error
	Stat        func(string) (os.FileInfo, error)
	Sleep       func(time.Duration)
}

// NewRegistrar creates a Registrar bound to the real host.
func NewRegistrar(runner execx.Runner, logger *slog.Logger, name, unitDir string) *Registrar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{
		Runner:      runner,
		Logger:      logger,
		Name:        name,
		UnitDir:     unitDir,
		Geteuid:     os.Geteuid,
		Getenv:      os.Getenv,
		CurrentUser: user.Current,
		ReadFile:    os.ReadFile,
		WriteFile:   os.WriteFile,
		Stat:        os.Stat,
		Sleep:       time.Sleep,
	}
}

// InstallOptions carries the resolved inputs for one registration.
type InstallOptions struct {
	Runtime      string
	EntryPoint   string
	InstallDir   string
	TemplatePath string

	// StartNow starts the service immediately after enabling it.
	StartNow bool
}

// Install validates preconditions, renders the unit, writes it into the
// service manager's configuration directory, reloads manager state, and
// enables boot-time autostart. With StartNow it also starts the unit and
// reports whether it reached the active state.
func (r *Registrar) Install(ctx context.Context, opts InstallOptions) error {
	if r.Geteuid() != 0 {
		return errors.Precondition("service registration requires elevated privileges").
			WithRemediation("sudo kneeboardctl service install")
	}

	if _, err := r.Stat(opts.EntryPoint); err != nil {
		return errors.Preconditionf("application entry point not found: %s", opts.EntryPoint)
	}
	if _, err := r.Stat(opts.TemplatePath); err != nil {
		return errors.Preconditionf("service template not found: %s", opts.TemplatePath)
	}

	content, err := r.ReadFile(opts.TemplatePath)
	if err != nil {
		return errors.Wrap(err, errors.CategoryPrecondition, "reading service template")
	}
	tmpl, err := ParseUnitTemplate(string(content))
	if err != nil {
		return err
	}

	runAs := r.resolveUser(ctx)
	rendered := tmpl.Render(Descriptor{
		Runtime:    opts.Runtime,
		EntryPoint: opts.EntryPoint,
		WorkingDir: opts.InstallDir,
		User:       runAs,
	})

	unitPath := filepath.Join(r.UnitDir, r.Name+".service")
	if err := r.WriteFile(unitPath, []byte(rendered), 0o644); err != nil {
		return errors.Wrap(err, errors.CategoryPrecondition, "writing unit file")
	}
	r.Logger.Info("Service unit written",
		logfields.Service(r.Name), logfields.Path(unitPath), logfields.User(runAs))

	if err := r.Runner.Run(ctx, "systemctl", "daemon-reload"); err != nil {
		return errors.Wrap(err, errors.CategoryPrecondition, "reloading service manager")
	}
	if err := r.Runner.Run(ctx, "systemctl", "enable", r.Name+".service"); err != nil {
		return errors.Wrap(err, errors.CategoryPrecondition, "enabling service")
	}
	r.Logger.Info("Service enabled for boot-time autostart", logfields.Service(r.Name))

	if opts.StartNow {
		r.startAndProbe(ctx)
	}
	return nil
}

// startAndProbe starts the unit and reports whether it went active. Both
// steps are best-effort: the unit is already registered at this point.
func (r *Registrar) startAndProbe(ctx context.Context) {
	if err := r.Runner.Run(ctx, "systemctl", "start", r.Name+".service"); err != nil {
		r.Logger.Warn("Service start failed", logfields.Service(r.Name), logfields.Error(err))
		return
	}

	r.Sleep(activeSettle)
	state, err := r.Runner.Output(ctx, "systemctl", "is-active", r.Name+".service")
	if err != nil || state != "active" {
		r.Logger.Warn("Service did not reach active state",
			logfields.Service(r.Name), logfields.Status(state))
		return
	}
	r.Logger.Info("Service is active", logfields.Service(r.Name))
}

// resolveUser determines the invoking non-privileged user: SUDO_USER when
// present, then the original login reported by logname, then the current
// session user.
func (r *Registrar) resolveUser(ctx context.Context) string {
	if u := r.Getenv("SUDO_USER"); u != "" && u != "root" {
		return u
	}
	if out, err := r.Runner.Output(ctx, "logname"); err == nil && out != "" && out != "root" {
		return out
	}
	if u, err := r.CurrentUser(); err == nil {
		return u.Username
	}
	return "root"
}
