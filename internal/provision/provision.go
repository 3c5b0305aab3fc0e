// Package provision ensures the kiosk app's runtime, UI toolkit, and native
// libraries are present. Application is ordered and idempotent: each entry is
// checked first, installed at most once, and rechecked exactly once. A second
// run against a satisfied system issues zero install commands.
package provision

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/timberavionics/kneeboardctl/internal/config"
	"github.com/timberavionics/kneeboardctl/internal/errors"
	"github.com/timberavionics/kneeboardctl/internal/execx"
	"github.com/timberavionics/kneeboardctl/internal/logfields"
	"github.com/timberavionics/kneeboardctl/internal/probe"
)

// State describes the final condition of one dependency after provisioning.
type State string

const (
	StateSatisfied State = "satisfied" // check passed, nothing done
	StateInstalled State = "installed" // install ran, recheck passed
	StateUnmet     State = "unmet"     // recheck failed after the one install attempt
)

// Result records the outcome for a single dependency.
type Result struct {
	Name     string
	Required bool
	State    State
	Duration time.Duration
}

// Report aggregates per-dependency results for a provisioning run.
type Report struct {
	Results   []Result
	Installed int
}

// Provisioner applies dependency sets through a command runner.
type Provisioner struct {
	Runner execx.Runner
	Logger *slog.Logger
}

// New creates a Provisioner.
func New(runner execx.Runner, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{Runner: runner, Logger: logger}
}

// Apply provisions the dependency set for the given profile. On Windows the
// per-entry install commands are replaced by a single Chocolatey manifest
// install; checks and required/optional semantics are identical on both
// paths. The first unmet required dependency aborts with a remediation hint;
// unmet optional dependencies only warn.
func (p *Provisioner) Apply(ctx context.Context, profile probe.Profile, deps []config.DependencyConfig, chocoManifest string) (*Report, error) {
	if profile.OSFamily == probe.OSWindows {
		return p.applyManifest(ctx, deps, chocoManifest)
	}
	return p.applyOrdered(ctx, deps)
}

func (p *Provisioner) applyOrdered(ctx context.Context, deps []config.DependencyConfig) (*Report, error) {
	report := &Report{}

	for _, dep := range deps {
		start := time.Now()

		if p.check(ctx, dep) {
			p.Logger.Debug("Dependency satisfied", logfields.Dependency(dep.Name))
			report.add(dep, StateSatisfied, start)
			continue
		}

		if len(dep.Install) > 0 {
			p.Logger.Info("Installing dependency", logfields.Dependency(dep.Name),
				logfields.Command(strings.Join(dep.Install, " ")))
			if err := p.Runner.Run(ctx, dep.Install[0], dep.Install[1:]...); err != nil {
				p.Logger.Warn("Install command failed", logfields.Dependency(dep.Name), logfields.Error(err))
			} else {
				report.Installed++
			}
		}

		// Exactly one recheck after the install attempt.
		if p.check(ctx, dep) {
			p.Logger.Info("Dependency installed", logfields.Dependency(dep.Name),
				logfields.DurationMS(float64(time.Since(start).Milliseconds())))
			report.add(dep, StateInstalled, start)
			continue
		}

		report.add(dep, StateUnmet, start)
		if dep.Required {
			return report, errors.Newf(errors.CategoryDependency,
				"required dependency %s unmet after install attempt", dep.Name).
				WithRemediation(remediation(dep))
		}
		p.Logger.Warn("Optional dependency unmet, continuing", logfields.Dependency(dep.Name))
	}

	return report, nil
}

// applyManifest is the Windows path: one package-manifest install call for
// any entries whose checks fail, then the same per-entry recheck semantics.
func (p *Provisioner) applyManifest(ctx context.Context, deps []config.DependencyConfig, manifest string) (*Report, error) {
	report := &Report{}
	starts := make(map[string]time.Time, len(deps))

	var unsatisfied []config.DependencyConfig
	for _, dep := range deps {
		starts[dep.Name] = time.Now()
		if p.check(ctx, dep) {
			report.add(dep, StateSatisfied, starts[dep.Name])
			continue
		}
		unsatisfied = append(unsatisfied, dep)
	}

	if len(unsatisfied) == 0 {
		return report, nil
	}

	p.Logger.Info("Installing via package manifest", logfields.Path(manifest))
	if err := p.Runner.Run(ctx, "choco", "install", manifest, "-y"); err != nil {
		p.Logger.Warn("Manifest install failed", logfields.Error(err))
	}

	// Installed counts only entries whose recheck passes, same accounting as
	// the ordered path.
	for _, dep := range unsatisfied {
		if p.check(ctx, dep) {
			report.Installed++
			report.add(dep, StateInstalled, starts[dep.Name])
			continue
		}
		report.add(dep, StateUnmet, starts[dep.Name])
		if dep.Required {
			return report, errors.Newf(errors.CategoryDependency,
				"required dependency %s unmet after install attempt", dep.Name).
				WithRemediation("choco install " + manifest + " -y")
		}
		p.Logger.Warn("Optional dependency unmet, continuing", logfields.Dependency(dep.Name))
	}

	return report, nil
}

func (p *Provisioner) check(ctx context.Context, dep config.DependencyConfig) bool {
	if len(dep.Check) == 0 {
		return false
	}
	return p.Runner.Run(ctx, dep.Check[0], dep.Check[1:]...) == nil
}

func (r *Report) add(dep config.DependencyConfig, state State, start time.Time) {
	r.Results = append(r.Results, Result{
		Name:     dep.Name,
		Required: dep.Required,
		State:    state,
		Duration: time.Since(start),
	})
}

// Unmet lists dependencies that ended the run unsatisfied.
func (r *Report) Unmet() []string {
	var names []string
	for _, res := range r.Results {
		if res.State == StateUnmet {
			names = append(names, res.Name)
		}
	}
	return names
}

func remediation(dep config.DependencyConfig) string {
	return "sudo " + strings.Join(dep.Install, " ")
}
