// Package execx abstracts external command execution behind a small Runner
// interface so the orchestration logic stays pure and testable. Every OS
// mutation this tool performs (package installs, display rotation, service
// registration, the kiosk app itself) goes through a Runner.
package execx

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/timberavionics/kneeboardctl/internal/logfields"
)

// Runner executes external commands.
type Runner interface {
	// Run executes a command, discarding its output.
	Run(ctx context.Context, name string, args ...string) error

	// Output executes a command and returns its combined stdout, trimmed.
	Output(ctx context.Context, name string, args ...string) (string, error)

	// Interactive executes a command wired to the operator's terminal with
	// extra environment entries appended, and returns its exit status.
	Interactive(ctx context.Context, dir string, extraEnv []string, name string, args ...string) (int, error)

	// LookPath reports where name resolves on PATH.
	LookPath(name string) (string, error)
}

// System is the production Runner backed by os/exec.
type System struct {
	Logger *slog.Logger
}

// NewSystem creates a System runner.
func NewSystem(logger *slog.Logger) *System {
	if logger == nil {
		logger = slog.Default()
	}
	return &System{Logger: logger}
}

func (s *System) Run(ctx context.Context, name string, args ...string) error {
	s.Logger.Debug("Executing command", logfields.Command(commandLine(name, args)))
	return exec.CommandContext(ctx, name, args...).Run()
}

func (s *System) Output(ctx context.Context, name string, args ...string) (string, error) {
	s.Logger.Debug("Executing command", logfields.Command(commandLine(name, args)))
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return strings.TrimSpace(string(out)), err
}

func (s *System) Interactive(ctx context.Context, dir string, extraEnv []string, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), extraEnv...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	s.Logger.Debug("Executing interactive command",
		logfields.Command(commandLine(name, args)),
		logfields.Path(dir))

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func (s *System) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func commandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
