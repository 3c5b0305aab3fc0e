package errors

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// CLIErrorAdapter handles error presentation and exit code determination for
// the kneeboardctl commands. The exit-code contract is deliberately narrow:
// 0 for success and declined prompts, 1 for every fatal path, plus the echoed
// status of the kiosk app itself for the run command.
type CLIErrorAdapter struct {
	out    io.Writer
	logger *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter writing operator-facing
// messages to out.
func NewCLIErrorAdapter(out io.Writer, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{out: out, logger: logger}
}

// ExitCodeFor determines the process exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitStatusError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var kbe *KneeboardError
	if errors.As(err, &kbe) && kbe.Category == CategoryUserDeclined {
		return 0
	}

	return 1
}

// Report logs the error and prints the remediation hint, if any. Declined
// prompts are reported at info level since they are a normal alternate path.
func (a *CLIErrorAdapter) Report(err error) {
	if err == nil {
		return
	}

	var kbe *KneeboardError
	if errors.As(err, &kbe) {
		if kbe.Category == CategoryUserDeclined {
			a.logger.Info("Aborted by operator", "reason", kbe.Message)
			return
		}
		a.logger.Error("Command failed", "category", string(kbe.Category), "error", kbe.Message)
		if kbe.Cause != nil {
			a.logger.Error("Caused by", "error", kbe.Cause.Error())
		}
		if kbe.Remediation != "" {
			fmt.Fprintf(a.out, "To fix manually, run:\n  %s\n", kbe.Remediation)
		}
		return
	}

	var exitErr *ExitStatusError
	if errors.As(err, &exitErr) {
		a.logger.Error("Kiosk app exited abnormally", "status", exitErr.Code)
		return
	}

	a.logger.Error("Command failed", "error", err.Error())
}
