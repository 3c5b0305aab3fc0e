// Package errors provides the structured error type (KneeboardError) used to
// classify failures across the deployment commands: preconditions, unmet
// dependencies, best-effort external tools, and declined prompts.
package errors

import (
	"fmt"
)

// ErrorCategory classifies a KneeboardError for exit-code and logging purposes.
type ErrorCategory string

const (
	// CategoryPrecondition covers missing privileges, files, and templates.
	// Always fatal.
	CategoryPrecondition ErrorCategory = "precondition"

	// CategoryDependency covers required install targets still failing after
	// the one documented install-then-recheck attempt. Fatal.
	CategoryDependency ErrorCategory = "dependency"

	// CategoryExternalTool covers cosmetic/convenience external commands
	// (display rotation, archive tooling, service-manager probes). Callers
	// log these and continue; they never abort a run on their own.
	CategoryExternalTool ErrorCategory = "external_tool"

	// CategoryUserDeclined marks a negative answer to a confirmation prompt.
	// Not a failure: the operation ends cleanly with exit code 0.
	CategoryUserDeclined ErrorCategory = "user_declined"

	// CategoryInternal covers bugs and unexpected states.
	CategoryInternal ErrorCategory = "internal"
)

// KneeboardError is a structured error with a category and an optional
// copy-pasteable remediation command shown to the operator on fatal paths.
type KneeboardError struct {
	Category    ErrorCategory
	Message     string
	Cause       error
	Remediation string
}

// Error implements the error interface.
func (e *KneeboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap supports errors.Is/As chains.
func (e *KneeboardError) Unwrap() error {
	return e.Cause
}

// WithRemediation attaches the manual command an operator can run to clear
// the failure.
func (e *KneeboardError) WithRemediation(cmd string) *KneeboardError {
	e.Remediation = cmd
	return e
}

// New creates a KneeboardError.
func New(category ErrorCategory, message string) *KneeboardError {
	return &KneeboardError{Category: category, Message: message}
}

// Newf creates a KneeboardError with a formatted message.
func Newf(category ErrorCategory, format string, args ...any) *KneeboardError {
	return &KneeboardError{Category: category, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a KneeboardError wrapping an existing error.
func Wrap(err error, category ErrorCategory, message string) *KneeboardError {
	return &KneeboardError{Category: category, Message: message, Cause: err}
}

// Precondition is shorthand for the most common fatal class.
func Precondition(message string) *KneeboardError {
	return New(CategoryPrecondition, message)
}

// Preconditionf is the formatted variant of Precondition.
func Preconditionf(format string, args ...any) *KneeboardError {
	return Newf(CategoryPrecondition, format, args...)
}

// UserDeclined creates the clean-abort error for a negative prompt answer.
func UserDeclined(message string) *KneeboardError {
	return New(CategoryUserDeclined, message)
}

// ExitStatusError carries a child process exit status through the command
// layer so the orchestrator can echo it as its own. It is produced only by
// the run command after the kiosk app terminates non-zero.
type ExitStatusError struct {
	Code int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("kiosk app exited with status %d", e.Code)
}
