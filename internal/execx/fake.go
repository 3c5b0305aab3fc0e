package execx

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Fake is a scripted Runner for tests. Results are keyed by the full command
// line; unscripted commands succeed with empty output. Every invocation is
// recorded in order.
type Fake struct {
	mu sync.Mutex

	// Errors maps command lines to the error Run/Output should return.
	Errors map[string]error

	// FailuresLeft maps command lines to a number of invocations that fail
	// before the command starts succeeding. Used to model checks that pass
	// once an install has run.
	FailuresLeft map[string]int

	// Outputs maps command lines to Output results.
	Outputs map[string]string

	// ExitCodes maps command lines to Interactive exit statuses.
	ExitCodes map[string]int

	// Missing lists names LookPath should report as absent.
	Missing []string

	// Calls records each executed command line in order.
	Calls []string
}

// NewFake creates an empty scripted runner.
func NewFake() *Fake {
	return &Fake{
		Errors:       map[string]error{},
		FailuresLeft: map[string]int{},
		Outputs:      map[string]string{},
		ExitCodes:    map[string]int{},
	}
}

func (f *Fake) record(name string, args []string) string {
	line := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	f.Calls = append(f.Calls, line)
	f.mu.Unlock()
	return line
}

func (f *Fake) Run(_ context.Context, name string, args ...string) error {
	line := f.record(name, args)
	if n := f.FailuresLeft[line]; n > 0 {
		f.FailuresLeft[line] = n - 1
		return fmt.Errorf("exit status 1")
	}
	return f.Errors[line]
}

func (f *Fake) Output(_ context.Context, name string, args ...string) (string, error) {
	line := f.record(name, args)
	return f.Outputs[line], f.Errors[line]
}

func (f *Fake) Interactive(_ context.Context, _ string, _ []string, name string, args ...string) (int, error) {
	line := f.record(name, args)
	if err := f.Errors[line]; err != nil {
		return -1, err
	}
	return f.ExitCodes[line], nil
}

func (f *Fake) LookPath(name string) (string, error) {
	for _, m := range f.Missing {
		if m == name {
			return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
		}
	}
	return "/usr/bin/" + name, nil
}

// CallCount returns how many recorded commands start with prefix.
func (f *Fake) CallCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}
