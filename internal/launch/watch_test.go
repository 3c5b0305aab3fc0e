package launch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timberavionics/kneeboardctl/internal/display"
	"github.com/timberavionics/kneeboardctl/internal/execx"
	"github.com/timberavionics/kneeboardctl/internal/probe"
)

// holdingRunner blocks Interactive until its context is cancelled, modeling
// a kiosk app that runs until stopped. Each launch is announced on started.
type holdingRunner struct {
	*execx.Fake
	started chan struct{}
}

func (r *holdingRunner) Interactive(ctx context.Context, dir string, extraEnv []string, name string, args ...string) (int, error) {
	r.started <- struct{}{}
	<-ctx.Done()
	return r.Fake.Interactive(context.Background(), dir, extraEnv, name, args...)
}

func newTestWatcher(runner execx.Runner, entry string) *Watcher {
	profile := probe.Profile{OSFamily: probe.OSLinux, HasDisplaySession: true}
	return &Watcher{
		NewLauncher: func() *Launcher {
			disp := display.New(runner, quietLogger(), "DSI-1", true)
			return New(runner, disp, quietLogger(), profile,
				"/usr/bin/python3", entry, filepath.Dir(entry))
		},
		EntryPoint: entry,
		Logger:     quietLogger(),
		Debounce:   10 * time.Millisecond,
	}
}

func writeEntry(t *testing.T, entry, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(entry, []byte(body), 0o644))
}

func TestWatchRelaunchesOnEntryPointRewrite(t *testing.T) {
	entry := filepath.Join(t.TempDir(), "kneeboard_gui.py")
	writeEntry(t, entry, "print('v1')\n")

	runner := &holdingRunner{Fake: execx.NewFake(), started: make(chan struct{})}
	w := newTestWatcher(runner, entry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan launchResult, 1)
	go func() {
		code, err := w.Run(ctx)
		done <- launchResult{code: code, err: err}
	}()

	<-runner.started
	writeEntry(t, entry, "print('v2')\n")

	// A second launch means the rewrite was picked up.
	<-runner.started
	cancel()

	result := <-done
	require.NoError(t, result.err)
	assert.Equal(t, 0, result.code)

	appCmd := "/usr/bin/python3 " + entry
	assert.Equal(t, 2, runner.CallCount(appCmd), "exactly one relaunch")
	assert.Equal(t, 2, runner.CallCount("xrandr --output DSI-1 --rotate left"))
	assert.Equal(t, 2, runner.CallCount("xrandr --output DSI-1 --rotate normal"),
		"one restore per launch")
}

func TestWatchChildSelfExitReturnsStatusWithoutRestart(t *testing.T) {
	entry := filepath.Join(t.TempDir(), "kneeboard_gui.py")
	writeEntry(t, entry, "print('v1')\n")

	fake := execx.NewFake()
	appCmd := "/usr/bin/python3 " + entry
	fake.ExitCodes[appCmd] = 5
	w := newTestWatcher(fake, entry)

	code, err := w.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, code)

	assert.Equal(t, 1, fake.CallCount(appCmd), "a self-exiting app is not restarted")
	assert.Equal(t, 1, fake.CallCount("xrandr --output DSI-1 --rotate normal"))
}
