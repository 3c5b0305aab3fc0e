package launch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/timberavionics/kneeboardctl/internal/logfields"
)

// Watcher relaunches the kiosk app whenever its entry point changes on disk.
// Development convenience only: the service path never uses it.
type Watcher struct {
	// NewLauncher builds a fresh Launcher per attempt; a Launcher is
	// single-use since its state machine ends at Exited.
	NewLauncher func() *Launcher

	EntryPoint string
	Logger     *slog.Logger

	// Debounce absorbs editor save bursts.
	Debounce time.Duration
}

// Run launches the app and restarts it on each entry-point change until the
// app exits on its own or ctx is cancelled. Returns the last exit status.
func (w *Watcher) Run(ctx context.Context) (int, error) {
	if w.Debounce == 0 {
		w.Debounce = 500 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return -1, fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory containing the entry point (more reliable than
	// watching the file directly across editor replace-on-save).
	entry, err := filepath.Abs(w.EntryPoint)
	if err != nil {
		return -1, fmt.Errorf("failed to resolve entry point: %w", err)
	}
	if err := watcher.Add(filepath.Dir(entry)); err != nil {
		return -1, fmt.Errorf("failed to watch %s: %w", filepath.Dir(entry), err)
	}

	w.Logger.Info("Watching entry point for changes", logfields.Path(entry))

	for {
		childCtx, cancel := context.WithCancel(ctx)
		exitCh := make(chan launchResult, 1)
		go func() {
			code, err := w.NewLauncher().Run(childCtx)
			exitCh <- launchResult{code: code, err: err}
		}()

		restart, result := w.waitForChangeOrExit(ctx, watcher, entry, cancel, exitCh)
		cancel()
		if !restart {
			return result.code, result.err
		}
		w.Logger.Info("Entry point changed, restarting kiosk app", logfields.Path(entry))
	}
}

type launchResult struct {
	code int
	err  error
}

// waitForChangeOrExit blocks until the app exits, ctx is cancelled, or the
// entry point is rewritten. When a change fires it stops the child and waits
// for its restore-and-exit before reporting restart=true.
func (w *Watcher) waitForChangeOrExit(ctx context.Context, watcher *fsnotify.Watcher, entry string, cancel context.CancelFunc, exitCh chan launchResult) (bool, launchResult) {
	var debounce <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			cancel()
			return false, <-exitCh

		case result := <-exitCh:
			return false, result

		case event, ok := <-watcher.Events:
			if !ok {
				cancel()
				return false, <-exitCh
			}
			if event.Name == entry && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				debounce = time.After(w.Debounce)
			}

		case err, ok := <-watcher.Errors:
			if ok && err != nil {
				w.Logger.Warn("File watcher error", logfields.Error(err))
			}

		case <-debounce:
			cancel()
			return true, <-exitCh
		}
	}
}
