// Package clean purges generated caches, compiled-bytecode artifacts, logs,
// and editor droppings from the project tree. A convenience utility: every
// deletion target is attempted independently and failures are logged, not
// propagated.
package clean

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/timberavionics/kneeboardctl/internal/logfields"
)

// cacheDirs are directory names removed wholesale.
var cacheDirs = map[string]bool{
	"__pycache__": true,
	".kivy":       true,
	".buildozer":  true,
}

// fileSuffixes mark individual files for removal.
var fileSuffixes = []string{".pyc", ".log", "~", ".swp", ".bak"}

// Cleaner scans a project tree for removable artifacts.
type Cleaner struct {
	Logger *slog.Logger

	// Root is the project tree to scan.
	Root string

	// RemoveAll is injectable for tests; defaults to os.RemoveAll.
	RemoveAll func(path string) error
}

// Targets walks the tree and returns the sorted list of paths that would be
// removed. Cache directories are reported as a whole; their contents are not
// listed individually.
func (c *Cleaner) Targets() ([]string, error) {
	var targets []string

	err := filepath.WalkDir(c.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			c.Logger.Debug("Skipping unreadable path", logfields.Path(path), logfields.Error(err))
			return nil
		}
		if path == c.Root {
			return nil
		}

		if d.IsDir() {
			if cacheDirs[d.Name()] {
				targets = append(targets, path)
				return filepath.SkipDir
			}
			return nil
		}

		for _, suffix := range fileSuffixes {
			if strings.HasSuffix(d.Name(), suffix) {
				targets = append(targets, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(targets)
	return targets, nil
}

// Remove deletes the given targets best-effort and reports how many were
// removed and how many failed. Individual failures never abort the rest.
func (c *Cleaner) Remove(targets []string) (removed, failed int) {
	for _, target := range targets {
		if err := c.RemoveAll(target); err != nil {
			c.Logger.Warn("Could not remove, skipping", logfields.Path(target), logfields.Error(err))
			failed++
			continue
		}
		c.Logger.Debug("Removed", logfields.Path(target))
		removed++
	}
	return removed, failed
}
