package commands

import (
	"fmt"
	"os"

	"github.com/timberavionics/kneeboardctl/internal/clean"
	"github.com/timberavionics/kneeboardctl/internal/errors"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	Root string `short:"r" help:"Project tree to clean" default:"."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt"`
}

// Run lists removable artifacts and deletes them after confirmation.
func (cmd *CleanCmd) Run(g *Global) error {
	cleaner := &clean.Cleaner{
		Logger:    g.Logger,
		Root:      cmd.Root,
		RemoveAll: os.RemoveAll,
	}

	targets, err := cleaner.Targets()
	if err != nil {
		return errors.Wrap(err, errors.CategoryPrecondition, "scanning project tree")
	}
	if len(targets) == 0 {
		g.Logger.Info("Nothing to clean")
		return nil
	}

	for _, target := range targets {
		fmt.Fprintln(g.Stdout, target)
	}
	if !cmd.Yes && !g.Prompt.Confirm(fmt.Sprintf("Remove these %d items?", len(targets))) {
		return errors.UserDeclined("cleanup declined")
	}

	removed, failed := cleaner.Remove(targets)
	g.Logger.Info("Cleanup finished", "removed", removed, "failed", failed)
	return nil
}
