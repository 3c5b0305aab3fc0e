package commands

import (
	"fmt"

	"github.com/timberavionics/kneeboardctl/internal/pack"
)

// PackCmd implements the 'pack' command.
type PackCmd struct {
	Version string `arg:"" help:"Semantic version for the release (e.g. 1.0.0)"`
	Source  string `short:"s" help:"Source tree containing the manifest files" default:"."`
	Out     string `short:"o" help:"Directory to place the archive in" default:"."`
}

// Run assembles the release archive from the configured manifest.
func (cmd *PackCmd) Run(g *Global) error {
	packager := pack.New(g.Logger, cmd.Source, cmd.Out)

	archive, err := packager.Build(pack.Manifest{
		Name:  g.Config.App.Name,
		Files: g.Config.Package.Files,
	}, cmd.Version)
	if err != nil {
		return err
	}

	fmt.Fprintf(g.Stdout, "%s\n", archive)
	return nil
}
