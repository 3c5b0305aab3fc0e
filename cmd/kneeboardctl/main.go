package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/timberavionics/kneeboardctl/cmd/kneeboardctl/commands"
	"github.com/timberavionics/kneeboardctl/internal/errors"
	"github.com/timberavionics/kneeboardctl/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("kneeboardctl"),
		kong.Description("Deploys and manages the lifecycle of the pilot kneeboard kiosk app."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	adapter := errors.NewCLIErrorAdapter(os.Stdout, slog.Default())

	global, err := cli.NewGlobal()
	if err != nil {
		adapter.Report(err)
		os.Exit(adapter.ExitCodeFor(err))
	}

	err = ctx.Run(global)
	adapter.Report(err)
	os.Exit(adapter.ExitCodeFor(err))
}
