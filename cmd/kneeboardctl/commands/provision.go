package commands

import (
	"context"
	"fmt"
)

// ProvisionCmd implements the 'provision' command.
type ProvisionCmd struct{}

// Run probes the environment and applies the dependency set.
func (cmd *ProvisionCmd) Run(g *Global) error {
	ctx := context.Background()

	profile := g.DeriveProfile(ctx)
	if err := g.ConfirmTargetEnvironment(profile); err != nil {
		return err
	}

	report, err := g.Provision(ctx, profile)
	if report != nil {
		for _, res := range report.Results {
			fmt.Fprintf(g.Stdout, "%-14s %s\n", res.Name, res.State)
		}
	}
	if err != nil {
		return err
	}

	g.Logger.Info("Provisioning complete",
		"dependencies", len(report.Results), "installed", report.Installed)
	return nil
}
