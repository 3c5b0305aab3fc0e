package commands

import (
	"context"
	"fmt"
)

// ProbeCmd implements the 'probe' command.
type ProbeCmd struct{}

// Run prints the derived device profile. Probing has no side effects, so no
// confirmation gate applies here.
func (cmd *ProbeCmd) Run(g *Global) error {
	profile := g.DeriveProfile(context.Background())

	fmt.Fprintf(g.Stdout, "os_family:        %s\n", profile.OSFamily)
	if profile.Platform != "" {
		fmt.Fprintf(g.Stdout, "platform:         %s\n", profile.Platform)
	}
	fmt.Fprintf(g.Stdout, "target_board:     %t\n", profile.IsTargetBoard)
	fmt.Fprintf(g.Stdout, "display_session:  %t\n", profile.HasDisplaySession)
	fmt.Fprintf(g.Stdout, "service_manager:  %s\n", profile.ServiceManager)
	return nil
}
