// Package display configures panel orientation around a kiosk app launch.
// Rotation is cosmetic: absence of a rotatable display is an expected
// condition, so every failure here folds to a non-fatal outcome that is
// logged but never propagated.
package display

import (
	"context"
	"log/slog"
	"strings"

	"github.com/timberavionics/kneeboardctl/internal/execx"
	"github.com/timberavionics/kneeboardctl/internal/logfields"
)

// Orientation names the two panel states this tool switches between.
type Orientation string

const (
	// OrientationRotated is the portrait state used while the kiosk runs.
	OrientationRotated Orientation = "left"

	// OrientationNormal is the restore state.
	OrientationNormal Orientation = "normal"
)

// Status classifies the outcome of a configure/restore attempt. Keeping
// "not applicable" distinct from "failed" keeps logs honest without
// affecting control flow.
type Status string

const (
	StatusApplied       Status = "applied"
	StatusNotApplicable Status = "not_applicable"
	StatusFailed        Status = "failed"
)

// Outcome reports what a rotation attempt did.
type Outcome struct {
	Status Status
	Output string // output identifier that was rotated, if any
}

// Controller rotates the primary connected output before launch and restores
// it afterwards.
type Controller struct {
	Runner execx.Runner
	Logger *slog.Logger

	// BoardOutput is the panel identifier tried before auto-detection.
	BoardOutput string

	// HasSession gates all work: without a display session both operations
	// are no-ops.
	HasSession bool

	configured bool
}

// New creates a Controller.
func New(runner execx.Runner, logger *slog.Logger, boardOutput string, hasSession bool) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{Runner: runner, Logger: logger, BoardOutput: boardOutput, HasSession: hasSession}
}

// Configure sets the rotated orientation on the panel. Never fails.
func (c *Controller) Configure(ctx context.Context) Outcome {
	out := c.rotate(ctx, OrientationRotated)
	if out.Status == StatusApplied {
		c.configured = true
	}
	return out
}

// Restore mirrors Configure and must run on every exit path once Configure
// was attempted, including after a crash of the managed process.
func (c *Controller) Restore(ctx context.Context) Outcome {
	out := c.rotate(ctx, OrientationNormal)
	c.configured = false
	return out
}

// Configured reports whether a rotation is currently applied.
func (c *Controller) Configured() bool {
	return c.configured
}

func (c *Controller) rotate(ctx context.Context, orientation Orientation) Outcome {
	if !c.HasSession {
		return Outcome{Status: StatusNotApplicable}
	}

	// Board panel first, then the first output reporting "connected".
	if c.BoardOutput != "" {
		if err := c.xrandr(ctx, c.BoardOutput, orientation); err == nil {
			c.Logger.Debug("Display orientation set",
				logfields.Output(c.BoardOutput), slog.String("orientation", string(orientation)))
			return Outcome{Status: StatusApplied, Output: c.BoardOutput}
		}
	}

	output, err := c.detectOutput(ctx)
	if err != nil || output == "" {
		c.Logger.Info("No rotatable display found, skipping orientation change",
			logfields.Error(err))
		return Outcome{Status: StatusNotApplicable}
	}

	if err := c.xrandr(ctx, output, orientation); err != nil {
		c.Logger.Warn("Display rotation failed, continuing",
			logfields.Output(output), logfields.Error(err))
		return Outcome{Status: StatusFailed, Output: output}
	}

	c.Logger.Debug("Display orientation set",
		logfields.Output(output), slog.String("orientation", string(orientation)))
	return Outcome{Status: StatusApplied, Output: output}
}

func (c *Controller) xrandr(ctx context.Context, output string, orientation Orientation) error {
	return c.Runner.Run(ctx, "xrandr", "--output", output, "--rotate", string(orientation))
}

// detectOutput parses `xrandr --query` for the first connected output.
func (c *Controller) detectOutput(ctx context.Context) (string, error) {
	out, err := c.Runner.Output(ctx, "xrandr", "--query")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "connected" {
			return fields[0], nil
		}
	}
	return "", nil
}
