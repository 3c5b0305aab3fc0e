// Package service registers the kiosk app for boot-time autostart: a systemd
// unit rendered from a fixed three-slot template, or a desktop autostart
// entry on hosts without systemd.
package service

import (
	"strings"

	"github.com/timberavionics/kneeboardctl/internal/errors"
)

// The three directives this tool rewrites. The template format is a fixed
// contract: exactly one line each; everything else passes through verbatim.
const (
	directiveExecStart  = "ExecStart="
	directiveWorkingDir = "WorkingDirectory="
	directiveUser       = "User="
)

// Descriptor holds the resolved values substituted into a unit template.
type Descriptor struct {
	Runtime    string
	EntryPoint string
	WorkingDir string
	User       string
}

// UnitTemplate is a validated service-definition template with three named
// slots and an opaque passthrough body.
type UnitTemplate struct {
	lines      []string
	execIdx    int
	workDirIdx int
	userIdx    int
}

// ParseUnitTemplate validates that the template contains exactly one of each
// required directive; anything else is a PreconditionError.
func ParseUnitTemplate(content string) (*UnitTemplate, error) {
	t := &UnitTemplate{
		lines:      strings.Split(content, "\n"),
		execIdx:    -1,
		workDirIdx: -1,
		userIdx:    -1,
	}

	for i, line := range t.lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, directiveExecStart):
			if t.execIdx >= 0 {
				return nil, errors.Preconditionf("service template has duplicate %s directive", directiveExecStart)
			}
			t.execIdx = i
		case strings.HasPrefix(trimmed, directiveWorkingDir):
			if t.workDirIdx >= 0 {
				return nil, errors.Preconditionf("service template has duplicate %s directive", directiveWorkingDir)
			}
			t.workDirIdx = i
		case strings.HasPrefix(trimmed, directiveUser):
			if t.userIdx >= 0 {
				return nil, errors.Preconditionf("service template has duplicate %s directive", directiveUser)
			}
			t.userIdx = i
		}
	}

	for directive, idx := range map[string]int{
		directiveExecStart:  t.execIdx,
		directiveWorkingDir: t.workDirIdx,
		directiveUser:       t.userIdx,
	} {
		if idx < 0 {
			return nil, errors.Preconditionf("service template is missing the %s directive", directive)
		}
	}

	return t, nil
}

// Render substitutes the descriptor into the three slots, leaving all other
// template lines byte-identical.
func (t *UnitTemplate) Render(d Descriptor) string {
	rendered := make([]string, len(t.lines))
	copy(rendered, t.lines)

	rendered[t.execIdx] = directiveExecStart + d.Runtime + " " + d.EntryPoint
	rendered[t.workDirIdx] = directiveWorkingDir + d.WorkingDir
	rendered[t.userIdx] = directiveUser + d.User

	return strings.Join(rendered, "\n")
}
