package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kberrors "github.com/timberavionics/kneeboardctl/internal/errors"
)

const unitTemplate = `[Unit]
Description=Pilot kneeboard kiosk
After=multi-user.target

[Service]
Type=simple
ExecStart=/usr/bin/python3 /path/to/app.py
WorkingDirectory=/path/to
User=nobody
Restart=on-failure
Environment=HEADLESS=1

[Install]
WantedBy=multi-user.target
`

func TestRenderRewritesExactlyThreeDirectives(t *testing.T) {
	tmpl, err := ParseUnitTemplate(unitTemplate)
	require.NoError(t, err)

	out := tmpl.Render(Descriptor{
		Runtime:    "/usr/bin/python3",
		EntryPoint: "/opt/app/app.py",
		WorkingDir: "/opt/app",
		User:       "pi",
	})

	assert.Contains(t, out, "ExecStart=/usr/bin/python3 /opt/app/app.py\n")
	assert.Contains(t, out, "WorkingDirectory=/opt/app\n")
	assert.Contains(t, out, "User=pi\n")

	// All other lines pass through unmodified.
	for _, line := range strings.Split(unitTemplate, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "ExecStart=") ||
			strings.HasPrefix(trimmed, "WorkingDirectory=") ||
			strings.HasPrefix(trimmed, "User=") {
			continue
		}
		assert.Contains(t, out, line)
	}
}

func TestParseRejectsMissingDirective(t *testing.T) {
	_, err := ParseUnitTemplate("[Service]\nExecStart=x\nWorkingDirectory=y\n")
	require.Error(t, err)

	var kbe *kberrors.KneeboardError
	require.ErrorAs(t, err, &kbe)
	assert.Equal(t, kberrors.CategoryPrecondition, kbe.Category)
	assert.Contains(t, kbe.Message, "User=")
}

func TestParseRejectsDuplicateDirective(t *testing.T) {
	_, err := ParseUnitTemplate("ExecStart=a\nExecStart=b\nWorkingDirectory=y\nUser=z\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestParseIgnoresLookalikeDirectives(t *testing.T) {
	// ExecStartPre and Environment lines must not count as slot matches.
	content := "ExecStart=a\nExecStartPre=/bin/true\nWorkingDirectory=y\nUser=z\nEnvironment=USER=x\n"
	tmpl, err := ParseUnitTemplate(content)
	require.NoError(t, err)

	out := tmpl.Render(Descriptor{Runtime: "r", EntryPoint: "e", WorkingDir: "w", User: "u"})
	assert.Contains(t, out, "ExecStartPre=/bin/true")
	assert.Contains(t, out, "Environment=USER=x")
}

func TestDesktopEntryFixedKeys(t *testing.T) {
	out := RenderDesktopEntry("pilot-kneeboard", "/usr/bin/python3 /opt/pilot_kneeboard/kneeboard_gui.py")

	assert.Contains(t, out, "Type=Application\n")
	assert.Contains(t, out, "Name=pilot-kneeboard\n")
	assert.Contains(t, out, "Exec=/usr/bin/python3 /opt/pilot_kneeboard/kneeboard_gui.py\n")
	assert.Contains(t, out, "Terminal=false\n")
	assert.Contains(t, out, "X-GNOME-Autostart-enabled=true\n")
}
