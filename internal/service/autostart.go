package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/timberavionics/kneeboardctl/internal/errors"
)

// desktopEntry is the fixed-key autostart format for desktop sessions
// without systemd. Exec is the only computed value.
const desktopEntry = `[Desktop Entry]
Type=Application
Name=%s
Comment=Pilot kneeboard kiosk application
Exec=%s
Terminal=false
X-GNOME-Autostart-enabled=true
`

// RenderDesktopEntry renders the autostart entry for the given display name
// and command line.
func RenderDesktopEntry(name, execLine string) string {
	return fmt.Sprintf(desktopEntry, name, execLine)
}

// WriteDesktopAutostart writes the autostart entry into the user's autostart
// directory, creating it if needed. Re-running overwrites in place.
func WriteDesktopAutostart(homeDir, name, execLine string) (string, error) {
	dir := filepath.Join(homeDir, ".config", "autostart")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.CategoryPrecondition, "creating autostart directory")
	}

	path := filepath.Join(dir, name+".desktop")
	if err := os.WriteFile(path, []byte(RenderDesktopEntry(name, execLine)), 0o644); err != nil {
		return "", errors.Wrap(err, errors.CategoryPrecondition, "writing autostart entry")
	}
	return path, nil
}
