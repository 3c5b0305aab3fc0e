// Package probe derives the DeviceProfile describing the current host: OS
// family, target-board identity, display-session availability, and service
// manager. Probing has no side effects; the profile is derived once per run
// and never persisted.
package probe

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/timberavionics/kneeboardctl/internal/logfields"
)

// OSFamily classifies the host operating system.
type OSFamily string

const (
	OSLinux   OSFamily = "linux"
	OSWindows OSFamily = "windows"
)

// ServiceManager identifies how persistent autostart is registered.
type ServiceManager string

const (
	ServiceSystemd          ServiceManager = "systemd"
	ServiceNone             ServiceManager = "none"
	ServiceDesktopAutostart ServiceManager = "desktop_autostart"
)

// boardModelPath is where the firmware exposes the board model on the target.
const boardModelPath = "/proc/device-tree/model"

// boardModelMarker identifies the supported board family.
const boardModelMarker = "Raspberry Pi"

// Profile is the probed description of the current host. Immutable once
// derived.
type Profile struct {
	OSFamily          OSFamily
	Platform          string
	IsTargetBoard     bool
	HasDisplaySession bool
	ServiceManager    ServiceManager
}

// Headless reports whether the kiosk app must run inside a virtual
// framebuffer.
func (p Profile) Headless() bool {
	return !p.HasDisplaySession
}

// Prober derives Profiles. The collaborators are injectable so tests can
// model arbitrary hosts.
type Prober struct {
	Logger   *slog.Logger
	HostInfo func(ctx context.Context) (*host.InfoStat, error)
	ReadFile func(name string) ([]byte, error)
	Getenv   func(key string) string
	LookPath func(name string) (string, error)
}

// New creates a Prober bound to the real host.
func New(logger *slog.Logger, lookPath func(string) (string, error)) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		Logger:   logger,
		HostInfo: host.InfoWithContext,
		ReadFile: os.ReadFile,
		Getenv:   os.Getenv,
		LookPath: lookPath,
	}
}

// Probe derives the DeviceProfile. It never fails: unreadable board metadata
// is downgraded to "not the target board" with a warning, and host
// identification falls back to the compile-time OS.
func (p *Prober) Probe(ctx context.Context) Profile {
	profile := Profile{OSFamily: osFamily(runtime.GOOS)}

	if info, err := p.HostInfo(ctx); err == nil {
		profile.Platform = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
		profile.OSFamily = osFamily(info.OS)
	} else {
		p.Logger.Warn("Host identification unavailable, using build target", logfields.Error(err))
	}

	profile.IsTargetBoard = p.detectBoard()
	profile.HasDisplaySession = p.detectDisplaySession(profile.OSFamily)
	profile.ServiceManager = p.detectServiceManager(profile)

	p.Logger.Debug("Device profile derived",
		slog.String("os_family", string(profile.OSFamily)),
		slog.Bool("target_board", profile.IsTargetBoard),
		slog.Bool("display_session", profile.HasDisplaySession),
		slog.String("service_manager", string(profile.ServiceManager)))

	return profile
}

func (p *Prober) detectBoard() bool {
	if runtime.GOOS == "windows" {
		return false
	}

	data, err := p.ReadFile(boardModelPath)
	if err != nil {
		// Absence is expected on desktops; the command layer gates
		// continuation behind an explicit confirmation.
		p.Logger.Warn("Board identification metadata unreadable, assuming generic host",
			logfields.Path(boardModelPath), logfields.Error(err))
		return false
	}

	model := strings.TrimRight(string(data), "\x00\n")
	if strings.Contains(model, boardModelMarker) {
		p.Logger.Debug("Target board identified", slog.String("model", model))
		return true
	}
	return false
}

func (p *Prober) detectDisplaySession(family OSFamily) bool {
	if family == OSWindows {
		// Windows test hosts always have a desktop session.
		return true
	}
	return p.Getenv("DISPLAY") != "" || p.Getenv("WAYLAND_DISPLAY") != ""
}

func (p *Prober) detectServiceManager(profile Profile) ServiceManager {
	if profile.OSFamily == OSWindows {
		return ServiceNone
	}
	if _, err := p.LookPath("systemctl"); err == nil {
		return ServiceSystemd
	}
	if profile.HasDisplaySession {
		return ServiceDesktopAutostart
	}
	return ServiceNone
}

func osFamily(goos string) OSFamily {
	if goos == "windows" {
		return OSWindows
	}
	return OSLinux
}
