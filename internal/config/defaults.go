package config

import "path/filepath"

// Stock install identity for the pilot kneeboard kiosk app.
const (
	DefaultAppName    = "pilot_kneeboard"
	DefaultRuntime    = "/usr/bin/python3"
	DefaultEntryPoint = "kneeboard_gui.py"
	DefaultInstallDir = "/opt/pilot_kneeboard"

	DefaultServiceName  = "pilot-kneeboard"
	DefaultUnitTemplate = "kneeboard.service.tmpl"
	DefaultUnitDir      = "/etc/systemd/system"

	DefaultBoardOutput = "DSI-1"
)

// Default returns the configuration describing the stock install.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:       DefaultAppName,
			Runtime:    DefaultRuntime,
			EntryPoint: DefaultEntryPoint,
			InstallDir: DefaultInstallDir,
		},
		Dependencies: DefaultDependencies(),
		Package: PackageConfig{
			Files:         DefaultManifestFiles(),
			ChocoManifest: "packages.config",
		},
		Service: ServiceConfig{
			Name:         DefaultServiceName,
			UnitTemplate: DefaultUnitTemplate,
			UnitDir:      DefaultUnitDir,
		},
		Display: DisplayConfig{
			BoardOutput: DefaultBoardOutput,
		},
	}
}

// DefaultDependencies is the ordered stock dependency set for Debian-family
// hosts: runtime first, then native libraries, then the UI toolkit that
// links against them, then the headless framebuffer.
func DefaultDependencies() []DependencyConfig {
	return []DependencyConfig{
		{
			Name:     "python3",
			Check:    []string{"python3", "--version"},
			Install:  []string{"apt-get", "install", "-y", "python3"},
			Required: true,
		},
		{
			Name:     "python3-pip",
			Check:    []string{"python3", "-m", "pip", "--version"},
			Install:  []string{"apt-get", "install", "-y", "python3-pip"},
			Required: true,
		},
		{
			Name:     "libsdl2",
			Check:    []string{"dpkg", "-s", "libsdl2-2.0-0"},
			Install:  []string{"apt-get", "install", "-y", "libsdl2-2.0-0", "libsdl2-image-2.0-0", "libsdl2-mixer-2.0-0", "libsdl2-ttf-2.0-0"},
			Required: true,
		},
		{
			Name:     "kivy",
			Check:    []string{"python3", "-c", "import kivy"},
			Install:  []string{"python3", "-m", "pip", "install", "--break-system-packages", "kivy"},
			Required: true,
		},
		{
			Name:     "xvfb",
			Check:    []string{"which", "xvfb-run"},
			Install:  []string{"apt-get", "install", "-y", "xvfb"},
			Required: true,
		},
		{
			Name:     "xrandr",
			Check:    []string{"which", "xrandr"},
			Install:  []string{"apt-get", "install", "-y", "x11-xserver-utils"},
			Required: false,
		},
	}
}

// DefaultManifestFiles is the fixed file set constituting a release.
func DefaultManifestFiles() []string {
	return []string{
		"kneeboard_gui.py",
		"requirements.txt",
		"kneeboard.service.tmpl",
		"kneeboard.yaml",
		"reference/checklists.txt",
		"reference/frequencies.txt",
		"assets/icon.png",
		"README.md",
		"LICENSE",
	}
}

// applyDefaults fills in any fields the config file left empty.
func (c *Config) applyDefaults() {
	d := Default()

	if c.App.Name == "" {
		c.App.Name = d.App.Name
	}
	if c.App.Runtime == "" {
		c.App.Runtime = d.App.Runtime
	}
	if c.App.EntryPoint == "" {
		c.App.EntryPoint = d.App.EntryPoint
	}
	if c.App.InstallDir == "" {
		c.App.InstallDir = d.App.InstallDir
	}
	if len(c.Dependencies) == 0 {
		c.Dependencies = d.Dependencies
	}
	if len(c.Package.Files) == 0 {
		c.Package.Files = d.Package.Files
	}
	if c.Package.ChocoManifest == "" {
		c.Package.ChocoManifest = d.Package.ChocoManifest
	}
	if c.Service.Name == "" {
		c.Service.Name = d.Service.Name
	}
	if c.Service.UnitTemplate == "" {
		c.Service.UnitTemplate = d.Service.UnitTemplate
	}
	if c.Service.UnitDir == "" {
		c.Service.UnitDir = d.Service.UnitDir
	}
	if c.Display.BoardOutput == "" {
		c.Display.BoardOutput = d.Display.BoardOutput
	}
}

// EntryPointPath resolves the application entry point against the install
// directory.
func (c *Config) EntryPointPath() string {
	if filepath.IsAbs(c.App.EntryPoint) {
		return c.App.EntryPoint
	}
	return filepath.Join(c.App.InstallDir, c.App.EntryPoint)
}

// UnitTemplatePath resolves the service template against the install
// directory.
func (c *Config) UnitTemplatePath() string {
	if filepath.IsAbs(c.Service.UnitTemplate) {
		return c.Service.UnitTemplate
	}
	return filepath.Join(c.App.InstallDir, c.Service.UnitTemplate)
}
