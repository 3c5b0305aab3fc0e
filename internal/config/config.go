// Package config loads the kneeboardctl configuration: application identity
// and paths, the ordered dependency declarations, the release package
// manifest, and service registration settings. Configuration is optional;
// every field has a default describing the stock pilot_kneeboard install.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	App          AppConfig          `yaml:"app"`
	Dependencies []DependencyConfig `yaml:"dependencies,omitempty"`
	Package      PackageConfig      `yaml:"package"`
	Service      ServiceConfig      `yaml:"service"`
	Display      DisplayConfig      `yaml:"display"`
}

// AppConfig describes the kiosk application being deployed.
type AppConfig struct {
	// Name is the release/package name.
	Name string `yaml:"name"`

	// Runtime is the absolute path to the language runtime.
	Runtime string `yaml:"runtime"`

	// EntryPoint is the application entry script, relative to InstallDir
	// unless absolute.
	EntryPoint string `yaml:"entry_point"`

	// InstallDir is the canonical install location on the target.
	InstallDir string `yaml:"install_dir"`
}

// DependencyConfig declares one provisionable dependency. Entries apply in
// declared order because later entries may depend on earlier ones.
type DependencyConfig struct {
	Name     string   `yaml:"name"`
	Check    []string `yaml:"check"`
	Install  []string `yaml:"install"`
	Required bool     `yaml:"required"`
}

// PackageConfig declares the distributable release contents.
type PackageConfig struct {
	// Files are the relative paths bundled into a release archive.
	Files []string `yaml:"files"`

	// ChocoManifest is the Chocolatey packages.config used for the single
	// manifest install call on Windows.
	ChocoManifest string `yaml:"choco_manifest,omitempty"`
}

// ServiceConfig declares service registration inputs.
type ServiceConfig struct {
	// Name is the systemd unit / autostart entry name.
	Name string `yaml:"name"`

	// UnitTemplate is the service-definition template path, relative to
	// the install dir unless absolute.
	UnitTemplate string `yaml:"unit_template"`

	// UnitDir is the service manager's configuration directory.
	UnitDir string `yaml:"unit_dir"`
}

// DisplayConfig declares panel rotation settings.
type DisplayConfig struct {
	// BoardOutput is the output identifier tried first on the target board.
	BoardOutput string `yaml:"board_output"`
}

// Load loads configuration from the specified file. A missing file is not an
// error: the built-in defaults describe the stock install.
func Load(configPath string) (*Config, error) {
	// Load .env file if present; its variables participate in expansion.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	config := Default()

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	return config, nil
}
