package provision

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timberavionics/kneeboardctl/internal/config"
	kberrors "github.com/timberavionics/kneeboardctl/internal/errors"
	"github.com/timberavionics/kneeboardctl/internal/execx"
	"github.com/timberavionics/kneeboardctl/internal/probe"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func dep(name string, required bool) config.DependencyConfig {
	return config.DependencyConfig{
		Name:     name,
		Check:    []string{"check-" + name},
		Install:  []string{"apt-get", "install", "-y", name},
		Required: required,
	}
}

var linuxProfile = probe.Profile{OSFamily: probe.OSLinux}

func TestSatisfiedSetInstallsNothing(t *testing.T) {
	fake := execx.NewFake()
	p := New(fake, quietLogger())

	report, err := p.Apply(context.Background(), linuxProfile,
		[]config.DependencyConfig{dep("python3", true), dep("xvfb", true)}, "")
	require.NoError(t, err)

	assert.Equal(t, 0, report.Installed)
	assert.Equal(t, 0, fake.CallCount("apt-get"))
	for _, r := range report.Results {
		assert.Equal(t, StateSatisfied, r.State)
	}
}

func TestIdempotenceSecondRunIssuesZeroInstalls(t *testing.T) {
	fake := execx.NewFake()
	// The check fails once; after the install runs it passes forever.
	fake.FailuresLeft["check-kivy"] = 1
	p := New(fake, quietLogger())

	deps := []config.DependencyConfig{dep("kivy", true)}

	report, err := p.Apply(context.Background(), linuxProfile, deps, "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Installed)
	assert.Equal(t, StateInstalled, report.Results[0].State)

	report, err = p.Apply(context.Background(), linuxProfile, deps, "")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Installed)
	assert.Equal(t, 1, fake.CallCount("apt-get"), "second run must issue zero install commands")
	assert.Equal(t, StateSatisfied, report.Results[0].State)
}

func TestRequiredUnmetAbortsWithRemediation(t *testing.T) {
	fake := execx.NewFake()
	fake.Errors["check-libsdl2"] = fmt.Errorf("exit status 1")
	p := New(fake, quietLogger())

	_, err := p.Apply(context.Background(), linuxProfile,
		[]config.DependencyConfig{dep("libsdl2", true), dep("kivy", true)}, "")
	require.Error(t, err)

	var kbe *kberrors.KneeboardError
	require.ErrorAs(t, err, &kbe)
	assert.Equal(t, kberrors.CategoryDependency, kbe.Category)
	assert.Equal(t, "sudo apt-get install -y libsdl2", kbe.Remediation)

	// Ordering: a failed required entry stops later entries from applying.
	assert.Equal(t, 0, fake.CallCount("check-kivy"))
}

func TestOptionalUnmetOnlyWarns(t *testing.T) {
	fake := execx.NewFake()
	fake.Errors["check-xrandr"] = fmt.Errorf("exit status 1")
	p := New(fake, quietLogger())

	report, err := p.Apply(context.Background(), linuxProfile,
		[]config.DependencyConfig{dep("xrandr", false), dep("python3", true)}, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"xrandr"}, report.Unmet())
	// The run continued past the optional failure.
	assert.Equal(t, 1, fake.CallCount("check-python3"))
}

func TestInstallRunsAtMostOncePerEntry(t *testing.T) {
	fake := execx.NewFake()
	fake.Errors["check-xvfb"] = fmt.Errorf("exit status 1")
	p := New(fake, quietLogger())

	_, err := p.Apply(context.Background(), linuxProfile,
		[]config.DependencyConfig{dep("xvfb", false)}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, fake.CallCount("apt-get install -y xvfb"))
	assert.Equal(t, 2, fake.CallCount("check-xvfb"), "check, install, exactly one recheck")
}

func TestWindowsDelegatesToSingleManifestInstall(t *testing.T) {
	fake := execx.NewFake()
	// Both checks fail once, then pass after the manifest install.
	fake.FailuresLeft["check-python3"] = 1
	fake.FailuresLeft["check-kivy"] = 1
	p := New(fake, quietLogger())

	winProfile := probe.Profile{OSFamily: probe.OSWindows}
	deps := []config.DependencyConfig{dep("python3", true), dep("kivy", true)}

	report, err := p.Apply(context.Background(), winProfile, deps, "packages.config")
	require.NoError(t, err)

	assert.Equal(t, 1, fake.CallCount("choco install packages.config -y"))
	assert.Equal(t, 0, fake.CallCount("apt-get"))
	require.Len(t, report.Results, 2)
}

func TestWindowsInstalledCountsOnlyRecheckedEntries(t *testing.T) {
	fake := execx.NewFake()
	// python3's check passes after the manifest install; xrandr's never does.
	fake.FailuresLeft["check-python3"] = 1
	fake.Errors["check-xrandr"] = fmt.Errorf("exit status 1")
	p := New(fake, quietLogger())

	winProfile := probe.Profile{OSFamily: probe.OSWindows}
	report, err := p.Apply(context.Background(), winProfile,
		[]config.DependencyConfig{dep("python3", true), dep("xrandr", false)}, "packages.config")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Installed, "an entry still unmet after recheck is not installed")
	assert.Equal(t, []string{"xrandr"}, report.Unmet())
}

func TestWindowsSatisfiedSetSkipsManifestCall(t *testing.T) {
	fake := execx.NewFake()
	p := New(fake, quietLogger())

	winProfile := probe.Profile{OSFamily: probe.OSWindows}
	report, err := p.Apply(context.Background(), winProfile,
		[]config.DependencyConfig{dep("python3", true)}, "packages.config")
	require.NoError(t, err)

	assert.Equal(t, 0, fake.CallCount("choco"))
	assert.Equal(t, StateSatisfied, report.Results[0].State)
}
