package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kberrors "github.com/timberavionics/kneeboardctl/internal/errors"
	"github.com/timberavionics/kneeboardctl/internal/execx"
)

type writtenFile struct {
	path string
	data []byte
}

func testRegistrar(fake *execx.Fake, euid int, env map[string]string, written *writtenFile) *Registrar {
	r := NewRegistrar(fake, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		"pilot-kneeboard", "/etc/systemd/system")
	r.Geteuid = func() int { return euid }
	r.Getenv = func(key string) string { return env[key] }
	r.CurrentUser = func() (*user.User, error) { return &user.User{Username: "session"}, nil }
	r.ReadFile = func(string) ([]byte, error) { return []byte(unitTemplate), nil }
	r.WriteFile = func(path string, data []byte, _ os.FileMode) error {
		written.path = path
		written.data = data
		return nil
	}
	r.Stat = func(string) (os.FileInfo, error) { return nil, nil }
	r.Sleep = func(time.Duration) {}
	return r
}

func defaultOpts() InstallOptions {
	return InstallOptions{
		Runtime:      "/usr/bin/python3",
		EntryPoint:   "/opt/app/app.py",
		InstallDir:   "/opt/app",
		TemplatePath: "/opt/app/kneeboard.service.tmpl",
	}
}

func TestInstallRequiresRoot(t *testing.T) {
	var written writtenFile
	r := testRegistrar(execx.NewFake(), 1000, nil, &written)

	err := r.Install(context.Background(), defaultOpts())
	require.Error(t, err)

	var kbe *kberrors.KneeboardError
	require.ErrorAs(t, err, &kbe)
	assert.Equal(t, kberrors.CategoryPrecondition, kbe.Category)
	assert.Contains(t, kbe.Remediation, "sudo")
	assert.Empty(t, written.path, "nothing may be written without privileges")
}

func TestInstallRejectsMissingEntryPoint(t *testing.T) {
	var written writtenFile
	r := testRegistrar(execx.NewFake(), 0, nil, &written)
	r.Stat = func(path string) (os.FileInfo, error) {
		if path == "/opt/app/app.py" {
			return nil, os.ErrNotExist
		}
		return nil, nil
	}

	err := r.Install(context.Background(), defaultOpts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/opt/app/app.py")
}

func TestInstallRendersDescriptorRoundTrip(t *testing.T) {
	var written writtenFile
	fake := execx.NewFake()
	r := testRegistrar(fake, 0, map[string]string{"SUDO_USER": "pi"}, &written)

	require.NoError(t, r.Install(context.Background(), defaultOpts()))

	assert.Equal(t, "/etc/systemd/system/pilot-kneeboard.service", written.path)
	rendered := string(written.data)
	assert.Contains(t, rendered, "ExecStart=/usr/bin/python3 /opt/app/app.py\n")
	assert.Contains(t, rendered, "WorkingDirectory=/opt/app\n")
	assert.Contains(t, rendered, "User=pi\n")
	assert.Contains(t, rendered, "Description=Pilot kneeboard kiosk")

	// Reload then enable, no start without opt-in.
	assert.Equal(t, []string{
		"systemctl daemon-reload",
		"systemctl enable pilot-kneeboard.service",
	}, fake.Calls)
}

func TestInstallStartNowProbesActiveState(t *testing.T) {
	var written writtenFile
	fake := execx.NewFake()
	fake.Outputs["systemctl is-active pilot-kneeboard.service"] = "active"
	r := testRegistrar(fake, 0, map[string]string{"SUDO_USER": "pi"}, &written)

	opts := defaultOpts()
	opts.StartNow = true
	require.NoError(t, r.Install(context.Background(), opts))

	assert.Equal(t, 1, fake.CallCount("systemctl start pilot-kneeboard.service"))
	assert.Equal(t, 1, fake.CallCount("systemctl is-active pilot-kneeboard.service"))
}

func TestInstallStartFailureIsNotFatal(t *testing.T) {
	var written writtenFile
	fake := execx.NewFake()
	fake.Errors["systemctl start pilot-kneeboard.service"] = fmt.Errorf("exit status 1")
	r := testRegistrar(fake, 0, map[string]string{"SUDO_USER": "pi"}, &written)

	opts := defaultOpts()
	opts.StartNow = true
	assert.NoError(t, r.Install(context.Background(), opts),
		"the unit is registered; a failed immediate start only warns")
}

func TestResolveUserFallbackChain(t *testing.T) {
	var written writtenFile

	// SUDO_USER wins.
	fake := execx.NewFake()
	r := testRegistrar(fake, 0, map[string]string{"SUDO_USER": "pi"}, &written)
	assert.Equal(t, "pi", r.resolveUser(context.Background()))

	// Then logname.
	fake = execx.NewFake()
	fake.Outputs["logname"] = "operator"
	r = testRegistrar(fake, 0, nil, &written)
	assert.Equal(t, "operator", r.resolveUser(context.Background()))

	// Then the current session user.
	fake = execx.NewFake()
	fake.Errors["logname"] = fmt.Errorf("no login name")
	r = testRegistrar(fake, 0, nil, &written)
	assert.Equal(t, "session", r.resolveUser(context.Background()))
}

func TestInstallIsIdempotent(t *testing.T) {
	var written writtenFile
	fake := execx.NewFake()
	r := testRegistrar(fake, 0, map[string]string{"SUDO_USER": "pi"}, &written)

	require.NoError(t, r.Install(context.Background(), defaultOpts()))
	first := string(written.data)
	require.NoError(t, r.Install(context.Background(), defaultOpts()))

	assert.Equal(t, first, string(written.data), "re-running overwrites the descriptor in place")
	assert.Equal(t, 2, fake.CallCount("systemctl daemon-reload"))
}
