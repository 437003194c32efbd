//go:build linux

package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fakeSystemctl(t *testing.T) *[][]string {
	t.Helper()
	var calls [][]string
	orig := systemctl
	systemctl = func(args ...string) ([]byte, error) {
		calls = append(calls, args)
		return nil, nil
	}
	t.Cleanup(func() { systemctl = orig })
	return &calls
}

func TestRenderUnit(t *testing.T) {
	var sb strings.Builder
	if err := renderUnit(&sb, "/usr/local/bin/filemover"); err != nil {
		t.Fatalf("render: %v", err)
	}

	unit := sb.String()
	for _, want := range []string{
		"[Service]",
		`ExecStart="/usr/local/bin/filemover" run`,
		"WantedBy=default.target",
	} {
		if !strings.Contains(unit, want) {
			t.Fatalf("unit missing %q:\n%s", want, unit)
		}
	}
}

func TestInstallUninstall(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	calls := fakeSystemctl(t)

	a := &LinuxAutoStarter{}
	if err := a.Install("/opt/filemover"); err != nil {
		t.Fatalf("install: %v", err)
	}

	installed, err := a.IsInstalled()
	if err != nil || !installed {
		t.Fatalf("expected installed, got %v %v", installed, err)
	}

	path, _ := a.unitPath()
	if filepath.Base(path) != unitName {
		t.Fatalf("unexpected unit path %s", path)
	}
	if len(*calls) != 3 || (*calls)[1][0] != "enable" {
		t.Fatalf("unexpected systemctl calls %v", *calls)
	}

	if err := a.Uninstall(); err != nil {
		t.Fatalf("uninstall: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected unit file removed, got %v", err)
	}
	if err := a.Uninstall(); err != nil {
		t.Fatalf("second uninstall: %v", err)
	}
}
