//go:build linux

package autostart

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
)

const unitName = "filemover.service"

var unitTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description={{.Description}}
After=local-fs.target

[Service]
ExecStart="{{.ExecPath}}" run
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`))

// systemctl is swapped out in tests.
var systemctl = func(args ...string) ([]byte, error) {
	return exec.Command("systemctl", append([]string{"--user"}, args...)...).CombinedOutput()
}

type LinuxAutoStarter struct{}

func newAutoStarter() AutoStarter {
	return &LinuxAutoStarter{}
}

func (l *LinuxAutoStarter) unitPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, ".config", "systemd", "user")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(dir, unitName), nil
}

func renderUnit(w io.Writer, execPath string) error {
	return unitTemplate.Execute(w, map[string]string{
		"Description": DisplayName + ": " + description,
		"ExecPath":    execPath,
	})
}

func (l *LinuxAutoStarter) Install(execPath string) error {
	path, err := l.unitPath()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create unit file: %w", err)
	}

	if err := renderUnit(f, execPath); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write unit file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write unit file: %w", err)
	}

	for _, args := range [][]string{
		{"daemon-reload"},
		{"enable", unitName},
		{"start", unitName},
	} {
		if out, err := systemctl(args...); err != nil {
			return fmt.Errorf("failed to run systemctl %v: %w\n%s", args, err, out)
		}
	}

	return nil
}

func (l *LinuxAutoStarter) Uninstall() error {
	_, _ = systemctl("stop", unitName)
	_, _ = systemctl("disable", unitName)

	path, err := l.unitPath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	_, _ = systemctl("daemon-reload")
	return nil
}

func (l *LinuxAutoStarter) IsInstalled() (bool, error) {
	path, err := l.unitPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	return err == nil, nil
}
