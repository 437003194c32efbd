//go:build !linux && !windows

package autostart

func newAutoStarter() AutoStarter {
	return &UnsupportedAutoStarter{}
}
