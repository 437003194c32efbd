// Package host runs the daemon either in the foreground, stopping on
// SIGINT/SIGTERM, or under the platform service manager.
package host

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// RunFunc runs until ctx is cancelled or it fails on its own.
type RunFunc func(ctx context.Context) error

// Foreground runs fn until it returns or the process receives SIGINT or
// SIGTERM.
func Foreground(fn RunFunc) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn(ctx)
}

// Run hosts fn under the service manager when the process was launched by
// one, and in the foreground otherwise.
func Run(name string, fn RunFunc) error {
	managed, err := IsService()
	if err != nil {
		return err
	}
	if managed {
		return runService(name, fn)
	}

	return Foreground(fn)
}
