//go:build windows

package mover

import (
	"syscall"

	"golang.org/x/sys/windows"
)

func transientErrno(errno syscall.Errno) bool {
	switch errno {
	case windows.ERROR_SHARING_VIOLATION, windows.ERROR_LOCK_VIOLATION:
		return true
	}

	return false
}
