//go:build !windows

package mover

import "syscall"

func transientErrno(errno syscall.Errno) bool {
	switch errno {
	case syscall.EBUSY, syscall.ETXTBSY, syscall.EAGAIN, syscall.EINTR:
		return true
	}

	return false
}
