package mover

import (
	"errors"
	"io"
	"io/fs"
	"syscall"

	"filemover/internal/util"
)

// IsTransient reports whether err is an I/O-class failure worth retrying:
// a locked or busy file, a destination name taken by a concurrent mover, a
// source that changed or vanished mid-copy. Everything else, including
// permission errors, invalid or over-long names and unknown errors, is
// fatal.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, fs.ErrExist) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrShortWrite) ||
		errors.Is(err, util.ErrChecksumMismatch) ||
		errors.Is(err, util.ErrSourceChanged) {
		return true
	}

	if errno, ok := errors.AsType[syscall.Errno](err); ok {
		return transientErrno(errno)
	}

	return false
}
