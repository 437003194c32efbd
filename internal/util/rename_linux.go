package util

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// RenameNoReplace moves src to dst and fails with an error matching
// fs.ErrExist if dst is already taken.
func RenameNoReplace(src, dst string) error {
	err := unix.Renameat2(unix.AT_FDCWD, src, unix.AT_FDCWD, dst, unix.RENAME_NOREPLACE)
	if err == nil {
		return nil
	}

	// kernels before 3.15 and some file systems (e.g. NFS) lack the flag
	if errors.Is(err, unix.ENOSYS) || errors.Is(err, unix.EINVAL) {
		return linkRename(src, dst)
	}

	return &os.LinkError{Op: "rename", Old: src, New: dst, Err: err}
}
