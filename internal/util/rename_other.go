//go:build !linux

package util

import (
	"errors"
	"io/fs"
	"os"
)

// RenameNoReplace moves src to dst and fails with an error matching
// fs.ErrExist if dst is already taken.
func RenameNoReplace(src, dst string) error {
	err := linkRename(src, dst)
	if err == nil ||
		errors.Is(err, fs.ErrExist) ||
		errors.Is(err, fs.ErrNotExist) ||
		IsCrossDevice(err) {
		return err
	}

	// no hard links on this file system (FAT, some network shares)
	if _, statErr := os.Lstat(dst); statErr == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist}
	}

	return os.Rename(src, dst)
}
