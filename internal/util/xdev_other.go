//go:build !windows

package util

import (
	"errors"
	"syscall"
)

func IsCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
