//go:build !windows

package host

import "errors"

func IsService() (bool, error) {
	return false, nil
}

func runService(_ string, _ RunFunc) error {
	return errors.New("service manager hosting is only supported on windows")
}
