package autostart

// ServiceName is the name registered with the host's service manager.
const ServiceName = "FileMonitorService"

const DisplayName = "File Monitor Service"

const description = "Moves files created in the source directory into the destination directory"

type AutoStarter interface {
	Install(execPath string) error
	Uninstall() error
	IsInstalled() (bool, error)
}

func New() AutoStarter {
	return newAutoStarter()
}

type UnsupportedAutoStarter struct{}

func (u *UnsupportedAutoStarter) Install(_ string) error {
	return nil
}

func (u *UnsupportedAutoStarter) Uninstall() error {
	return nil
}

func (u *UnsupportedAutoStarter) IsInstalled() (bool, error) {
	return false, nil
}
