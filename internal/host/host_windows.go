//go:build windows

package host

import (
	"context"

	"filemover/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sys/windows/svc"
)

func IsService() (bool, error) {
	return svc.IsWindowsService()
}

func runService(name string, fn RunFunc) error {
	return svc.Run(name, &handler{run: fn})
}

type handler struct {
	run RunFunc
}

func (h *handler) Execute(_ []string, req <-chan svc.ChangeRequest, status chan<- svc.Status) (bool, uint32) {
	const accepts = svc.AcceptStop | svc.AcceptShutdown

	status <- svc.Status{State: svc.StartPending}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- h.run(ctx) }()

	status <- svc.Status{State: svc.Running, Accepts: accepts}

	for {
		select {
		case err := <-errCh:
			return h.exit(status, err)
		case c := <-req:
			switch c.Cmd {
			case svc.Interrogate:
				status <- c.CurrentStatus
			case svc.Stop, svc.Shutdown:
				status <- svc.Status{State: svc.StopPending}
				cancel()
				return h.exit(status, <-errCh)
			default:
				logger.Log.Warn("unexpected service control request",
					zap.Uint32("cmd", uint32(c.Cmd)))
			}
		}
	}
}

func (h *handler) exit(status chan<- svc.Status, err error) (bool, uint32) {
	status <- svc.Status{State: svc.StopPending}
	if err != nil {
		logger.Log.Error("service stopped with error", zap.Error(err))
		return true, 1
	}

	return false, 0
}
