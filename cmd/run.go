package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"filemover/internal/autostart"
	"filemover/internal/config"
	"filemover/internal/daemon"
	"filemover/internal/db"
	"filemover/internal/host"
	"filemover/internal/logger"
	"filemover/internal/notify"
	"filemover/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const stopBudget = 10 * time.Second

var (
	runSource string
	runDest   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the source directory and move new files to the destination",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()
		defer func() {
			_ = db.Close()
		}()

		if runSource != "" {
			cfg.SourceDir = runSource
		}
		if runDest != "" {
			cfg.DestDir = runDest
		}
		if err := cfg.Normalize(); err != nil {
			return err
		}

		return host.Run(autostart.ServiceName, runDaemon)
	},
}

func buildSink() (notify.Sink, func()) {
	primary := notify.LogSink{}
	if !cfg.EventLog {
		return primary, func() {}
	}

	path := ""
	if dir, err := config.Dir(); err == nil {
		path = filepath.Join(dir, "events.log")
	}

	el, err := notify.OpenEventLog(notify.EventSource, path)
	if err != nil {
		logger.Log.Warn("event log unavailable, using log output only",
			zap.Error(err))
		return primary, func() {}
	}

	return notify.Multi{primary, notify.NewGuard("eventlog", el)}, func() {
		_ = el.Close()
	}
}

func runDaemon(ctx context.Context) error {
	sink, closeSink := buildSink()
	defer closeSink()

	svc := daemon.NewService(*cfg,
		daemon.WithSink(sink),
		daemon.WithRecorder(repository.NewHistoryRepository()))

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	srv := daemon.NewServer(svc, cfg.DaemonPort)
	srv.Start()

	logger.Log.Info("filemover daemon started",
		zap.String("src", cfg.SourceDir),
		zap.String("dst", cfg.DestDir),
		zap.Int("port", cfg.DaemonPort))

	select {
	case <-ctx.Done():
		logger.Log.Info("shutting down")
	case <-srv.StopCh():
		logger.Log.Info("stop requested via API")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopBudget)
	defer cancel()

	if err := srv.Stop(stopCtx); err != nil {
		logger.Log.Warn("failed to stop control server", zap.Error(err))
	}

	return svc.Stop(stopCtx)
}

func init() {
	runCmd.Flags().StringVar(&runSource, "source", "", "source directory to watch")
	runCmd.Flags().StringVar(&runDest, "dest", "", "destination directory")
	rootCmd.AddCommand(runCmd)
}
