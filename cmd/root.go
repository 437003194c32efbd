package cmd

import (
	"fmt"
	"os"

	"filemover/internal/config"
	"filemover/internal/db"
	"filemover/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfg   *config.Config
	debug bool
)

var clientCmds = map[string]bool{
	"status": true, "stop": true, "sweep": true,
	"history": true, "install": true, "uninstall": true,
}

var rootCmd = &cobra.Command{
	Use:           "filemover",
	Short:         "Move files dropped into a folder to another folder",
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		logger.Init(debug)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		if cfg.LogFile != "" {
			logger.AddFile(cfg.LogFile)
		}

		if !clientCmds[cmd.Name()] {
			if err := db.Init(cfg.DBPath); err != nil {
				return err
			}
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func daemonURL(path string) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", cfg.DaemonPort, path)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
}
