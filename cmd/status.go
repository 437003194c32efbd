package cmd

import (
	"fmt"
	"net/http"
	"time"

	"filemover/internal/model"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(daemonURL("/status"))
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		var snap model.ServiceSnapshot
		if err := decodeResponse(resp, &snap); err != nil {
			return err
		}

		fmt.Printf("%-10s %-30s %-30s %-6s %-8s %-6s %s\n",
			"WATCHER", "SRC", "DST", "MOVED", "VANISHED", "FAILED", "LAST MOVE")
		fmt.Printf("%-10s %-30s %-30s %-6d %-8d %-6d %s\n",
			snap.WatcherState, snap.SourceDir, snap.DestDir,
			snap.Moved, snap.Vanished, snap.Failed, formatTime(snap.LastMove))
		fmt.Printf("uptime: %s, sweeps: %d, last sweep: %s\n",
			time.Since(snap.StartedAt).Round(time.Second), snap.Sweeps, formatTime(snap.LastSweep))

		return nil
	},
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
