package cmd

import (
	"fmt"
	"net/http"

	"filemover/internal/sweep"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a sweep of the source directory now",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Post(daemonURL("/sweep"), "application/json", nil)
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		var body struct {
			Result sweep.Result `json:"result"`
			Error  string       `json:"error"`
		}
		if err := decodeResponse(resp, &body); err != nil {
			return err
		}
		if body.Error != "" {
			return fmt.Errorf("sweep failed: %s", body.Error)
		}

		fmt.Printf("listed %d, submitted %d, too young %d (%s)\n",
			body.Result.Listed, body.Result.Submitted, body.Result.TooYoung, body.Result.Duration)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
