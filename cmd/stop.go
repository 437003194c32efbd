package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Post(daemonURL("/stop"), "application/json", nil)
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}
		if err := decodeResponse(resp, nil); err != nil {
			return err
		}

		fmt.Println("stopping")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
