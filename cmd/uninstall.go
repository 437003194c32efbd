package cmd

import (
	"fmt"

	"filemover/internal/autostart"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Unregister the service",
	RunE: func(cmd *cobra.Command, args []string) error {
		as := autostart.New()
		if err := as.Uninstall(); err != nil {
			return err
		}

		fmt.Printf("%s autostart removed\n", autostart.DisplayName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
