package cmd

import (
	"fmt"
	"os"

	"filemover/internal/autostart"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Register as a service started on boot",
	RunE: func(cmd *cobra.Command, args []string) error {
		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}

		as := autostart.New()
		if installed, err := as.IsInstalled(); err == nil && installed {
			fmt.Println("filemover service already installed")
			return nil
		}

		if err := as.Install(execPath); err != nil {
			return err
		}

		fmt.Printf("%s registered for autostart\n", autostart.DisplayName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
