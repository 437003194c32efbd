package cmd

import (
	"fmt"
	"net/http"

	"filemover/internal/model"

	"github.com/spf13/cobra"
)

var historyN int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent moves",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := fmt.Sprintf("%s?n=%d", daemonURL("/history"), historyN)
		resp, err := http.Get(url)
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		var records []model.MoveRecord
		if err := decodeResponse(resp, &records); err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("no history yet")
			return nil
		}

		for _, r := range records {
			status := "✓"
			switch r.Outcome {
			case model.OutcomeSourceVanished:
				status = "-"
			case model.OutcomeExhaustedRetries, model.OutcomeFatal:
				status = "✗"
			}

			target := r.DstPath
			if r.ErrMsg != "" {
				target = r.ErrMsg
			}

			fmt.Printf("%s [%s] %-7s %s -> %s\n",
				status,
				r.MovedAt.Format("2006-01-02 15:04:05"),
				r.Origin,
				r.SrcPath,
				target,
			)
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of history entries to show")
	rootCmd.AddCommand(historyCmd)
}
