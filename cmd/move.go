package cmd

import (
	"errors"
	"fmt"
	"os"

	"filemover/internal/db"
	"filemover/internal/logger"
	"filemover/internal/model"
	"filemover/internal/mover"
	"filemover/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var moveCmd = &cobra.Command{
	Use:   "move <file>...",
	Short: "Move files to the destination directory once, without the daemon",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()
		defer func() {
			_ = db.Close()
		}()

		if err := os.MkdirAll(cfg.DestDir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", cfg.DestDir, err)
		}

		engine, err := mover.NewEngine(cfg.DestDir,
			mover.WithMaxAttempts(cfg.MaxAttempts),
			mover.WithBaseDelay(cfg.RetryBaseDelay))
		if err != nil {
			return err
		}

		histRepo := repository.NewHistoryRepository()

		var failed error
		for _, path := range args {
			f, err := model.NewPendingFileAt(path, model.OriginManual)
			if err != nil {
				return err
			}

			outcome := engine.Move(f)
			if err := histRepo.Save(outcome); err != nil {
				logger.Log.Warn("failed to save history",
					zap.String("src", f.SourcePath),
					zap.Error(err))
			}

			switch outcome.Kind {
			case model.OutcomeMoved:
				fmt.Printf("%s -> %s\n", f.SourcePath, outcome.DestPath)
			case model.OutcomeSourceVanished:
				fmt.Printf("%s: no such file\n", f.SourcePath)
			default:
				failed = errors.Join(failed, fmt.Errorf("%s: %w", f.SourcePath, outcome.Err))
			}
		}

		return failed
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
}
