package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sznuper/repro/internal/reference"
	"github.com/sznuper/repro/internal/runner"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and notification targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		for _, f := range cfg.Figures {
			fmt.Printf("✓ %s: %d metrics, %d groups, tolerance ±%g%%\n",
				f.Name, len(f.Metrics), len(f.Groups), cfg.FigureTolerance(&f)*100)
		}

		// Render every target against a sample failing verdict so template
		// and service URL errors surface before a real run.
		r := runner.New(cfg, reference.Builtin(), slog.New(slog.DiscardHandler))
		sample := runner.Report{
			RunID: "validate",
			Results: []runner.Result{{
				Figure:   cfg.Figures[0].Name,
				Title:    cfg.Figures[0].DisplayName(),
				ErrStage: runner.StageCompare,
				Cause:    "sample cause",
			}},
		}
		r.Notify(&sample, true)
		if sample.NotifyErr != nil {
			return sample.NotifyErr
		}
		for _, name := range sample.Notified {
			fmt.Printf("✓ notify %s: %q\n", name, sample.Rendered[name])
		}

		fmt.Println("config ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
