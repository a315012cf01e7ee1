package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sznuper/repro/internal/config"
	"github.com/sznuper/repro/internal/reference"
	"github.com/sznuper/repro/internal/runner"
	"github.com/sznuper/repro/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run [figure]",
	Short: "Reproduce figures once and check them against their references",
	Long: "Runs a single figure by name, or every configured figure if no name is given. " +
		"The run stops at the first figure that fails. Use --dry-run to render and validate " +
		"notifications without sending them.\n\n" +
		"Exit status: 0 pass, 1 config error, 2 collection failed, 3 statistics generation " +
		"failed, 4 reference unavailable, 5 outside tolerance.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		plain, _ := cmd.Flags().GetBool("plain")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		figs, err := selectFigures(cfg, args)
		if err != nil {
			return err
		}

		progress := !plain && ui.IsTerminal(os.Stderr)
		// The spinner owns stderr while it runs.
		logger, closeLog, err := setupLogger(cfg, progress)
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r := runner.New(cfg, reference.Builtin(), logger)
		st := ui.NewStyles(!plain && ui.IsTerminal(os.Stdout))

		var rep runner.Report
		if progress {
			rep, err = ui.RunWithProgress(os.Stderr, st, func(observe runner.Observer) runner.Report {
				r.Observe(observe)
				return r.Run(ctx, figs...)
			})
			if err != nil {
				logger.Warn("progress display failed", "error", err)
			}
		} else {
			rep = r.Run(ctx, figs...)
		}

		r.Notify(&rep, dryRun)
		fmt.Print(ui.RenderReport(rep, st))

		if code := rep.ExitCode(); code != runner.ExitPass {
			closeLog()
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "render and validate notifications without sending them")
	runCmd.Flags().Bool("plain", false, "no spinner or colors")
	rootCmd.AddCommand(runCmd)
}

// selectFigures returns the named figure, or every configured figure.
func selectFigures(cfg *config.Config, args []string) ([]*config.Figure, error) {
	if len(args) == 1 {
		fig := cfg.FindFigure(args[0])
		if fig == nil {
			return nil, fmt.Errorf("figure %q not found in config", args[0])
		}
		return []*config.Figure{fig}, nil
	}
	figs := make([]*config.Figure, len(cfg.Figures))
	for i := range cfg.Figures {
		figs[i] = &cfg.Figures[i]
	}
	return figs, nil
}
