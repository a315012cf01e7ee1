package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sznuper/repro/internal/reference"
	"github.com/sznuper/repro/internal/runner"
	"github.com/sznuper/repro/internal/schedule"
	"github.com/sznuper/repro/internal/ui"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Re-verify figures on a schedule",
	Long: "Runs every configured figure whenever the trigger fires: trigger.interval, " +
		"trigger.cron, or a change under trigger.watch. Each verdict is sent to the " +
		"notify targets. Passes never overlap.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("interval"); v != "" {
			cfg.Trigger.Interval, cfg.Trigger.Cron, cfg.Trigger.Watch = v, "", ""
		}
		if v, _ := cmd.Flags().GetString("cron"); v != "" {
			cfg.Trigger.Interval, cfg.Trigger.Cron, cfg.Trigger.Watch = "", v, ""
		}
		if v, _ := cmd.Flags().GetString("watch"); v != "" {
			cfg.Trigger.Interval, cfg.Trigger.Cron, cfg.Trigger.Watch = "", "", v
		}
		now, _ := cmd.Flags().GetBool("now")

		logger, closeLog, err := setupLogger(cfg, false)
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r := runner.New(cfg, reference.Builtin(), logger)
		st := ui.NewStyles(ui.IsTerminal(os.Stdout))
		pass := func(ctx context.Context) {
			rep := r.RunAll(ctx)
			r.Notify(&rep, false)
			fmt.Print(ui.RenderReport(rep, st))
		}

		s := schedule.New(cfg.Trigger, pass, logger)
		if now {
			pass(ctx)
		}
		return s.Run(ctx)
	},
}

func init() {
	startCmd.Flags().String("interval", "", "override trigger.interval (e.g. 6h)")
	startCmd.Flags().String("cron", "", "override trigger.cron (e.g. \"0 3 * * *\")")
	startCmd.Flags().String("watch", "", "override trigger.watch (file or directory)")
	startCmd.Flags().Bool("now", false, "run one pass immediately before waiting for the trigger")
	rootCmd.AddCommand(startCmd)
}
