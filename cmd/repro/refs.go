package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sznuper/repro/internal/reference"
	"github.com/sznuper/repro/internal/runner"
)

var refsCmd = &cobra.Command{
	Use:   "refs [figure]",
	Short: "Print the reference values figures are checked against",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		figs, err := selectFigures(cfg, args)
		if err != nil {
			return err
		}

		r := runner.New(cfg, reference.Builtin(), slog.New(slog.DiscardHandler))
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer tw.Flush()

		missing := false
		for _, fig := range figs {
			rec, err := r.Reference(context.Background(), fig)
			if err != nil {
				fmt.Fprintf(tw, "%s\t(unavailable: %v)\n", fig.Name, err)
				missing = true
				continue
			}
			fmt.Fprintf(tw, "%s\t\t\n", fig.DisplayName())
			for _, f := range rec.Fields() {
				fmt.Fprintf(tw, "  %s\t%s\t%.9g\n", f.Name, rec.Label(f.Name), f.Value)
			}
		}

		if missing {
			tw.Flush()
			os.Exit(runner.ExitReference)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refsCmd)
}
