package config

import (
	"fmt"
	"slices"
)

// The EMT artifact's collection step writes per-configuration traces under
// data/EMT. It takes hours; options.skip_collect reuses existing data.
var collectEMT = Step{Command: []string{"./collect_data.sh", "--output", "./data/EMT"}}

// Builtin returns the catalog of known figures, keyed by name.
func Builtin() map[string]Figure {
	return map[string]Figure{
		"figure18": {
			Name:    "figure18",
			Title:   "Figure 18",
			Collect: []Step{collectEMT},
			Generate: []Step{{
				Command: []string{"python", "ipc_with_inst.py", "--input", "./data/EMT", "--output", "./ipc_stats", "--thp", "never"},
			}},
			Metrics: []Metric{
				{
					Name: "ipc_speedup", Label: "IPC speedup", Column: "ipc",
					Baseline:  "ipc_stats/ipc_unified_never_radix_result.csv",
					Treatment: "ipc_stats/ipc_unified_never_ecpt_result.csv",
					Direction: "higher_is_better",
				},
				{
					Name: "e2e_speedup", Label: "E2E speedup", Column: "total_cycles",
					Baseline:  "ipc_stats/ipc_unified_never_radix_result.csv",
					Treatment: "ipc_stats/ipc_unified_never_ecpt_result.csv",
					Direction: "lower_is_better",
				},
				{
					Name: "pgwalk_speedup", Label: "Page walk speedup", Column: "page_walk_latency",
					Baseline:  "ipc_stats/ipc_unified_never_radix_result.csv",
					Treatment: "ipc_stats/ipc_unified_never_ecpt_result.csv",
					Direction: "lower_is_better",
				},
			},
		},
		"kernel_inst": {
			Name:    "kernel_inst",
			Title:   "Kernel instruction breakdown",
			Collect: []Step{collectEMT},
			Generate: []Step{{
				Command: []string{"python", "./run_scripts/get_unified_kern_inst_ae.py", "--input", "./data/EMT", "--output", "./inst_stats", "--thp", "never"},
				Dir:     "VM-Bench",
			}},
			Groups: []Group{{
				File:           "VM-Bench/inst_stats/kern_inst_unified_never.csv",
				ValueColumn:    "instructions",
				SystemColumn:   "system",
				CategoryColumn: "function",
				Systems:        []string{"radix", "ecpt"},
				Categories:     []string{"Page Faults", "Others", "System Calls", "Timers", "THP"},
			}},
			ReferenceFile: "refs/kernel_inst.ref.yaml",
		},
	}
}

// DefaultFigures are run when the config lists none.
var DefaultFigures = []string{"figure18"}

// applyBuiltins fills figures that only name a catalog entry, and installs
// the default figures when none are configured. Fields set in the config
// take precedence over the catalog.
func applyBuiltins(cfg *Config) error {
	catalog := Builtin()

	if len(cfg.Figures) == 0 {
		for _, name := range DefaultFigures {
			cfg.Figures = append(cfg.Figures, catalog[name])
		}
		return nil
	}

	for i := range cfg.Figures {
		f := &cfg.Figures[i]
		if len(f.Metrics) > 0 || len(f.Groups) > 0 {
			continue
		}
		b, ok := catalog[f.Name]
		if !ok {
			return fmt.Errorf("figure %q: no metrics or groups, and no built-in figure of that name", f.Name)
		}
		mergeFigure(f, b)
	}
	return nil
}

func mergeFigure(f *Figure, b Figure) {
	f.Metrics = slices.Clone(b.Metrics)
	f.Groups = slices.Clone(b.Groups)
	if f.Title == "" {
		f.Title = b.Title
	}
	if f.Collect == nil {
		f.Collect = slices.Clone(b.Collect)
	}
	if f.Generate == nil {
		f.Generate = slices.Clone(b.Generate)
	}
	if f.Reference == nil && f.ReferenceFile == "" {
		f.ReferenceFile = b.ReferenceFile
	}
}
