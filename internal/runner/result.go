package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/sznuper/repro/internal/result"
	"github.com/sznuper/repro/internal/tolerance"
)

// Stage names a step of the per-figure pipeline.
type Stage string

const (
	StageCollect   Stage = "collect"
	StageExtract   Stage = "extract"
	StageReference Stage = "reference"
	StageCompare   Stage = "compare"
)

// Process exit codes for a finished run.
const (
	ExitPass      = 0
	ExitConfig    = 1
	ExitCollect   = 2
	ExitExtract   = 3
	ExitReference = 4
	ExitCompare   = 5
)

// Result captures the outcome of running a single figure through the pipeline.
// Errors are stored in Err/ErrStage rather than returned, so the caller always
// has something to display.
type Result struct {
	Figure    string
	Title     string
	Tolerance float64
	Measured  result.State
	Reference result.State
	Verdict   tolerance.Verdict
	Duration  time.Duration
	Err       error
	ErrStage  Stage // "" on success
	Cause     string
	Stderr    string // stderr of the failing command, if any
}

// OK reports whether every metric of the figure matched its reference.
func (r Result) OK() bool {
	return r.ErrStage == "" && r.Verdict.OK
}

// Report is the outcome of one verification pass.
type Report struct {
	RunID    string
	Results  []Result
	Duration time.Duration

	// Notification outcome, filled by Runner.Notify.
	DryRun    bool
	Rendered  map[string]string // service name → rendered message
	Notified  []string
	NotifyErr error
}

// OK is true only if at least one figure ran and every figure passed.
func (r Report) OK() bool {
	if len(r.Results) == 0 {
		return false
	}
	for _, res := range r.Results {
		if !res.OK() {
			return false
		}
	}
	return true
}

// Failure returns the first failing figure, if any.
func (r Report) Failure() (Result, bool) {
	for _, res := range r.Results {
		if !res.OK() {
			return res, true
		}
	}
	return Result{}, false
}

// ExitCode maps the report to the process exit status.
func (r Report) ExitCode() int {
	fail, ok := r.Failure()
	if !ok {
		if len(r.Results) == 0 {
			return ExitConfig
		}
		return ExitPass
	}
	switch fail.ErrStage {
	case StageCollect:
		return ExitCollect
	case StageExtract:
		return ExitExtract
	case StageReference:
		return ExitReference
	default:
		return ExitCompare
	}
}

// Summary is a one-line description of the verdict.
func (r Report) Summary() string {
	if fail, ok := r.Failure(); ok {
		return fmt.Sprintf("%s: %s", fail.Title, fail.Cause)
	}
	if len(r.Results) == 1 {
		return fmt.Sprintf("%s reproduced within tolerance", r.Results[0].Title)
	}
	return fmt.Sprintf("%d figures reproduced within tolerance", len(r.Results))
}

// Verdict flattens the report into the string map exposed to notification
// templates as {{verdict.<key>}}.
func (r Report) Verdict() map[string]string {
	names := make([]string, len(r.Results))
	for i, res := range r.Results {
		names[i] = res.Figure
	}

	v := map[string]string{
		"status":   "pass",
		"figure":   strings.Join(names, ","),
		"figures":  fmt.Sprint(len(r.Results)),
		"summary":  r.Summary(),
		"run_id":   r.RunID,
		"duration": r.Duration.Round(time.Millisecond).String(),
	}
	if fail, ok := r.Failure(); ok {
		v["status"] = "fail"
		v["figure"] = fail.Figure
		v["stage"] = string(fail.ErrStage)
		v["cause"] = fail.Cause
	}
	return v
}
