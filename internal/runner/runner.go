package runner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sznuper/repro/internal/command"
	"github.com/sznuper/repro/internal/config"
	"github.com/sznuper/repro/internal/extract"
	"github.com/sznuper/repro/internal/notify"
	"github.com/sznuper/repro/internal/reference"
	"github.com/sznuper/repro/internal/result"
	"github.com/sznuper/repro/internal/tolerance"
)

// Observer is called when a figure enters a pipeline stage.
type Observer func(figure string, stage Stage)

// Runner orchestrates the collect → extract → reference → compare pipeline
// for each configured figure.
type Runner struct {
	cfg      *config.Config
	store    reference.Store
	logger   *slog.Logger
	observer Observer
}

// New creates a Runner. store supplies references for figures that carry
// neither an inline reference nor a reference file; it may be nil.
func New(cfg *config.Config, store reference.Store, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, store: store, logger: logger}
}

// Observe registers fn to receive stage transitions.
func (r *Runner) Observe(fn Observer) {
	r.observer = fn
}

// RunAll runs every configured figure in order.
func (r *Runner) RunAll(ctx context.Context) Report {
	figs := make([]*config.Figure, len(r.cfg.Figures))
	for i := range r.cfg.Figures {
		figs[i] = &r.cfg.Figures[i]
	}
	return r.Run(ctx, figs...)
}

// Run runs the given figures sequentially and stops at the first failure.
func (r *Runner) Run(ctx context.Context, figs ...*config.Figure) Report {
	start := time.Now()
	rep := Report{RunID: uuid.NewString()}
	log := r.logger.With("run_id", rep.RunID)

	log.Info("verification started", "figures", len(figs))
	for _, fig := range figs {
		res := r.runFigure(ctx, log, fig)
		rep.Results = append(rep.Results, res)
		if !res.OK() {
			log.Warn("verification halted", "figure", fig.Name, "stage", res.ErrStage, "cause", res.Cause)
			break
		}
	}
	rep.Duration = time.Since(start)

	log.Info("verification finished", "ok", rep.OK(), "duration", rep.Duration)
	return rep
}

// RunFigure executes a single figure through the full pipeline.
func (r *Runner) RunFigure(ctx context.Context, fig *config.Figure) Result {
	return r.runFigure(ctx, r.logger, fig)
}

func (r *Runner) runFigure(ctx context.Context, logger *slog.Logger, fig *config.Figure) Result {
	log := logger.With("figure", fig.Name)
	start := time.Now()
	title := fig.DisplayName()
	vars := r.vars(fig)

	res := Result{
		Figure:    fig.Name,
		Title:     title,
		Tolerance: r.cfg.FigureTolerance(fig),
	}
	fail := func(stage Stage, cause string, err error) Result {
		res.ErrStage = stage
		res.Cause = cause
		res.Err = err
		res.Duration = time.Since(start)
		log.Error(string(stage)+" failed", "cause", cause, "error", err)
		return res
	}

	// Stage 1: Collect raw data.
	r.enter(fig.Name, StageCollect)
	if r.cfg.Options.SkipCollect {
		log.Info("skipping data collection")
	} else {
		for _, step := range fig.Collect {
			out, err := r.runStep(ctx, log, step, vars)
			res.Stderr = out.Stderr
			if err != nil {
				return fail(StageCollect, "data collection failed", err)
			}
		}
	}

	// Stage 2: Generate statistics and extract metrics.
	r.enter(fig.Name, StageExtract)
	extractCause := fmt.Sprintf("%s statistics generation failed", title)
	for _, step := range fig.Generate {
		out, err := r.runStep(ctx, log, step, vars)
		res.Stderr = out.Stderr
		if err != nil {
			res.Measured = result.Fail(extractCause, err)
			return fail(StageExtract, extractCause, err)
		}
	}
	spec, err := r.extractSpec(fig, vars)
	if err != nil {
		res.Measured = result.Fail(extractCause, err)
		return fail(StageExtract, extractCause, err)
	}
	measured, err := extract.Extract(spec)
	if err != nil {
		res.Measured = result.Fail(extractCause, err)
		return fail(StageExtract, extractCause, err)
	}
	res.Measured = result.Compute(measured)
	log.Debug("metrics extracted", "fields", measured.Names())

	// Stage 3: Load the reference.
	r.enter(fig.Name, StageReference)
	ref, err := r.Reference(ctx, fig)
	if err != nil {
		cause := fmt.Sprintf("failed to load %s reference: %v", title, err)
		res.Reference = result.Fail(cause, err)
		return fail(StageReference, cause, err)
	}
	res.Reference = result.Compute(ref)

	// Stage 4: Compare within tolerance.
	r.enter(fig.Name, StageCompare)
	res.Verdict = tolerance.Compare(measured, ref, res.Tolerance)
	if !res.Verdict.OK {
		return fail(StageCompare, res.Verdict.Cause, nil)
	}

	res.Duration = time.Since(start)
	log.Info("figure reproduced", "tolerance", res.Tolerance, "duration", res.Duration)
	return res
}

func (r *Runner) enter(figure string, stage Stage) {
	if r.observer != nil {
		r.observer(figure, stage)
	}
}

func (r *Runner) vars(fig *config.Figure) command.Vars {
	return command.Vars{
		RepoDir: r.cfg.Options.RepoDir,
		EvalDir: r.cfg.Options.EvalDir,
		Figure:  fig.Name,
		Globals: r.cfg.Globals,
	}
}

// runStep expands and executes one command. A non-zero status is an error.
func (r *Runner) runStep(ctx context.Context, log *slog.Logger, step config.Step, vars command.Vars) (command.Outcome, error) {
	if len(step.Command) == 0 {
		return command.Outcome{}, fmt.Errorf("empty command")
	}
	args, err := command.ExpandAll(step.Command, vars)
	if err != nil {
		return command.Outcome{}, err
	}
	dir, err := command.Expand(step.Dir, vars)
	if err != nil {
		return command.Outcome{}, err
	}
	env := make(map[string]string, len(step.Env))
	for k, v := range step.Env {
		if env[k], err = command.Expand(v, vars); err != nil {
			return command.Outcome{}, err
		}
	}

	timeout := step.Timeout
	if timeout == "" {
		timeout = r.cfg.Options.Timeout
	}
	// Validated at load time.
	d, _ := time.ParseDuration(timeout)

	c := command.Command{
		Args:    args,
		Dir:     r.underRepo(dir),
		Env:     env,
		Timeout: d,
	}
	log.Info("running command", "args", c.Args, "dir", c.Dir, "timeout", d)

	out := command.Run(ctx, c)
	log.Debug("command finished", "status", out.Status, "duration", out.Duration, "stderr", out.Stderr)

	switch {
	case out.TimedOut:
		return out, fmt.Errorf("%s: timed out after %s", args[0], d)
	case !out.OK():
		return out, fmt.Errorf("%s: exit status %d", args[0], out.Status)
	}
	return out, nil
}

func (r *Runner) extractSpec(fig *config.Figure, vars command.Vars) (extract.Spec, error) {
	var spec extract.Spec
	path := func(p string) (string, error) {
		s, err := command.Expand(p, vars)
		if err != nil {
			return "", err
		}
		return r.underRepo(s), nil
	}

	for _, m := range fig.Metrics {
		base, err := path(m.Baseline)
		if err != nil {
			return spec, err
		}
		treat, err := path(m.Treatment)
		if err != nil {
			return spec, err
		}
		spec.Ratios = append(spec.Ratios, extract.Ratio{
			Name:      m.Name,
			Label:     m.Label,
			Column:    m.Column,
			Baseline:  base,
			Treatment: treat,
			Direction: extract.Direction(m.Direction),
		})
	}

	for _, g := range fig.Groups {
		file, err := path(g.File)
		if err != nil {
			return spec, err
		}
		spec.Groups = append(spec.Groups, extract.Group{
			File:           file,
			ValueColumn:    g.ValueColumn,
			SystemColumn:   g.SystemColumn,
			CategoryColumn: g.CategoryColumn,
			Systems:        g.Systems,
			Categories:     g.Categories,
		})
	}
	return spec, nil
}

// Reference loads the reference record for fig from its configured sources.
func (r *Runner) Reference(ctx context.Context, fig *config.Figure) (result.Record, error) {
	store, err := r.storeFor(fig, r.vars(fig))
	if err != nil {
		return result.Record{}, err
	}
	return store.Load(ctx, fig.Name)
}

// storeFor layers the figure's own reference sources over the runner's store:
// inline values, then the reference file, then the shared store.
func (r *Runner) storeFor(fig *config.Figure, vars command.Vars) (reference.Store, error) {
	var chain reference.Chain
	if fig.Reference != nil {
		chain = append(chain, reference.Inline(fig.Name, fig.Reference))
	}
	if fig.ReferenceFile != "" {
		p, err := command.Expand(fig.ReferenceFile, vars)
		if err != nil {
			return nil, err
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(r.cfg.Options.EvalDir, p)
		}
		chain = append(chain, reference.File{Path: p})
	}
	chain = append(chain, r.store)
	return chain, nil
}

func (r *Runner) underRepo(p string) string {
	if p == "" {
		return r.cfg.Options.RepoDir
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.cfg.Options.RepoDir, p)
}

// Notify renders the verdict for every configured notify target and sends it,
// or only validates the targets when dryRun is set. The outcome is recorded
// on rep.
func (r *Runner) Notify(rep *Report, dryRun bool) {
	rep.DryRun = dryRun
	if len(r.cfg.Notify) == 0 {
		return
	}
	log := r.logger.With("run_id", rep.RunID)

	data := notify.BuildTemplateData(r.cfg.Globals, rep.Verdict(), notifyFigures(rep.Results)...)
	targets, err := notify.ResolveTargets(mapNotifyRefs(r.cfg.Notify), mapServiceDefs(r.cfg.Services), r.cfg.Template, data)
	if err != nil {
		rep.NotifyErr = err
		log.Error("template failed", "error", err)
		return
	}

	rep.Rendered = make(map[string]string, len(targets))
	for _, t := range targets {
		rep.Rendered[t.ServiceName] = t.Message
	}
	log.Debug("templates rendered", "targets", len(targets))

	for _, t := range targets {
		if dryRun {
			if err := notify.Validate(t); err != nil {
				rep.NotifyErr = err
				log.Error("notify validation failed (dry-run)", "service", t.ServiceName, "error", err)
				return
			}
			rep.Notified = append(rep.Notified, t.ServiceName)
			log.Debug("would notify (dry-run)", "service", t.ServiceName, "message", t.Message)
			continue
		}

		log.Info("sending notification", "service", t.ServiceName)
		if err := notify.Send(t); err != nil {
			rep.NotifyErr = err
			log.Error("notify failed", "service", t.ServiceName, "error", err)
			return
		}
		rep.Notified = append(rep.Notified, t.ServiceName)
	}
}

// notifyFigures exposes each figure's outcome to templates. The offending
// metric is filled in only when both sides of the comparison have it.
func notifyFigures(results []Result) []notify.Figure {
	figs := make([]notify.Figure, len(results))
	for i, res := range results {
		f := notify.Figure{
			Name:  res.Figure,
			Title: res.Title,
			OK:    res.OK(),
			Stage: string(res.ErrStage),
			Cause: res.Cause,
		}
		v := res.Verdict
		measured, mok := res.Measured.Record()
		reference, rok := res.Reference.Record()
		if res.ErrStage == StageCompare && mok && rok && measured.Has(v.Field) && reference.Has(v.Field) {
			f.Metric = v.Label
			f.Measured = v.Measured
			f.Reference = v.Reference
			f.Ratio = v.Ratio
		}
		figs[i] = f
	}
	return figs
}

func mapNotifyRefs(targets []config.NotifyTarget) []notify.NotifyRef {
	refs := make([]notify.NotifyRef, len(targets))
	for i, t := range targets {
		refs[i] = notify.NotifyRef{
			ServiceName: t.Service,
			Template:    t.Template,
			Params:      t.Params,
		}
	}
	return refs
}

func mapServiceDefs(services map[string]config.Service) map[string]notify.ServiceDef {
	defs := make(map[string]notify.ServiceDef, len(services))
	for name, svc := range services {
		defs[name] = notify.ServiceDef{
			URL:    svc.URL,
			Params: svc.Params,
		}
	}
	return defs
}
