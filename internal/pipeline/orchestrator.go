// Package pipeline runs the configured processors over a single asset.
//
// A run has two phases. The transform phase repeats the transform processors
// until the asset's media type stops changing, then wraps the result into
// the pattern named by the Context (if any) and starts over with the
// pattern's contents. The finalize phase runs once on the final contents.
package pipeline

import (
	stderrors "errors"
	"log/slog"

	"git.home.luguber.info/inful/sitekit/internal/asset"
	"git.home.luguber.info/inful/sitekit/internal/buildctx"
	"git.home.luguber.info/inful/sitekit/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekit/internal/logfields"
	"git.home.luguber.info/inful/sitekit/internal/media"
	"git.home.luguber.info/inful/sitekit/internal/metrics"
	"git.home.luguber.info/inful/sitekit/internal/processors"
	"git.home.luguber.info/inful/sitekit/internal/template"
)

// MaxPatternDepth bounds pattern wrapping per asset.
const MaxPatternDepth = 16

// Outcome of one run.
type Outcome int

const (
	Complete Outcome = iota
	Deferred
)

func (o Outcome) String() string {
	if o == Deferred {
		return "deferred"
	}
	return "complete"
}

// Result of a completed or deferred run. Only Outcome is set for deferrals.
type Result struct {
	Outcome Outcome
	Asset   *asset.Asset
	// Output is the slash-separated path relative to the target root.
	Output string
	// Dir is the listing directory the fragment belongs to.
	Dir string
	// Fragment is the asset's metadata table.
	Fragment *buildctx.Table
	// Iterations counts transform sub-loop rounds across all pattern rounds.
	Iterations int
}

// Orchestrator runs a processor plan. It holds no per-asset state and is
// safe for concurrent use.
type Orchestrator struct {
	plan      processors.Plan
	cleanURLs bool
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCleanURLs enables <stem>/index.html output paths.
func WithCleanURLs(enabled bool) Option {
	return func(o *Orchestrator) { o.cleanURLs = enabled }
}

// WithLogger sets the logger used for processor warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithRecorder sets the metrics recorder for processor warnings.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// New creates an orchestrator for plan.
func New(plan processors.Plan, opts ...Option) *Orchestrator {
	o := &Orchestrator{plan: plan, logger: slog.Default(), recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

var errDeferred = stderrors.New("deferred")

// Run processes a copy of src against a private clone of snapshot. Neither
// argument is modified. Template compile failures and runaway pattern chains
// are returned as errors; other processor failures are logged and skipped.
func (o *Orchestrator) Run(snapshot *buildctx.Context, src *asset.Asset) (Result, error) {
	work := snapshot.Clone()
	a := src.Clone()
	log := o.logger.With(logfields.Asset(a.Path()))

	work.SetText(buildctx.KeyPath, a.Path())
	if o.plan.Canonicalizes() {
		work.SetText(buildctx.KeyCanonicalRoot, o.plan.CanonicalRoot)
		work.SetText(buildctx.KeyCanonical, CanonicalPath(a.Path(), o.cleanURLs))
	}

	iterations, err := o.transform(log, work, a)
	if err != nil {
		if stderrors.Is(err, errDeferred) {
			return Result{Outcome: Deferred}, nil
		}
		return Result{}, err
	}
	for _, s := range o.plan.Finalize {
		if err := o.runStage(log, s, work, a); err != nil {
			if stderrors.Is(err, errDeferred) {
				return Result{Outcome: Deferred}, nil
			}
			return Result{}, err
		}
	}

	output := OutputPath(a.Path(), a.MediaType(), o.cleanURLs)
	return Result{
		Outcome:    Complete,
		Asset:      a,
		Output:     output,
		Dir:        ListingDir(a.Path(), a.MediaType()),
		Fragment:   fragment(snapshot, work, a, output, URLPath(output, o.cleanURLs)),
		Iterations: iterations,
	}, nil
}

func (o *Orchestrator) transform(log *slog.Logger, work *buildctx.Context, a *asset.Asset) (int, error) {
	iterations := 0
	for depth := 0; ; depth++ {
		n, err := o.stabilize(log, work, a)
		iterations += n
		if err != nil {
			return iterations, err
		}
		if !o.plan.Pattern || !work.Has(buildctx.KeyPattern) {
			return iterations, nil
		}
		if depth >= MaxPatternDepth {
			return iterations, errors.BuildError("pattern chain too deep").
				WithContext("asset", a.Path()).
				WithContext("limit", MaxPatternDepth).
				Build()
		}
		if !o.wrap(log, work, a) {
			return iterations, nil
		}
	}
}

// stabilize runs the transform stages until the media type is unchanged or
// returns to one already seen.
func (o *Orchestrator) stabilize(log *slog.Logger, work *buildctx.Context, a *asset.Asset) (int, error) {
	seen := map[media.MediaType]bool{a.MediaType(): true}
	for n := 1; ; n++ {
		before := a.MediaType()
		for _, s := range o.plan.Transform {
			if err := o.runStage(log, s, work, a); err != nil {
				return n, err
			}
		}
		after := a.MediaType()
		if after == before || seen[after] {
			return n, nil
		}
		seen[after] = true
	}
}

// wrap replaces a's contents with the pattern named in the Context, stashing
// the current text as content. It reports false when wrapping stopped.
func (o *Orchestrator) wrap(log *slog.Logger, work *buildctx.Context, a *asset.Asset) bool {
	name, ok := work.Text(buildctx.KeyPattern)
	work.Delete(buildctx.KeyPattern)
	if !ok || name == "" {
		log.Warn("Pattern value is not text; skipping wrap")
		return false
	}
	text, err := a.Text()
	if err != nil {
		log.Warn("Cannot wrap non-textual asset", slog.String("pattern", name), logfields.Error(err))
		return false
	}
	part, ok := work.Part(name)
	if !ok {
		log.Warn("Pattern not found", slog.String("pattern", name))
		return false
	}

	work.SetText(buildctx.KeyContent, text)
	work.Delete(buildctx.KeyCompiled)
	mt, ok := media.ByMIME(part.MediaType)
	if !ok {
		mt = media.ForPath(part.Path)
	}
	a.SetText(part.Content)
	a.SetMediaType(mt)
	log.Debug("Wrapped asset in pattern", slog.String("pattern", name), logfields.MediaType(mt.MIME()))
	return true
}

func (o *Orchestrator) runStage(log *slog.Logger, s processors.Stage, work *buildctx.Context, a *asset.Asset) error {
	err := s.Processor.Process(work, a)
	if err == nil {
		return nil
	}
	if processors.IsDeferred(err) {
		log.Debug("Asset deferred", logfields.Processor(s.Kind.String()), logfields.Error(err))
		return errDeferred
	}
	var ce *template.CompileError
	if stderrors.As(err, &ce) {
		return errors.WrapError(err, errors.CategoryTemplate, "template compilation failed").
			WithContext("asset", a.Path()).
			Build()
	}
	o.recorder.IncProcessorWarning(s.Kind.String())
	log.Warn("Processor failed; continuing",
		logfields.Processor(s.Kind.String()),
		logfields.MediaType(a.MediaType().MIME()),
		logfields.Error(err))
	return nil
}
