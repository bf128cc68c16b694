package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitekit/internal/buildctx"
	"git.home.luguber.info/inful/sitekit/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekit/internal/kit"
	"git.home.luguber.info/inful/sitekit/internal/logfields"
	"git.home.luguber.info/inful/sitekit/internal/metrics"
	"git.home.luguber.info/inful/sitekit/internal/pipeline"
	"git.home.luguber.info/inful/sitekit/internal/workspace"
)

// DefaultService is the standard implementation of Service.
type DefaultService struct {
	workspaceFactory func() *workspace.Manager
	cloner           kit.Cloner
	writerFactory    func(target string) Writer
	recorder         metrics.Recorder
	logger           *slog.Logger
}

// NewService creates a DefaultService with default dependencies.
func NewService() *DefaultService {
	return &DefaultService{
		workspaceFactory: func() *workspace.Manager {
			return workspace.NewManager("")
		},
		writerFactory: func(target string) Writer {
			return DirWriter{Root: target}
		},
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
}

// WithWorkspaceFactory allows injecting a custom workspace factory (for testing).
func (s *DefaultService) WithWorkspaceFactory(factory func() *workspace.Manager) *DefaultService {
	s.workspaceFactory = factory
	return s
}

// WithCloner sets the git cloner used for remote kits.
func (s *DefaultService) WithCloner(c kit.Cloner) *DefaultService {
	s.cloner = c
	return s
}

// WithWriterFactory replaces the output writer.
func (s *DefaultService) WithWriterFactory(factory func(target string) Writer) *DefaultService {
	s.writerFactory = factory
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithLogger sets the logger.
func (s *DefaultService) WithLogger(l *slog.Logger) *DefaultService {
	if l != nil {
		s.logger = l
	}
	return s
}

type discardWriter struct{}

func (discardWriter) Write(string, []byte) error { return nil }

var _ Writer = discardWriter{}

// Run executes the complete build.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()
	result := &Result{StartTime: startTime}
	finish := func(status Status) {
		result.Status = status
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		if status == StatusSuccess {
			s.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
		} else {
			s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		}
		s.recorder.ObserveBuildDuration(result.Duration)
	}

	if req.Config == nil {
		finish(StatusFailed)
		return result, errors.ConfigError("config required").Build()
	}
	cfg := req.Config
	result.Target = cfg.Target
	if req.Target != "" {
		result.Target = req.Target
	}

	buildID := uuid.NewString()
	log := s.logger.With(logfields.BuildID(buildID))
	log.Info("Starting build", slog.String("source", cfg.Source), slog.String("target", result.Target))

	plan, err := cfg.Plan()
	if err != nil {
		finish(StatusFailed)
		return result, err
	}
	seeds, err := cfg.Context.Table()
	if err != nil {
		finish(StatusFailed)
		return result, errors.WrapError(err, errors.CategoryConfig, "invalid context seeds").Build()
	}

	ws := s.workspaceFactory()
	defer func() {
		if cerr := ws.Cleanup(); cerr != nil {
			log.Warn("Failed to clean up workspace", logfields.Error(cerr))
		}
	}()
	kits, err := kit.NewResolver(ws, s.cloner).WithLogger(log).WithRetry(cfg.RetryPolicy()).Resolve(ctx, cfg.Kits)
	if err != nil {
		finish(StatusFailed)
		return result, err
	}

	inv, err := (&Ingester{CanonicalizeKits: plan.Canonicalizes(), Logger: log}).Ingest(cfg.Source, kits)
	if err != nil {
		finish(StatusFailed)
		return result, err
	}

	live := buildctx.New()
	live.Merge(seeds)
	seedParts(log, live, inv)

	var w Writer = discardWriter{}
	if !req.DryRun {
		w = s.writerFactory(result.Target)
	}
	sched := &Scheduler{
		Pipeline: pipeline.New(plan,
			pipeline.WithCleanURLs(cfg.CleanURLs),
			pipeline.WithLogger(log),
			pipeline.WithRecorder(s.recorder),
		),
		Writer:   w,
		Workers:  cfg.Workers,
		Logger:   log,
		Recorder: s.recorder,
	}

	report := &Report{BuildID: buildID}
	result.Report = report
	runErr := sched.Run(ctx, live, inv.Pages, report)
	report.Duration = time.Since(startTime)

	switch {
	case runErr != nil:
		finish(StatusFailed)
		return result, errors.WrapError(runErr, errors.CategoryBuild, "build interrupted").
			WithContext("build_id", buildID).
			Build()
	case !report.OK():
		if report.Succeeded > 0 {
			finish(StatusPartial)
		} else {
			finish(StatusFailed)
		}
		log.Warn("Build finished with errors",
			slog.Int("succeeded", report.Succeeded),
			slog.Int("errored", len(report.Errored)),
			slog.Int("cycled", len(report.Cycled)),
			logfields.Pass(report.Passes))
		return result, report.Err()
	}

	finish(StatusSuccess)
	log.Info("Build complete",
		slog.Int("assets", report.Succeeded),
		logfields.Pass(report.Passes),
		logfields.DurationMS(float64(result.Duration.Microseconds())/1000))
	return result, nil
}

// seedParts stores every textual part in live and registers the listing
// directory of every page.
func seedParts(log *slog.Logger, live *buildctx.Context, inv *Inventory) {
	for _, p := range inv.Parts {
		text, err := p.Text()
		if err != nil {
			log.Warn("Skipping binary part", logfields.Asset(p.Path()))
			continue
		}
		live.SetPart(buildctx.Part{Path: p.Path(), Content: text, MediaType: p.MediaType().MIME()})
	}
	for _, a := range inv.Pages {
		live.SeedListing(pipeline.ListingDir(a.Path(), a.MediaType()))
	}
}
