package build

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitekit/internal/asset"
	"git.home.luguber.info/inful/sitekit/internal/buildctx"
	"git.home.luguber.info/inful/sitekit/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekit/internal/logfields"
	"git.home.luguber.info/inful/sitekit/internal/metrics"
	"git.home.luguber.info/inful/sitekit/internal/pipeline"
)

// Scheduler drives pending assets through the pipeline in passes. Each pass
// runs every pending asset against a snapshot of the live Context taken at
// the start of the pass; completed assets are written and their fragments
// merged into the live Context afterwards, in asset order, so pass results
// never depend on worker interleaving.
type Scheduler struct {
	Pipeline *pipeline.Orchestrator
	Writer   Writer
	Workers  int
	// MaxStall is the number of consecutive passes without progress after
	// which the remaining assets are reported as a cycle. Zero means the
	// number of pending assets.
	MaxStall int
	Logger   *slog.Logger
	Recorder metrics.Recorder
}

type outcome struct {
	res pipeline.Result
	err error
}

// Run builds pending against live until every asset finishes or no progress
// can be made. live is updated with completed fragments. The returned error
// is non-nil only when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, live *buildctx.Context, pending []*asset.Asset, report *Report) error {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	rec := s.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	written := map[string]string{}
	stall := 0
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Passes++
		rec.SetPending(len(pending))
		start := time.Now()
		log.Debug("Starting pass", logfields.Pass(report.Passes), logfields.Pending(len(pending)))

		snapshot := live.Clone()
		results := make([]outcome, len(pending))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, a := range pending {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				res, err := s.Pipeline.Run(snapshot, a)
				results[i] = outcome{res: res, err: err}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		var next []*asset.Asset
		for i, a := range pending {
			out := results[i]
			switch {
			case out.err != nil:
				log.Error("Asset failed", logfields.Asset(a.Path()), logfields.Error(out.err))
				report.Errored = append(report.Errored, Failure{Path: a.Path(), Err: out.err})
				rec.IncAssetOutcome(metrics.AssetErrored)
			case out.res.Outcome == pipeline.Deferred:
				next = append(next, a)
				rec.IncAssetOutcome(metrics.AssetDeferred)
			default:
				if err := s.complete(log, live, a, out.res, written, report); err != nil {
					report.Errored = append(report.Errored, Failure{Path: a.Path(), Err: err})
					rec.IncAssetOutcome(metrics.AssetErrored)
					continue
				}
				rec.IncAssetOutcome(metrics.AssetCompleted)
			}
		}
		rec.ObservePassDuration(time.Since(start))

		if len(next) < len(pending) {
			stall = 0
		} else {
			stall++
		}
		pending = next
		limit := s.MaxStall
		if limit <= 0 {
			limit = len(pending)
		}
		if len(pending) > 0 && stall > limit {
			for _, a := range pending {
				log.Error("Asset is part of a dependency cycle", logfields.Asset(a.Path()))
				report.Cycled = append(report.Cycled, a.Path())
				rec.IncAssetOutcome(metrics.AssetCycled)
			}
			break
		}
	}
	rec.SetPending(0)
	return nil
}

func (s *Scheduler) complete(log *slog.Logger, live *buildctx.Context, a *asset.Asset, res pipeline.Result, written map[string]string, report *Report) error {
	if prev, ok := written[res.Output]; ok {
		log.Warn("Output path written twice", logfields.Path(res.Output), logfields.Asset(a.Path()), slog.String("previous", prev))
	}
	if err := s.Writer.Write(res.Output, res.Asset.Raw()); err != nil {
		log.Error("Failed to write output", logfields.Path(res.Output), logfields.Error(err))
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output").
			WithContext("path", res.Output).
			Build()
	}
	written[res.Output] = a.Path()
	report.Written = append(report.Written, res.Output)
	report.Succeeded++
	live.AppendListing(res.Dir, res.Fragment)
	return nil
}
