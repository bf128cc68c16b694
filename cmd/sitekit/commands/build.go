package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitekit/internal/build"
	"git.home.luguber.info/inful/sitekit/internal/config"
	"git.home.luguber.info/inful/sitekit/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekit/internal/logfields"
	"git.home.luguber.info/inful/sitekit/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Output directory (overrides target in the configuration)" type:"path"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in text format to this file after the build" type:"path"`
	DryRun      bool   `name:"dry-run" help:"Process every asset without writing output"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, b.Output)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rec *metrics.PrometheusRecorder
	if b.MetricsFile != "" {
		rec = metrics.NewPrometheusRecorder(nil)
	}
	res, buildErr := RunBuild(ctx, g, cfg, b.DryRun, rec)
	if rec != nil {
		if err := rec.WriteTextfile(b.MetricsFile); err != nil {
			g.Logger.Warn("Failed to write metrics file", logfields.Path(b.MetricsFile), logfields.Error(err))
		}
	}
	if res != nil && res.Report != nil {
		r := res.Report
		fmt.Fprintf(g.Out, "Built %d assets in %d passes (%s)\n", r.Succeeded, r.Passes, res.Duration.Round(time.Millisecond))
		for _, f := range r.Errored {
			fmt.Fprintf(g.Out, "  failed: %s: %v\n", f.Path, f.Err)
		}
		for _, p := range r.Cycled {
			fmt.Fprintf(g.Out, "  dependency cycle: %s\n", p)
		}
	}
	return buildErr
}

// RunBuild runs one build through the build service. rec may be nil.
func RunBuild(ctx context.Context, g *Global, cfg *config.Config, dryRun bool, rec *metrics.PrometheusRecorder) (*build.Result, error) {
	svc := build.NewService().WithLogger(g.Logger)
	if rec != nil {
		svc = svc.WithRecorder(rec)
	}
	res, err := svc.Run(ctx, build.Request{Config: cfg, DryRun: dryRun})
	if err != nil {
		if _, ok := errors.AsClassified(err); !ok {
			err = errors.BuildError("build failed").WithCause(err).Build()
		}
	}
	return res, err
}
