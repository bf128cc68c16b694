package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitekit/internal/kit"
	"git.home.luguber.info/inful/sitekit/internal/logfields"
	"git.home.luguber.info/inful/sitekit/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output   string        `short:"o" help:"Output directory (overrides target in the configuration)" type:"path"`
	Debounce time.Duration `help:"Quiet period before rebuilding" default:"300ms"`
}

// Run builds once and then rebuilds on every change to the source tree or a
// local kit. The configuration is reloaded before each rebuild.
func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, w.Output)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rebuild := func(ctx context.Context) error {
		cfg, err := loadConfig(root.Config, w.Output)
		if err != nil {
			return err
		}
		_, err = RunBuild(ctx, g, cfg, false, nil)
		return err
	}
	initialBuild(ctx, g, rebuild)

	dirs := []string{cfg.Source}
	for _, k := range cfg.Kits {
		if !kit.IsRemote(k.Source) {
			dirs = append(dirs, k.Source)
		}
	}
	return watch.New(dirs, rebuild).
		WithDebounce(w.Debounce).
		WithIgnore(cfg.Target).
		WithLogger(g.Logger).
		Run(ctx)
}

// initialBuild runs the first build. A failure is logged and watching
// continues, so a broken tree can be fixed in place.
func initialBuild(ctx context.Context, g *Global, rebuild func(context.Context) error) {
	if err := rebuild(ctx); err != nil {
		g.Logger.Warn("Initial build failed", logfields.Error(err))
	}
}
