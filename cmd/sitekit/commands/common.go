// Package commands implements the sitekit subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitekit/internal/config"
)

// Global is shared state bound into every command's Run.
type Global struct {
	Logger *slog.Logger
	// Out receives user-facing output.
	Out io.Writer
}

// NewGlobal returns the state used by the binary. Call after parsing so the
// logger configured by AfterApply is picked up.
func NewGlobal() *Global {
	return &Global{Logger: slog.Default(), Out: os.Stdout}
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitekit.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build the site once"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration file"`
	Watch WatchCmd `cmd:"" help:"Build, then rebuild whenever sources change"`
	Types TypesCmd `cmd:"" help:"List the registered media types"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration and applies a target override.
func loadConfig(path, target string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if target != "" {
		cfg.Target = target
	}
	return cfg, nil
}
