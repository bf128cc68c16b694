package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitekit/cmd/sitekit/commands"
	"git.home.luguber.info/inful/sitekit/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekit/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("sitekit"),
		kong.Description("Build static sites from templated sources and kits."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)
	err := parser.Run(commands.NewGlobal(), cli)
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
