package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/loki/cmd/loki/commands"
	"git.home.luguber.info/inful/loki/internal/foundation/errors"
	"git.home.luguber.info/inful/loki/internal/version"
)

func main() {
	var cli commands.CLI
	kctx := kong.Parse(&cli,
		kong.Name("loki"),
		kong.Description("Static site generator for directive-driven HTML pages and blogs."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	global := &commands.Global{Logger: cli.Logger(), Context: ctx}
	if err := kctx.Run(global, &cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
