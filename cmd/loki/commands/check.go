package commands

import (
	"fmt"

	"git.home.luguber.info/inful/loki/internal/build"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Source string `arg:"" help:"Source directory to validate" type:"path"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	result, err := RunBuild(g.Context, g.Logger, root.Loaded(), build.BuildRequest{
		SourceDir: c.Source,
		Options:   build.BuildOptions{CheckOnly: true},
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(root.stdout(), "%d documents OK\n", result.Documents)
	return nil
}
