package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/loki/internal/build"
	"git.home.luguber.info/inful/loki/internal/config"
	"git.home.luguber.info/inful/loki/internal/logfields"
	"git.home.luguber.info/inful/loki/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Source      string `arg:"" help:"Source directory containing views/, components/ and assets/" type:"path"`
	Dest        string `arg:"" help:"Destination directory for the generated site" type:"path"`
	VerifyLinks bool   `name:"verify-links" help:"Check links in the generated pages (overrides verify_links)"`
	Sitemap     string `name:"sitemap" help:"Write sitemap.xml using this base URL (overrides sitemap.base_url)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg := root.Loaded()
	if b.VerifyLinks {
		cfg.VerifyLinks = true
	}
	if b.Sitemap != "" {
		cfg.Sitemap.Enabled = true
		cfg.Sitemap.BaseURL = b.Sitemap
	}

	result, err := RunBuild(g.Context, g.Logger, cfg, build.BuildRequest{
		SourceDir: b.Source,
		OutputDir: b.Dest,
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(root.stdout(), "Built %d documents into %s (%s)\n", result.Documents, b.Dest, result.Duration.Round(time.Millisecond))
	return nil
}

// RunBuild executes a build with a recorder chosen from cfg.
func RunBuild(ctx context.Context, logger *slog.Logger, cfg *config.Config, req build.BuildRequest) (*build.BuildResult, error) {
	req.Config = cfg

	svc := build.NewBuildService(logger)
	if cfg.MetricsFile != "" {
		svc.WithRecorder(metrics.NewPrometheusRecorder(prometheus.NewRegistry()))
	}

	logger.Info("Starting build",
		logfields.Source(req.SourceDir),
		logfields.Dest(req.OutputDir))
	return svc.Run(ctx, req)
}
