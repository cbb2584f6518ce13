package build

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/loki/internal/blog"
	"git.home.luguber.info/inful/loki/internal/config"
	ferrors "git.home.luguber.info/inful/loki/internal/foundation/errors"
	"git.home.luguber.info/inful/loki/internal/linkverify"
	"git.home.luguber.info/inful/loki/internal/logfields"
	"git.home.luguber.info/inful/loki/internal/manifest"
	"git.home.luguber.info/inful/loki/internal/markdown"
	"git.home.luguber.info/inful/loki/internal/metrics"
	"git.home.luguber.info/inful/loki/internal/observability"
	"git.home.luguber.info/inful/loki/internal/script"
	"git.home.luguber.info/inful/loki/internal/site"
)

// Stage names, used in logs and metrics labels.
const (
	StageValidate = "validate"
	StageManifest = "manifest"
	StagePreLoad  = "preload"
	StageRegister = "register"
	StagePostLoad = "postload"
	StageRender   = "build"
	StageSitemap  = "sitemap"
	StageVerify   = "verify_links"
)

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	logger   *slog.Logger
	recorder metrics.Recorder
	now      func() time.Time
	newID    func() string
}

// NewBuildService creates a new DefaultBuildService.
func NewBuildService(logger *slog.Logger) *DefaultBuildService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultBuildService{
		logger:   logger,
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	s.recorder = r
	return s
}

// WithClock overrides the clock used for undated content (for testing).
func (s *DefaultBuildService) WithClock(now func() time.Time) *DefaultBuildService {
	s.now = now
	return s
}

// Run executes the build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	startTime := time.Now()
	result := &BuildResult{
		Status:    BuildStatusFailed,
		BuildID:   s.newID(),
		StartTime: startTime,
	}
	cfg := req.Config
	if cfg == nil {
		cfg = config.Default()
	}

	ctx = observability.WithBuildID(ctx, result.BuildID)
	logger := s.logger.With(logfields.BuildID(result.BuildID))

	err := s.run(ctx, logger, cfg, req, result)

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)
	switch {
	case err == nil:
		result.Status = BuildStatusSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result.Status = BuildStatusCancelled
	}
	s.recorder.ObserveBuildDuration(result.Duration)
	s.recorder.IncBuildOutcome(string(result.Status))

	if cfg.MetricsFile != "" {
		if p, ok := s.recorder.(*metrics.PrometheusRecorder); ok {
			if werr := p.WriteTextfile(cfg.MetricsFile); werr != nil {
				observability.WarnContext(ctx, logger, "Failed to write metrics", logfields.Path(cfg.MetricsFile), logfields.Error(werr))
			}
		}
	}

	if err != nil {
		return result, err
	}
	observability.InfoContext(ctx, logger, "Build complete",
		logfields.Count(result.Documents),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return result, nil
}

func (s *DefaultBuildService) run(ctx context.Context, logger *slog.Logger, cfg *config.Config, req BuildRequest, result *BuildResult) error {
	gfm := cfg.Markdown.GFM == nil || *cfg.Markdown.GFM
	st := site.New(site.Options{
		SourceRoot: req.SourceDir,
		DestRoot:   req.OutputDir,
		Logger:     logger,
		Recorder:   s.recorder,
		Markdown:   markdown.New(markdown.Options{GFM: gfm}),
		Now:        s.now,
	})
	runner := script.NewRunner(st)

	if err := s.stage(ctx, logger, StageValidate, func() error {
		if req.Options.CheckOnly {
			return manifest.CheckSource(req.SourceDir)
		}
		return manifest.CheckPaths(req.SourceDir, req.OutputDir)
	}); err != nil {
		return err
	}

	if err := s.stage(ctx, logger, StageManifest, func() error {
		views, err := manifest.Load(req.SourceDir)
		if err != nil {
			return err
		}
		for _, v := range views {
			if _, err := st.AddPage(v); err != nil {
				return err
			}
		}
		logger.Debug("Manifest expanded", logfields.Count(len(views)))
		return nil
	}); err != nil {
		return err
	}

	if err := s.stage(ctx, logger, StagePreLoad, func() error {
		return runner.Run(ctx, script.PreLoad)
	}); err != nil {
		return err
	}

	if err := s.stage(ctx, logger, StageRegister, func() error {
		return st.Register(ctx)
	}); err != nil {
		return err
	}
	result.Documents = len(st.Documents())
	if b, ok := st.Blog().(*blog.Blog); ok {
		result.Documents += len(b.Entries())
	}

	if err := s.stage(ctx, logger, StagePostLoad, func() error {
		return runner.Run(ctx, script.PostLoad)
	}); err != nil {
		return err
	}

	if req.Options.CheckOnly {
		observability.InfoContext(ctx, logger, "Check complete, no output written", logfields.Count(result.Documents))
		return nil
	}

	err := s.stage(ctx, logger, StageRender, func() error {
		return st.Build(ctx)
	})
	result.Written = st.Written()
	if err != nil {
		return err
	}

	if cfg.Sitemap.Enabled {
		if err := s.stage(ctx, logger, StageSitemap, func() error {
			data, err := Sitemap(cfg.Sitemap.BaseURL, st.Written())
			if err != nil {
				return err
			}
			return st.WriteFile(SitemapPath, data)
		}); err != nil {
			return err
		}
		result.Written = st.Written()
	}

	if cfg.VerifyLinks {
		return s.stage(ctx, logger, StageVerify, func() error {
			broken, err := linkverify.NewVerifier(req.OutputDir, logger).Verify(result.Written)
			if err != nil {
				return err
			}
			result.BrokenLinks = broken
			return linkverify.Error(broken)
		})
	}
	return nil
}

// stage runs fn, recording its duration and result.
func (s *DefaultBuildService) stage(ctx context.Context, logger *slog.Logger, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx = observability.WithStage(ctx, name)
	stageStart := time.Now()
	observability.DebugContext(ctx, logger, "Stage started")

	err := fn()
	s.recorder.ObserveStageDuration(name, time.Since(stageStart))
	if err != nil {
		s.recorder.IncStageResult(name, metrics.ResultFatal)
		observability.ErrorContext(ctx, logger, "Stage failed", logfields.Error(err))
		if classified, ok := err.(*ferrors.ClassifiedError); ok {
			return classified.WithContext("stage", name)
		}
		return err
	}
	s.recorder.IncStageResult(name, metrics.ResultSuccess)
	observability.DebugContext(ctx, logger, "Stage complete",
		logfields.DurationMS(float64(time.Since(stageStart).Microseconds())/1000))
	return nil
}
