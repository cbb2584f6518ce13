// Package script runs the optional Risor site configuration scripts.
//
// config.risor runs before any document is loaded, so the globals it declares are visible
// from headers through `site.<name>`; it is also the only place a blog can be configured.
// config_load.risor runs after registration and can inspect the loaded documents; its globals
// are visible only while bodies render.
package script

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
	"git.home.luguber.info/inful/loki/internal/logfields"
	"git.home.luguber.info/inful/loki/internal/site"
)

// Phase selects which configuration script is running.
type Phase int

const (
	PreLoad Phase = iota
	PostLoad
)

func (p Phase) String() string {
	if p == PreLoad {
		return "pre-load"
	}
	return "post-load"
}

// File returns the script name of the phase, relative to the source root.
func (p Phase) File() string {
	if p == PreLoad {
		return "config.risor"
	}
	return "config_load.risor"
}

// Runner evaluates configuration scripts against a site.
type Runner struct {
	site   *site.Site
	logger *slog.Logger
}

// NewRunner creates a runner bound to s.
func NewRunner(s *site.Site) *Runner {
	return &Runner{site: s, logger: s.Logger()}
}

// Run executes the phase's script from the source root. A missing script is not an error.
func (r *Runner) Run(ctx context.Context, phase Phase) error {
	path := filepath.Join(r.site.SourceRoot(), phase.File())
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Debug("No configuration script", logfields.Path(path), logfields.Stage(phase.String()))
			return nil
		}
		return errors.FileSystemError(err, "cannot read %s", path).Build()
	}
	r.logger.Info("Running configuration script", logfields.Path(path), logfields.Stage(phase.String()))
	return r.RunSource(ctx, string(src), path, phase)
}

// RunSource executes src; label names it in diagnostics.
func (r *Runner) RunSource(ctx context.Context, src, label string, phase Phase) error {
	var opts []risor.Option
	// Host builtins replace Risor defaults of the same name (set is a builtin there).
	for name, val := range r.globals(phase) {
		opts = append(opts, risor.WithGlobalOverride(name, val))
	}
	if _, err := risor.Eval(ctx, src, opts...); err != nil {
		return errors.ScriptError(err, "error reading %s", label).
			WithContext("phase", phase.String()).
			Build()
	}
	return nil
}

func (r *Runner) globals(phase Phase) map[string]any {
	return map[string]any{
		"set":         r.makeSetFn("set"),
		"global":      r.makeSetFn("global"),
		"get":         r.makeGetFn(),
		"blog_config": r.makeBlogConfigFn(phase),
		"documents":   r.makeDocumentsFn(),
		"tag_counts":  r.makeTagCountsFn(),
		"log":         mustProxy(&scriptLogger{logger: r.logger}),
	}
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic("script: proxy error: " + err.Error())
	}
	return p
}

// scriptLogger provides log.Info/Warn/Error methods for scripts.
type scriptLogger struct {
	logger *slog.Logger
}

func (l *scriptLogger) Info(msg string)  { l.logger.Info(msg, logfields.Source("script")) }
func (l *scriptLogger) Warn(msg string)  { l.logger.Warn(msg, logfields.Source("script")) }
func (l *scriptLogger) Error(msg string) { l.logger.Error(msg, logfields.Source("script")) }
