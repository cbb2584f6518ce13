package directive

import (
	"log/slog"
	"maps"
	"strings"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
	"git.home.luguber.info/inful/loki/internal/logfields"
)

// Mode is the evaluation context of a render.
type Mode int

const (
	// ModeTemplate is active while rendering a template, where `body` is legal.
	ModeTemplate Mode = iota
	// ModeBody is active while rendering the document's own body.
	ModeBody
)

func (m Mode) String() string {
	if m == ModeBody {
		return "body"
	}
	return "template"
}

// maxIncludeDepth bounds include/body recursion.
const maxIncludeDepth = 32

// Operation implements a named directive.
type Operation func(r *Renderer, args Args) (any, error)

// Table maps directive names to operations.
type Table map[string]Operation

// With returns a copy of t extended (and overridden) by other.
func (t Table) With(other Table) Table {
	out := make(Table, len(t)+len(other))
	maps.Copy(out, t)
	maps.Copy(out, other)
	return out
}

// ComponentLoader loads named fragments for `include` and templates.
type ComponentLoader interface {
	// LoadComponent returns the fragment text and the path used in diagnostics.
	LoadComponent(name string) (content string, path string, err error)
}

// Config configures a Renderer for one document.
type Config struct {
	// Operations extends the built-in table.
	Operations Table
	// Variables are bound to bare identifiers such as `page` and `site`.
	Variables map[string]any
	// Body is the raw body of the owning document and BodyPath its diagnostic path.
	Body     string
	BodyPath string
	// BodyFilter post-processes the rendered body, e.g. Markdown conversion.
	BodyFilter func(string) (string, error)
	Components ComponentLoader
	Logger     *slog.Logger
}

// Renderer evaluates directive text for a single document.
type Renderer struct {
	cfg    Config
	ops    Table
	logger *slog.Logger
	mode   Mode
	path   string
	line   int
	depth  int
}

// New creates a Renderer in template mode.
func New(cfg Config) *Renderer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		cfg:    cfg,
		ops:    Builtins().With(cfg.Operations),
		logger: logger,
		mode:   ModeTemplate,
	}
}

// Mode returns the current evaluation mode.
func (r *Renderer) Mode() Mode { return r.mode }

// Path returns the diagnostic path of the source being rendered.
func (r *Renderer) Path() string { return r.path }

// Line returns the line of the directive being evaluated.
func (r *Renderer) Line() int { return r.line }

// Logger returns the renderer's logger.
func (r *Renderer) Logger() *slog.Logger { return r.logger }

// RenderTemplate renders a template in template mode.
func (r *Renderer) RenderTemplate(source, path string) (string, error) {
	r.mode = ModeTemplate
	return r.Render(source, path)
}

// RenderBody switches to body mode and renders the owning document's body.
func (r *Renderer) RenderBody() (string, error) {
	prev := r.mode
	r.mode = ModeBody
	defer func() { r.mode = prev }()

	html, err := r.Render(r.cfg.Body, r.cfg.BodyPath)
	if err != nil {
		return "", err
	}
	if r.cfg.BodyFilter != nil {
		html, err = r.cfg.BodyFilter(html)
		if err != nil {
			return "", errors.Locate(err, r.cfg.BodyPath, 1)
		}
	}
	return html, nil
}

// Render scans source, evaluating every directive in the current mode. Errors carry the
// innermost path and line at which they occurred.
func (r *Renderer) Render(source, path string) (string, error) {
	if r.depth >= maxIncludeDepth {
		return "", errors.ReferenceError("render depth exceeded while rendering %s", path).Build()
	}
	prevPath, prevLine := r.path, r.line
	r.depth++
	defer func() {
		r.path, r.line = prevPath, prevLine
		r.depth--
	}()
	r.path = path

	var (
		out      strings.Builder
		buf      strings.Builder
		inside   bool
		escaping bool
		line     = 1
	)
	src := []rune(source)
	for i, c := range src {
		if c == '\n' {
			line++
		}
		if !inside {
			if c == '{' {
				inside = true
			} else {
				out.WriteRune(c)
			}
			continue
		}
		switch {
		case c == '}' && escaping:
			escaping = false
			buf.WriteRune(c)
		case c == '}' && i+1 < len(src) && src[i+1] == '}':
			escaping = true
		case c == '}':
			inside = false
			text, err := r.evaluate(buf.String(), path, line)
			if err != nil {
				return "", err
			}
			out.WriteString(text)
			buf.Reset()
		default:
			buf.WriteRune(c)
			if buf.Len() == 1 && c == '{' {
				inside = false
				out.WriteRune('{')
				buf.Reset()
			}
		}
	}
	if inside {
		return "", errors.ParseError("unexpected end-of-file; no matching '}'").WithLocation(path, line).Build()
	}
	return out.String(), nil
}

func (r *Renderer) evaluate(expr, path string, line int) (string, error) {
	r.path, r.line = path, line
	stmts, err := Parse(expr)
	if err != nil {
		return "", errors.Locate(err, path, line)
	}
	v, err := EvalAll(stmts, r)
	if err != nil {
		return "", errors.Locate(err, path, line)
	}
	return ToString(v), nil
}

// Lookup implements Env.
func (r *Renderer) Lookup(name string) (any, bool) {
	v, ok := r.cfg.Variables[name]
	return v, ok
}

// Call implements Env.
func (r *Renderer) Call(name string, args Args) (any, error) {
	op, ok := r.ops[name]
	if !ok {
		return nil, errors.ReferenceError("invalid directive '%s'", name).Build()
	}
	return op(r, args)
}

// Include renders the named component in the current mode.
func (r *Renderer) Include(name string) (string, error) {
	if r.cfg.Components == nil {
		return "", errors.ReferenceError("no component loader configured for include '%s'", name).Build()
	}
	content, path, err := r.cfg.Components.LoadComponent(name)
	if err != nil {
		return "", err
	}
	r.logger.Debug("Including component", logfields.Path(path), slog.String("mode", r.mode.String()))
	return r.Render(content, path)
}
