// Package site implements the document registry and its two-phase build.
//
// Every document is registered first: headers are parsed and identifiers claimed, so a
// duplicate identifier fails the build before anything is written. Only then are documents
// rendered, in registration order, with `link` able to reach any registered document.
package site

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/loki/internal/directive"
	"git.home.luguber.info/inful/loki/internal/document"
	"git.home.luguber.info/inful/loki/internal/foundation/errors"
	"git.home.luguber.info/inful/loki/internal/logfields"
	"git.home.luguber.info/inful/loki/internal/markdown"
	"git.home.luguber.info/inful/loki/internal/metadata"
	"git.home.luguber.info/inful/loki/internal/metrics"
)

// Phase is the registry lifecycle state.
type Phase int

const (
	PhaseNew Phase = iota
	PhaseRegistering
	PhaseRegistered
	PhaseBuilding
	PhaseBuilt
)

func (p Phase) String() string {
	return [...]string{"new", "registering", "registered", "building", "built"}[p]
}

// Blog is the derived-content engine a site may own.
type Blog interface {
	// Register loads entries and adds synthetic pages during the registration phase.
	Register(ctx context.Context, s *Site) error
	// Build writes entries and feeds before any ordinary document is built.
	Build(ctx context.Context, s *Site) error
	// Resolve maps a blog identifier to its destination path.
	Resolve(id string) (string, bool)
	// Operations returns the blog directives available while rendering doc.
	Operations(doc *document.Document) directive.Table
}

// Options configures a Site.
type Options struct {
	SourceRoot string
	DestRoot   string
	Logger     *slog.Logger
	Recorder   metrics.Recorder
	// Markdown converts bodies whose format is "markdown".
	Markdown *markdown.Converter
	// Now is the clock used for undated content; defaults to time.Now.
	Now func() time.Time
}

// Site is the document registry.
type Site struct {
	source   string
	dest     string
	logger   *slog.Logger
	recorder metrics.Recorder
	markdown *markdown.Converter
	now      func() time.Time

	phase   Phase
	docs    []*document.Document
	byID    map[string]*document.Document
	claimed map[string]document.Kind
	globals map[string]any
	blog    Blog
	assets  *assetStore
	written []string
}

// New creates an empty registry.
func New(opts Options) *Site {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	md := opts.Markdown
	if md == nil {
		md = markdown.New(markdown.Options{GFM: true})
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Site{
		source:   opts.SourceRoot,
		dest:     opts.DestRoot,
		logger:   logger,
		recorder: recorder,
		markdown: md,
		now:      now,
		byID:     make(map[string]*document.Document),
		claimed:  make(map[string]document.Kind),
		globals:  make(map[string]any),
		assets:   newAssetStore(opts.SourceRoot, opts.DestRoot, logger, recorder),
	}
}

// SourceRoot returns the source directory.
func (s *Site) SourceRoot() string { return s.source }

// DestRoot returns the destination directory.
func (s *Site) DestRoot() string { return s.dest }

// Logger returns the site logger.
func (s *Site) Logger() *slog.Logger { return s.logger }

// Now returns the current time according to the site clock.
func (s *Site) Now() time.Time { return s.now() }

// Phase returns the lifecycle state.
func (s *Site) Phase() Phase { return s.phase }

// Attr exposes site globals to `site.<name>` lookups.
func (s *Site) Attr(name string) (any, bool) {
	v, ok := s.globals[name]
	return v, ok
}

// SetGlobal declares or overwrites a site-wide value.
func (s *Site) SetGlobal(key string, value any) {
	s.globals[key] = value
}

// Globals returns a copy of the site-wide values.
func (s *Site) Globals() map[string]any {
	out := make(map[string]any, len(s.globals))
	for k, v := range s.globals {
		out[k] = v
	}
	return out
}

// SetBlog configures the blog engine. It must happen before registration.
func (s *Site) SetBlog(b Blog) error {
	if s.phase != PhaseNew {
		return errors.RegistrationError("blog must be configured before documents are loaded").Build()
	}
	s.blog = b
	return nil
}

// Blog returns the configured blog, if any.
func (s *Site) Blog() Blog { return s.blog }

// AddPage queues the view at rel, a slash-separated path below <source>/views, for
// registration. The destination drops the file extension and appends ".html".
func (s *Site) AddPage(rel string) (*document.Document, error) {
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return nil, errors.ValidationError("invalid view path '%s'", rel).Build()
	}
	src := filepath.Join(s.source, "views", filepath.FromSlash(rel))
	segments := strings.Split(strings.TrimSuffix(rel, path.Ext(rel)), "/")
	doc := document.New(document.KindPage, src, segments...)
	doc.SourcePath = src
	if err := s.Add(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Add queues doc for registration.
func (s *Site) Add(doc *document.Document) error {
	if s.phase != PhaseNew {
		return errors.RegistrationError("cannot add %s after registration started", doc.Label).Build()
	}
	s.docs = append(s.docs, doc)
	return nil
}

// AddDocument registers a synthetic document while registration is in progress.
func (s *Site) AddDocument(doc *document.Document) error {
	if s.phase != PhaseRegistering {
		return errors.RegistrationError("synthetic documents can only be added during registration").Build()
	}
	if err := s.ClaimID(doc); err != nil {
		return err
	}
	s.docs = append(s.docs, doc)
	s.logger.Debug("Registered synthetic document", logfields.DocID(doc.ID), logfields.Dest(doc.DestPath()))
	return nil
}

// Documents returns the registered documents in registration order. Blog entries are not
// included.
func (s *Site) Documents() []*document.Document {
	return slices.Clone(s.docs)
}

// Register loads every queued document, enforcing identifier uniqueness, then lets the
// blog register its entries and synthetic pages.
func (s *Site) Register(ctx context.Context) error {
	if s.phase != PhaseNew {
		return errors.RegistrationError("registration already ran (phase %s)", s.phase).Build()
	}
	s.phase = PhaseRegistering

	for _, doc := range slices.Clone(s.docs) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.LoadDocument(doc); err != nil {
			return err
		}
		if err := s.ClaimID(doc); err != nil {
			return err
		}
	}
	if s.blog != nil {
		if err := s.blog.Register(ctx, s); err != nil {
			return err
		}
	}

	s.phase = PhaseRegistered
	s.logger.Info("Registration complete", logfields.Count(len(s.docs)))
	return nil
}

// LoadDocument reads doc's source file and evaluates its header.
func (s *Site) LoadDocument(doc *document.Document) error {
	s.logger.Info("Loading document", logfields.Source(doc.SourcePath), logfields.DocKind(string(doc.Kind)))
	raw, err := os.ReadFile(doc.SourcePath)
	if err != nil {
		return errors.FileSystemError(err, "cannot read %s", doc.SourcePath).Build()
	}
	return metadata.Load(doc, string(raw), s)
}

// ClaimID reserves doc's identifier. Entries share the identifier space with pages.
func (s *Site) ClaimID(doc *document.Document) error {
	if doc.ID == "" {
		return nil
	}
	if _, taken := s.claimed[doc.ID]; taken {
		return errors.RegistrationError("error loading %s: duplicate id '%s'", doc.Kind.Label(), doc.ID).
			WithContext("path", doc.Label).
			Build()
	}
	s.claimed[doc.ID] = doc.Kind
	if doc.Kind != document.KindEntry {
		s.byID[doc.ID] = doc
	}
	return nil
}

// TagCounts returns how many registered documents carry each tag. A document counts once
// per tag however often it lists it.
func (s *Site) TagCounts() map[string]int {
	counts := make(map[string]int)
	for _, doc := range s.docs {
		for _, tag := range slices.Compact(slices.Sorted(slices.Values(doc.Tags))) {
			counts[tag]++
		}
	}
	return counts
}

// DocumentsWithTag returns registered documents carrying tag, in registration order.
func (s *Site) DocumentsWithTag(tag string) []*document.Document {
	var out []*document.Document
	for _, doc := range s.docs {
		if doc.HasTag(tag) {
			out = append(out, doc)
		}
	}
	return out
}

// Build renders every registered document. The blog builds first so its outputs exist
// before ordinary pages link to them.
func (s *Site) Build(ctx context.Context) error {
	if s.phase != PhaseRegistered {
		return errors.RegistrationError("build requires a completed registration (phase %s)", s.phase).Build()
	}
	s.phase = PhaseBuilding

	if s.blog != nil {
		if err := s.blog.Build(ctx, s); err != nil {
			return err
		}
	}
	for _, doc := range s.docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.BuildDocument(doc); err != nil {
			return err
		}
	}

	s.phase = PhaseBuilt
	return nil
}

// BuildDocument renders doc and writes it to its destination.
func (s *Site) BuildDocument(doc *document.Document) error {
	s.logger.Info("Building document", logfields.Source(doc.Label), logfields.Dest(doc.DestPath()))
	html, err := s.Render(doc)
	if err != nil {
		return err
	}
	doc.HTML = html
	if err := s.WriteFile(doc.DestPath(), []byte(html)); err != nil {
		return err
	}
	s.recorder.IncDocumentsBuilt(string(doc.Kind))
	return nil
}

// WriteFile writes data to rel under the destination root, creating directories.
func (s *Site) WriteFile(rel string, data []byte) error {
	path := filepath.Join(s.dest, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.FileSystemError(err, "cannot create directory for %s", path).Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.FileSystemError(err, "cannot write %s", path).Build()
	}
	s.written = append(s.written, rel)
	s.logger.Debug("Wrote file", logfields.Dest(path))
	return nil
}

// Written returns the destination-relative paths written so far, in order.
func (s *Site) Written() []string {
	return slices.Clone(s.written)
}

// Resolve maps an identifier to a destination-relative path: a registered document, then
// an asset (copied as a side effect), then the blog.
func (s *Site) Resolve(id string) (string, error) {
	if doc, ok := s.byID[id]; ok {
		return doc.DestPath(), nil
	}
	if s.assets.Exists(id) {
		if err := s.assets.Copy(id); err != nil {
			return "", err
		}
		return assetPath(id), nil
	}
	if s.blog != nil {
		if p, ok := s.blog.Resolve(id); ok {
			return p, nil
		}
	}
	return "", errors.ReferenceError("couldn't link to '%s', no match found.", id).
		WithContext("id", id).
		Build()
}

// CopyAsset copies <source>/assets/rel to the destination once and returns its
// destination-relative path.
func (s *Site) CopyAsset(rel string) (string, error) {
	if err := s.assets.Copy(rel); err != nil {
		return "", err
	}
	return assetPath(rel), nil
}
