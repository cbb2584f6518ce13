// Package blog derives blog pages from a directory of dated entries: paginated indices,
// tag filter pages, an RSS feed, chronological navigation and sidebars.
package blog

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/loki/internal/document"
	"git.home.luguber.info/inful/loki/internal/foundation/errors"
	"git.home.luguber.info/inful/loki/internal/logfields"
	"git.home.luguber.info/inful/loki/internal/site"
)

// Blog is the blog engine of one site.
type Blog struct {
	cfg     Config
	site    *site.Site
	entries []*document.Document
	dates   map[*document.Document]time.Time
	byID    map[string]*document.Document
}

var _ site.Blog = (*Blog)(nil)

// New creates a blog engine for cfg.
func New(cfg Config) *Blog {
	return &Blog{
		cfg:   cfg,
		dates: make(map[*document.Document]time.Time),
		byID:  make(map[string]*document.Document),
	}
}

// Config returns the blog configuration.
func (b *Blog) Config() Config { return b.cfg }

// Entries returns the loaded entries, newest first.
func (b *Blog) Entries() []*document.Document {
	return slices.Clone(b.entries)
}

// Register loads every entry, claims its identifier and adds the synthetic index and tag
// pages to s.
func (b *Blog) Register(ctx context.Context, s *site.Site) error {
	if err := b.cfg.validate(); err != nil {
		return err
	}
	b.site = s

	dir := filepath.Join(s.SourceRoot(), filepath.FromSlash(b.cfg.Directory))
	items, err := os.ReadDir(dir)
	if err != nil {
		return errors.FileSystemError(err, "cannot read blog directory %s", dir).Build()
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if item.IsDir() {
			continue
		}
		if err := b.loadEntry(s, filepath.Join(dir, item.Name())); err != nil {
			return err
		}
	}

	slices.SortStableFunc(b.entries, func(x, y *document.Document) int {
		return b.dates[y].Compare(b.dates[x])
	})
	s.Logger().Info("Loaded blog entries", logfields.Count(len(b.entries)), logfields.Source(dir))

	for _, page := range b.indexPages() {
		if err := s.AddDocument(page); err != nil {
			return err
		}
	}
	if b.cfg.TagPages {
		for _, page := range b.tagPages(s) {
			if err := s.AddDocument(page); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Blog) loadEntry(s *site.Site, path string) error {
	name := filepath.Base(path)
	entry := document.New(document.KindEntry, path, "blog", strings.TrimSuffix(name, filepath.Ext(name)))
	entry.SourcePath = path
	if err := s.LoadDocument(entry); err != nil {
		return err
	}

	for _, req := range []struct{ field, value string }{
		{"an id", entry.ID},
		{"a title", entry.Title},
		{"a date", entry.Date},
	} {
		if req.value == "" {
			return errors.ValidationError("all blog entries must have %s", req.field).
				WithContext("path", path).
				Build()
		}
	}
	date, err := document.ParseDate(entry.Date)
	if err != nil {
		return errors.Locate(err, path, 1)
	}
	if b.cfg.GenerateRSS && entry.Description == "" {
		return errors.ConfigError("must supply descriptions for entries when generating RSS").
			WithContext("path", path).
			Build()
	}
	if err := s.ClaimID(entry); err != nil {
		return err
	}

	entry.Template = b.cfg.EntryTemplate
	b.present(entry)

	b.entries = append(b.entries, entry)
	b.dates[entry] = date
	b.byID[entry.ID] = entry
	return nil
}

// present copies the shared presentation settings onto doc.
func (b *Blog) present(doc *document.Document) {
	doc.CSS = b.cfg.CSS
	doc.JavaScript = b.cfg.JavaScript
	doc.Favicons = b.cfg.Favicons
	doc.Head = b.cfg.Head
}

// Build writes every entry, then the feed.
func (b *Blog) Build(ctx context.Context, s *site.Site) error {
	for _, entry := range b.entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.BuildDocument(entry); err != nil {
			return err
		}
	}
	if !b.cfg.GenerateRSS {
		return nil
	}
	data, err := b.feed(s.Now())
	if err != nil {
		return err
	}
	s.Logger().Info("Writing RSS feed", logfields.Dest(FeedPath), logfields.Count(min(len(b.entries), MaxFeedItems)))
	return s.WriteFile(FeedPath, data)
}

// Resolve maps an entry identifier to its destination path.
func (b *Blog) Resolve(id string) (string, bool) {
	if entry, ok := b.byID[id]; ok {
		return entry.DestPath(), true
	}
	return "", false
}

// tagCounts aggregates tags over ordinary documents and entries.
func (b *Blog) tagCounts(s *site.Site) map[string]int {
	counts := s.TagCounts()
	for _, entry := range b.entries {
		for _, tag := range slices.Compact(slices.Sorted(slices.Values(entry.Tags))) {
			counts[tag]++
		}
	}
	return counts
}
