// Package document defines the unit of content tracked by the site registry: ordinary
// pages, blog entries and the synthetic pages derived from them.
package document

import (
	"path"

	"git.home.luguber.info/inful/loki/internal/manual"
)

// Kind distinguishes how a document was created.
type Kind string

const (
	KindPage      Kind = "page"
	KindEntry     Kind = "entry"
	KindBlogIndex Kind = "blog_index"
	KindTagPage   Kind = "tag_page"
)

// Label names the kind in registration diagnostics.
func (k Kind) Label() string {
	if k == KindEntry {
		return "blog entry"
	}
	return "page"
}

// Favicon is one `[size, rel, path]` tuple of the favicon header field.
type Favicon struct {
	Size int
	Rel  string
	Path string
}

// Document is a page or blog entry.
type Document struct {
	Kind Kind
	// Segments form the destination path relative to the output root, without ".html".
	Segments []string
	// SourcePath is the file read during registration; empty for synthetic documents.
	SourcePath string
	// Label identifies the document in diagnostics.
	Label string

	ID          string
	Title       string
	Tags        []string
	Date        string
	Template    string
	CSS         []string
	JavaScript  []string
	Favicons    []Favicon
	Head        string
	Format      string
	Description string
	Manual      *manual.Manual

	Extensions map[string]any

	Body string
	HTML string
}

// New creates a document of kind at segments.
func New(kind Kind, label string, segments ...string) *Document {
	return &Document{
		Kind:       kind,
		Segments:   segments,
		Label:      label,
		Extensions: make(map[string]any),
	}
}

// DestPath returns the slash-separated output path relative to the destination root.
func (d *Document) DestPath() string {
	return path.Join(d.Segments...) + ".html"
}

// Synthetic reports whether the document has no source file.
func (d *Document) Synthetic() bool {
	return d.SourcePath == ""
}

// HasTag reports whether the document literally carries tag.
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Set declares or overwrites an extension field.
func (d *Document) Set(key string, value any) {
	if d.Extensions == nil {
		d.Extensions = make(map[string]any)
	}
	d.Extensions[key] = value
}

// Attr exposes header fields and extensions to `page.<name>` lookups.
func (d *Document) Attr(name string) (any, bool) {
	switch name {
	case "id":
		return optional(d.ID), true
	case "title":
		return optional(d.Title), true
	case "date":
		return optional(d.Date), true
	case "template":
		return optional(d.Template), true
	case "head":
		return optional(d.Head), true
	case "format":
		return optional(d.Format), true
	case "description":
		return optional(d.Description), true
	case "tags":
		return stringList(d.Tags), true
	case "css":
		return stringList(d.CSS), true
	case "javascript":
		return stringList(d.JavaScript), true
	case "path":
		return d.DestPath(), true
	case "kind":
		return string(d.Kind), true
	}
	v, ok := d.Extensions[name]
	return v, ok
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stringList(ss []string) any {
	if ss == nil {
		return nil
	}
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
