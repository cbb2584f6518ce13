package site

import (
	"fmt"
	"maps"
	"strings"

	"github.com/ncruces/go-strftime"

	"git.home.luguber.info/inful/loki/internal/directive"
	"git.home.luguber.info/inful/loki/internal/document"
	"git.home.luguber.info/inful/loki/internal/foundation/errors"
	"git.home.luguber.info/inful/loki/internal/relpath"
)

// DefaultDateFormat is the strftime layout used by `date` when none is given.
const DefaultDateFormat = "%Y-%m-%d %H:%M"

// operations returns the site directives for doc, overlaid with the blog's.
func (s *Site) operations(doc *document.Document) directive.Table {
	ops := directive.Table{
		"link":          s.opLink(doc),
		"image":         s.opImage(doc),
		"manual_ref":    opManualRef(doc),
		"render_manual": opRenderManual(doc),
		"markdown":      s.opMarkdown,
		"set":           opSet(doc),
		"global":        s.opGlobal,
		"date":          opDate(doc, DefaultDateFormat),
	}
	if s.blog != nil {
		ops = ops.With(s.blog.Operations(doc))
	}
	return ops
}

func (s *Site) opLink(doc *document.Document) directive.Operation {
	return func(_ *directive.Renderer, args directive.Args) (any, error) {
		if err := args.Expect("link", 2, 3); err != nil {
			return nil, err
		}
		id, err := args.String(0, "link id")
		if err != nil {
			return nil, err
		}
		opts, err := args.Options(2)
		if err != nil {
			return nil, err
		}

		target, err := s.Resolve(id)
		if err != nil {
			return nil, err
		}
		href := relpath.Href(target, doc.DestPath())
		if suffix, ok := opts["append"]; ok {
			href += directive.ToString(suffix)
		}

		attrs := maps.Clone(opts)
		if self, ok := opts["self_class"]; ok && doc.ID != "" && id == doc.ID {
			class := directive.ToString(self)
			if existing, ok := opts["class"]; ok {
				class += " " + directive.ToString(existing)
			}
			attrs["class"] = class
		}
		return directive.Anchor(href, args.Text(1, ""), attrs), nil
	}
}

func (s *Site) opImage(doc *document.Document) directive.Operation {
	return func(_ *directive.Renderer, args directive.Args) (any, error) {
		if err := args.Expect("image", 1, 2); err != nil {
			return nil, err
		}
		p, err := args.String(0, "image path")
		if err != nil {
			return nil, err
		}
		opts, err := args.Options(1)
		if err != nil {
			return nil, err
		}
		src, err := s.assetHref(p, doc)
		if err != nil {
			return nil, err
		}

		var b strings.Builder
		fmt.Fprintf(&b, `<img src="%s"`, src)
		if alt, ok := opts["alt"]; ok {
			fmt.Fprintf(&b, ` alt="%s"`, directive.ToString(alt))
		}
		b.WriteString(directive.Attributes(opts))
		b.WriteString(" />")
		return b.String(), nil
	}
}

func opManualRef(doc *document.Document) directive.Operation {
	return func(_ *directive.Renderer, args directive.Args) (any, error) {
		if err := args.Expect("manual_ref", 1, 2); err != nil {
			return nil, err
		}
		if doc.Manual == nil {
			return nil, errors.ReferenceError("no manual data defined, cannot create link").Build()
		}
		p, err := args.String(0, "manual reference")
		if err != nil {
			return nil, err
		}
		parts := strings.Split(p, "|")
		text := args.Text(1, parts[len(parts)-1])
		index, err := doc.Manual.Index(p)
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf(`<a href="#%s">%s</a>`, index, text), nil
	}
}

func opRenderManual(doc *document.Document) directive.Operation {
	return func(r *directive.Renderer, args directive.Args) (any, error) {
		if err := args.Expect("render_manual", 0, 0); err != nil {
			return nil, err
		}
		if doc.Manual == nil {
			return nil, errors.ReferenceError("no manual data defined, cannot render").Build()
		}
		return doc.Manual.Render(doc.Label, r.Render)
	}
}

func (s *Site) opMarkdown(_ *directive.Renderer, args directive.Args) (any, error) {
	if err := args.Expect("markdown", 1, 1); err != nil {
		return nil, err
	}
	text, err := args.String(0, "markdown text")
	if err != nil {
		return nil, err
	}
	return s.markdown.Convert(text)
}

func opSet(doc *document.Document) directive.Operation {
	return func(_ *directive.Renderer, args directive.Args) (any, error) {
		if err := args.Expect("set", 2, 2); err != nil {
			return nil, err
		}
		key, err := args.String(0, "set key")
		if err != nil {
			return nil, err
		}
		doc.Set(key, args.Get(1))
		return "", nil
	}
}

func (s *Site) opGlobal(_ *directive.Renderer, args directive.Args) (any, error) {
	if err := args.Expect("global", 2, 2); err != nil {
		return nil, err
	}
	key, err := args.String(0, "global key")
	if err != nil {
		return nil, err
	}
	s.SetGlobal(key, args.Get(1))
	return "", nil
}

// opDate formats the document date; def is used when no layout is given.
func opDate(doc *document.Document, def string) directive.Operation {
	return func(_ *directive.Renderer, args directive.Args) (any, error) {
		if err := args.Expect("date", 0, 1); err != nil {
			return nil, err
		}
		if doc.Date == "" {
			return "", nil
		}
		t, err := document.ParseDate(doc.Date)
		if err != nil {
			return nil, err
		}
		return strftime.Format(args.Text(0, def), t), nil
	}
}

// DateOperation exposes the `date` directive with a different default layout.
func DateOperation(doc *document.Document, layout string) directive.Operation {
	return opDate(doc, layout)
}
