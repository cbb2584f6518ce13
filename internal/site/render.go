package site

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/loki/internal/directive"
	"git.home.luguber.info/inful/loki/internal/document"
	"git.home.luguber.info/inful/loki/internal/foundation/errors"
	"git.home.luguber.info/inful/loki/internal/logfields"
	"git.home.luguber.info/inful/loki/internal/markdown"
	"git.home.luguber.info/inful/loki/internal/relpath"
)

const componentsDir = "components"

// LoadComponent reads <source>/components/name for `include` and templates.
func (s *Site) LoadComponent(name string) (string, string, error) {
	p := filepath.Join(s.source, componentsDir, filepath.FromSlash(name))
	if name == "" || !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", p, errors.ReferenceError("error loading component: %s doesn't exist", p).Build()
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", p, errors.ReferenceError("error loading component: %s doesn't exist", p).Build()
		}
		return "", p, errors.FileSystemError(err, "error loading component %s", p).Build()
	}
	return string(data), p, nil
}

// NewRenderer returns a renderer bound to doc with site and blog directives available.
func (s *Site) NewRenderer(doc *document.Document) *directive.Renderer {
	cfg := directive.Config{
		Operations: s.operations(doc),
		Variables:  map[string]any{"page": doc, "site": s},
		Body:       doc.Body,
		BodyPath:   doc.Label,
		Components: s,
		Logger:     s.logger,
	}
	if doc.Format == markdown.Format {
		cfg.BodyFilter = s.markdown.Convert
	}
	return directive.New(cfg)
}

// Render produces the complete HTML page for doc.
func (s *Site) Render(doc *document.Document) (string, error) {
	switch doc.Format {
	case "", "html", markdown.Format:
	default:
		return "", errors.ValidationError("unsupported format '%s'", doc.Format).
			WithLocation(doc.Label, 1).
			Build()
	}

	r := s.NewRenderer(doc)
	var (
		body string
		err  error
	)
	if doc.Template != "" {
		src, p, lerr := s.LoadComponent(doc.Template)
		if lerr != nil {
			return "", lerr
		}
		s.logger.Debug("Using template", logfields.Path(p), logfields.DocID(doc.ID))
		body, err = r.RenderTemplate(src, p)
	} else {
		body, err = r.RenderBody()
	}
	if err != nil {
		return "", err
	}

	head, err := s.head(doc)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("<html>\n")
	if head != "" {
		b.WriteString("<head>\n")
		b.WriteString(head)
		b.WriteString("</head>\n")
	}
	b.WriteString("<body>\n")
	b.WriteString(body)
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")
	return b.String(), nil
}

// head assembles title, stylesheets, scripts, favicons and raw head content, copying
// every referenced asset.
func (s *Site) head(doc *document.Document) (string, error) {
	var b strings.Builder
	if doc.Title != "" {
		fmt.Fprintf(&b, "  <title>%s</title>\n", doc.Title)
	}
	for _, css := range doc.CSS {
		href, err := s.assetHref(css, doc)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "  <link rel=\"stylesheet\" href=\"%s\" type=\"text/css\" />\n", href)
	}
	for _, js := range doc.JavaScript {
		src, err := s.assetHref(js, doc)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "  <script src=\"%s\" type=\"text/javascript\"></script>\n", src)
	}
	for _, icon := range doc.Favicons {
		href, err := s.assetHref(icon.Path, doc)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "  <link rel=\"%s\" type=\"%s\" href=\"%s\" sizes=\"%dx%d\" />\n",
			icon.Rel, faviconType(icon.Path), href, icon.Size, icon.Size)
	}
	if doc.Head != "" {
		b.WriteString(doc.Head)
		if !strings.HasSuffix(doc.Head, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func (s *Site) assetHref(rel string, doc *document.Document) (string, error) {
	dest, err := s.CopyAsset(rel)
	if err != nil {
		return "", err
	}
	return relpath.Relative(dest, doc.DestPath()), nil
}

var faviconTypes = map[string]string{
	".png":  "image/png",
	".ico":  "image/x-icon",
	".svg":  "image/svg+xml",
	".gif":  "image/gif",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

func faviconType(p string) string {
	if t, ok := faviconTypes[strings.ToLower(path.Ext(p))]; ok {
		return t
	}
	return "image/png"
}
