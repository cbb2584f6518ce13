// Package linkverify checks that every relative link and asset reference in a built site
// points at a file that exists in the destination tree.
package linkverify

import (
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
	"git.home.luguber.info/inful/loki/internal/logfields"
)

// Broken is a reference whose target does not exist.
type Broken struct {
	Page   string // destination-relative page containing the link
	Link   *Link
	Target string // destination-relative path the link resolves to
}

// Verifier checks pages below a destination root.
type Verifier struct {
	root   string
	logger *slog.Logger
}

// NewVerifier creates a verifier for the site written to root.
func NewVerifier(root string, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{root: root, logger: logger}
}

// Verify checks every HTML page in pages (destination-relative, slash-separated).
func (v *Verifier) Verify(pages []string) ([]Broken, error) {
	var broken []Broken
	for _, page := range pages {
		if !strings.HasSuffix(page, ".html") {
			continue
		}
		links, err := ExtractLinks(filepath.Join(v.root, filepath.FromSlash(page)))
		if err != nil {
			return nil, err
		}
		for _, link := range links {
			if !IsLocal(link) {
				continue
			}
			target, ok := resolve(page, link.URL)
			if !ok || !v.exists(target) {
				v.logger.Warn("Broken link", logfields.Path(page), logfields.URL(link.URL))
				broken = append(broken, Broken{Page: page, Link: link, Target: target})
			}
		}
	}
	v.logger.Info("Verified links", logfields.Count(len(pages)), slog.Int("broken", len(broken)))
	return broken, nil
}

func (v *Verifier) exists(target string) bool {
	info, err := os.Stat(filepath.Join(v.root, filepath.FromSlash(target)))
	if err != nil {
		return false
	}
	if info.IsDir() {
		_, err = os.Stat(filepath.Join(v.root, filepath.FromSlash(target), "index.html"))
		return err == nil
	}
	return true
}

// resolve maps a relative reference on page to a destination-relative path. References
// escaping the root do not resolve.
func resolve(page, ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	p := u.Path
	if strings.HasPrefix(p, "/") {
		p = strings.TrimPrefix(p, "/")
	} else {
		p = path.Join(path.Dir(page), p)
	}
	p = path.Clean(p)
	if p == ".." || strings.HasPrefix(p, "../") {
		return p, false
	}
	return p, true
}

// Error summarizes broken links as a reference error.
func Error(broken []Broken) error {
	if len(broken) == 0 {
		return nil
	}
	var b strings.Builder
	for _, br := range broken {
		b.WriteString("\n  ")
		b.WriteString(br.Page)
		b.WriteString(": ")
		b.WriteString(br.Link.URL)
	}
	return errors.ReferenceError("%d broken link(s):%s", len(broken), b.String()).
		WithContext("count", len(broken)).
		Build()
}
