package build

import (
	"bytes"
	"encoding/xml"
	"path"
	"strings"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

// SitemapPath is the destination of the generated sitemap.
const SitemapPath = "sitemap.xml"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// Sitemap renders a sitemap listing every written HTML page below baseURL.
func Sitemap(baseURL string, written []string) ([]byte, error) {
	base := strings.TrimSuffix(baseURL, "/")
	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range written {
		if path.Ext(p) != ".html" {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{Loc: base + "/" + p})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, errors.InternalError("encoding sitemap: %v", err).Build()
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
