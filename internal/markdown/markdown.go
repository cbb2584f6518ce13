// Package markdown converts Markdown bodies to HTML.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

// Format is the header `format` value selecting Markdown bodies.
const Format = "markdown"

// Options controls Markdown conversion.
type Options struct {
	// GFM enables tables, strikethrough, autolinks and task lists.
	GFM bool
}

// Converter renders Markdown. Raw HTML, including directive output, passes through.
type Converter struct {
	md goldmark.Markdown
}

// New creates a Converter.
func New(opts Options) *Converter {
	options := []goldmark.Option{
		goldmark.WithRendererOptions(html.WithUnsafe()),
	}
	if opts.GFM {
		options = append(options, goldmark.WithExtensions(extension.GFM))
	}
	return &Converter{md: goldmark.New(options...)}
}

// Convert renders src to HTML.
func (c *Converter) Convert(src string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(src), &buf); err != nil {
		return "", errors.WrapError(err, errors.CategoryParse, "markdown conversion failed").Fatal().Build()
	}
	return buf.String(), nil
}
