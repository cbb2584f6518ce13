// Package manual renders nested outlines as numbered manuals with a collapsible table of
// contents.
package manual

import (
	"fmt"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

// IntroductionIndex is always assigned to the introduction.
const IntroductionIndex = "1"

// Section is one numbered node of the outline.
type Section struct {
	Name     string
	Index    string
	Body     string
	Children []*Section
}

// Manual is an immutable outline built from `[name, introduction, section...]`.
type Manual struct {
	Name         string
	Introduction string
	Sections     []*Section
}

// ParseFunc renders directive text; label identifies the section in diagnostics.
type ParseFunc func(source, label string) (string, error)

// New builds a manual from its literal outline. Every section is `[name, body, child...]`.
// Top-level sections are numbered from 2; children are numbered from 1 under their parent.
func New(outline []any) (*Manual, error) {
	if len(outline) < 2 {
		return nil, errors.ValidationError("manual data must contain a name and an introduction").Build()
	}
	name, ok1 := outline[0].(string)
	intro, ok2 := outline[1].(string)
	if !ok1 || !ok2 {
		return nil, errors.ValidationError("manual name and introduction must be strings").Build()
	}

	m := &Manual{Name: name, Introduction: intro}
	for i, raw := range outline[2:] {
		s, err := newSection(strconv.Itoa(i+2), raw)
		if err != nil {
			return nil, err
		}
		m.Sections = append(m.Sections, s)
	}
	return m, nil
}

func newSection(index string, raw any) (*Section, error) {
	data, ok := raw.([]any)
	if !ok || len(data) < 2 {
		return nil, errors.ValidationError("manual section %s must be an array of name, body and subsections", index).Build()
	}
	name, ok1 := data[0].(string)
	body, ok2 := data[1].(string)
	if !ok1 || !ok2 {
		return nil, errors.ValidationError("manual section %s must have a string name and body", index).Build()
	}

	s := &Section{Name: name, Index: index, Body: body}
	for i, child := range data[2:] {
		c, err := newSection(index+"."+strconv.Itoa(i+1), child)
		if err != nil {
			return nil, err
		}
		s.Children = append(s.Children, c)
	}
	return s, nil
}

// Index resolves a `|`-delimited chain of section names to its dotted index.
func (m *Manual) Index(path string) (string, error) {
	if path == "Introduction" {
		return IntroductionIndex, nil
	}
	if idx, ok := find(strings.Split(path, "|"), m.Sections); ok {
		return idx, nil
	}
	return "", errors.ReferenceError("error resolving manual reference: %s not found", path).Build()
}

func find(chain []string, sections []*Section) (string, bool) {
	for _, s := range sections {
		if s.Name != chain[0] {
			continue
		}
		if len(chain) == 1 {
			return s.Index, true
		}
		return find(chain[1:], s.Children)
	}
	return "", false
}

// Render emits the introduction, the table of contents and every section. Section bodies
// are rendered through parse; source names the owning document in diagnostic labels.
func (m *Manual) Render(source string, parse ParseFunc) (string, error) {
	intro, err := parse(m.Introduction, fmt.Sprintf("%s manual section %s Introduction", source, IntroductionIndex))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<h1><span id=\"%s\"></span>%s</h1>\n%s\n", IntroductionIndex, m.Name, intro)
	b.WriteString("<h1 id=\"toc-anchor\">Table of Contents</h1>\n")
	b.WriteString(ToggleScript() + "\n")
	b.WriteString("<ul class=\"toc\">\n")
	fmt.Fprintf(&b, "<li>%s<a href=\"#%s\"><span>%s</span> Introduction</a></li>\n", ToggleSpan(false), IntroductionIndex, IntroductionIndex)
	for _, s := range m.Sections {
		writeTOC(&b, s)
	}
	b.WriteString("</ul>\n")

	for _, s := range m.Sections {
		if err := writeSection(&b, s, 0, source, parse); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func writeTOC(b *strings.Builder, s *Section) {
	hasChildren := len(s.Children) > 0
	fmt.Fprintf(b, "<li>%s<a href=\"#%s\"><span>%s</span> %s</a>", ToggleSpan(hasChildren), s.Index, s.Index, s.Name)
	if hasChildren {
		b.WriteString("\n<ul style=\"display: none;\">\n")
		for _, c := range s.Children {
			writeTOC(b, c)
		}
		b.WriteString("</ul>\n")
	}
	b.WriteString("</li>\n")
}

func writeSection(b *strings.Builder, s *Section, depth int, source string, parse ParseFunc) error {
	body, err := parse(s.Body, fmt.Sprintf("%s manual section %s %s", source, s.Index, s.Name))
	if err != nil {
		return err
	}
	level := depth + 2
	fmt.Fprintf(b, "<h%d><a href=\"#toc-anchor\"><span id=\"%s\">%s</span> %s</a></h%d>\n%s\n", level, s.Index, s.Index, s.Name, level, body)
	for _, c := range s.Children {
		if err := writeSection(b, c, depth+1, source, parse); err != nil {
			return err
		}
	}
	return nil
}
