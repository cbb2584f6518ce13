package blog

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/loki/internal/directive"
	"git.home.luguber.info/inful/loki/internal/document"
	"git.home.luguber.info/inful/loki/internal/manual"
	"git.home.luguber.info/inful/loki/internal/relpath"
	"git.home.luguber.info/inful/loki/internal/site"
)

const (
	dateCollapsed = "blog_date_collapsed"
	dateExpanded  = "blog_date_expanded"
)

// Operations returns the blog directives for doc.
func (b *Blog) Operations(doc *document.Document) directive.Table {
	return directive.Table{
		"date":          site.DateOperation(doc, b.cfg.DateFormat),
		"rss_feed":      b.opRSSFeed(doc),
		"blog_oldest":   b.navigate(doc, "blog_oldest", b.Oldest),
		"blog_newest":   b.navigate(doc, "blog_newest", b.Newest),
		"blog_previous": b.navigate(doc, "blog_previous", func() *document.Document { return b.Previous(doc) }),
		"blog_next":     b.navigate(doc, "blog_next", func() *document.Document { return b.Next(doc) }),
		"date_sidebar":  b.opDateSidebar(doc),
		"tag_sidebar":   b.opTagSidebar(doc),
	}
}

// Oldest returns the oldest entry, or nil without entries.
func (b *Blog) Oldest() *document.Document {
	if len(b.entries) == 0 {
		return nil
	}
	return b.entries[len(b.entries)-1]
}

// Newest returns the newest entry, or nil without entries.
func (b *Blog) Newest() *document.Document {
	if len(b.entries) == 0 {
		return nil
	}
	return b.entries[0]
}

// Previous returns the entry published before doc.
func (b *Blog) Previous(doc *document.Document) *document.Document {
	i := slices.Index(b.entries, doc)
	if i < 0 || i+1 >= len(b.entries) {
		return nil
	}
	return b.entries[i+1]
}

// Next returns the entry published after doc.
func (b *Blog) Next(doc *document.Document) *document.Document {
	i := slices.Index(b.entries, doc)
	if i <= 0 {
		return nil
	}
	return b.entries[i-1]
}

func (b *Blog) navigate(doc *document.Document, name string, target func() *document.Document) directive.Operation {
	return func(_ *directive.Renderer, args directive.Args) (any, error) {
		if err := args.Expect(name, 0, 2); err != nil {
			return nil, err
		}
		opts, err := args.Options(1)
		if err != nil {
			return nil, err
		}
		t := target()
		if t == nil {
			return "", nil
		}
		href := relpath.Relative(t.DestPath(), doc.DestPath())
		return directive.Anchor(href, args.Text(0, t.Title), opts), nil
	}
}

func (b *Blog) opRSSFeed(doc *document.Document) directive.Operation {
	return func(_ *directive.Renderer, args directive.Args) (any, error) {
		if err := args.Expect("rss_feed", 0, 2); err != nil {
			return nil, err
		}
		opts, err := args.Options(1)
		if err != nil {
			return nil, err
		}
		href := relpath.Relative(FeedPath, doc.DestPath())
		return directive.Anchor(href, args.Text(0, "RSS"), opts), nil
	}
}

func dateToggleSpan(collapsed bool) string {
	class := dateExpanded
	if collapsed {
		class = dateCollapsed
	}
	return fmt.Sprintf(`<span class="%s" style="float: left; width: 1em; cursor: pointer;" onclick="toggleDate(this);">%s</span>`,
		class, manual.Arrow(!collapsed))
}

func display(collapsed bool) string {
	if collapsed {
		return "none"
	}
	return "block"
}

type monthBucket struct {
	month   time.Month
	entries []*document.Document
}

type yearBucket struct {
	year   int
	months []*monthBucket
}

// buckets groups entries by year and month, newest first.
func (b *Blog) buckets() []*yearBucket {
	var years []*yearBucket
	for _, entry := range b.entries {
		d := b.dates[entry]
		if len(years) == 0 || years[len(years)-1].year != d.Year() {
			years = append(years, &yearBucket{year: d.Year()})
		}
		y := years[len(years)-1]
		if len(y.months) == 0 || y.months[len(y.months)-1].month != d.Month() {
			y.months = append(y.months, &monthBucket{month: d.Month()})
		}
		m := y.months[len(y.months)-1]
		m.entries = append(m.entries, entry)
	}
	return years
}

// DateSidebar renders the collapsible year/month/entry list for doc. The year and month
// of doc's own date start expanded.
func (b *Blog) DateSidebar(doc *document.Document, now time.Time) string {
	current := now
	if d, ok := b.dates[doc]; ok {
		current = d
	} else if doc.Date != "" {
		if d, err := document.ParseDate(doc.Date); err == nil {
			current = d
		}
	}

	var sb strings.Builder
	sb.WriteString(manual.ToggleScriptFor("toggleDate", dateCollapsed, dateExpanded))
	sb.WriteString("<div class=\"blog-date-sidebar\">\n<ul style=\"list-style-type: none;\">\n")
	for _, y := range b.buckets() {
		collapsed := y.year != current.Year()
		fmt.Fprintf(&sb, "  <li style=\"clear: both;\">%s<span>%d</span>\n    <ul style=\"list-style-type: none; display: %s;\">\n",
			dateToggleSpan(collapsed), y.year, display(collapsed))
		for _, m := range y.months {
			collapsed := y.year != current.Year() || m.month != current.Month()
			fmt.Fprintf(&sb, "      <li style=\"clear: both;\">%s<span>%s</span>\n        <ul style=\"list-style-type: none; display: %s;\">\n",
				dateToggleSpan(collapsed), m.month, display(collapsed))
			for _, entry := range m.entries {
				fmt.Fprintf(&sb, "          <li style=\"clear: both;\"><a href=\"%s\">%s</a></li>\n",
					relpath.Relative(entry.DestPath(), doc.DestPath()), entry.Title)
			}
			sb.WriteString("        </ul>\n      </li>\n")
		}
		sb.WriteString("    </ul>\n  </li>\n")
	}
	sb.WriteString("</ul>\n</div>\n")
	return sb.String()
}

func (b *Blog) opDateSidebar(doc *document.Document) directive.Operation {
	return func(_ *directive.Renderer, args directive.Args) (any, error) {
		if err := args.Expect("date_sidebar", 0, 0); err != nil {
			return nil, err
		}
		return b.DateSidebar(doc, b.site.Now()), nil
	}
}

// TagSidebar renders tag counts over documents and entries, linking to tag pages when
// they are generated.
func (b *Blog) TagSidebar(s *site.Site, doc *document.Document) string {
	counts := b.tagCounts(s)
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	var sb strings.Builder
	sb.WriteString("<div class=\"blog-tag-sidebar\">\n<ul>\n")
	for _, tag := range tags {
		if b.cfg.TagPages {
			href := relpath.Href(TagPagePath(tag), doc.DestPath())
			fmt.Fprintf(&sb, "<li><a href=\"%s\">%s (%d)</a></li>\n", href, tag, counts[tag])
		} else {
			fmt.Fprintf(&sb, "<li>%s (%d)</li>\n", tag, counts[tag])
		}
	}
	sb.WriteString("</ul>\n</div>\n")
	return sb.String()
}

func (b *Blog) opTagSidebar(doc *document.Document) directive.Operation {
	return func(_ *directive.Renderer, args directive.Args) (any, error) {
		if err := args.Expect("tag_sidebar", 0, 0); err != nil {
			return nil, err
		}
		return b.TagSidebar(b.site, doc), nil
	}
}
