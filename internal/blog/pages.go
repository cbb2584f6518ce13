package blog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ncruces/go-strftime"

	"git.home.luguber.info/inful/loki/internal/directive"
	"git.home.luguber.info/inful/loki/internal/document"
	"git.home.luguber.info/inful/loki/internal/site"
)

const (
	// IndexID identifies the first index page.
	IndexID = "blog"
	// FeedPath is the destination of the RSS feed.
	FeedPath = "blog/rss.xml"

	noEntries = "No blog entries yet."
)

// PageCount returns the number of index pages; there is always at least one.
func (b *Blog) PageCount() int {
	return max(1, (len(b.entries)+b.cfg.EntriesPerPage-1)/b.cfg.EntriesPerPage)
}

// pageName returns the destination file stem of index page n (1-based).
func pageName(n int) string {
	if n == 1 {
		return "index"
	}
	return fmt.Sprintf("page%d", n)
}

func pageID(n int) string {
	if n == 1 {
		return IndexID
	}
	return fmt.Sprintf("%s-page%d", IndexID, n)
}

// TagPageID identifies the filter page of tag.
func TagPageID(tag string) string {
	return "tag-" + tag
}

// TagPagePath is the unescaped destination of the filter page of tag.
func TagPagePath(tag string) string {
	return "blog/tags/" + tag + ".html"
}

func (b *Blog) synthetic(label, title string, segments ...string) *document.Document {
	doc := document.New(document.KindBlogIndex, label, segments...)
	doc.Title = title
	doc.Template = b.cfg.MainTemplate
	b.present(doc)
	return doc
}

func (b *Blog) indexPages() []*document.Document {
	count := b.PageCount()
	pages := make([]*document.Document, 0, count)
	for n := 1; n <= count; n++ {
		doc := b.synthetic("blog index page "+fmt.Sprint(n), b.cfg.MainTitle, "blog", pageName(n))
		doc.ID = pageID(n)

		lo := (n - 1) * b.cfg.EntriesPerPage
		hi := min(lo+b.cfg.EntriesPerPage, len(b.entries))
		doc.Body = b.indexBody(b.entries[lo:hi], n, count)
		pages = append(pages, doc)
	}
	return pages
}

func (b *Blog) indexBody(entries []*document.Document, n, count int) string {
	if len(b.entries) == 0 {
		return noEntries
	}

	var sb strings.Builder
	sb.WriteString("<div class=\"blog-entry-list\">\n")
	for _, entry := range entries {
		sb.WriteString(b.entryLine(entry))
	}
	sb.WriteString("</div>\n<div>&nbsp;</div>\n")
	if n > 1 {
		fmt.Fprintf(&sb, "<span class=\"prev-blog-page\"><a href=\"%s.html\">prev page [%d]</a></span>\n", pageName(n-1), n-1)
	}
	if n < count {
		fmt.Fprintf(&sb, "<span class=\"next-blog-page\"><a href=\"%s.html\">next page [%d]</a></span>\n", pageName(n+1), n+1)
	}
	return sb.String()
}

// entryLine lists one entry with its formatted date.
func (b *Blog) entryLine(entry *document.Document) string {
	date := directive.EscapeLiteral(strftime.Format(b.cfg.DateFormat, b.dates[entry]))
	return fmt.Sprintf("<p>{ link(%s, %s) } <span class=\"blog-date\">[%s]</span></p>\n",
		directive.QuoteString(entry.ID), directive.QuoteString(entry.Title), date)
}

func (b *Blog) tagPages(s *site.Site) []*document.Document {
	counts := b.tagCounts(s)
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	pages := make([]*document.Document, 0, len(tags))
	for _, tag := range tags {
		doc := b.synthetic("blog tag page "+tag, tag+" tag", "blog", "tags", tag)
		doc.Kind = document.KindTagPage
		doc.ID = TagPageID(tag)
		doc.Body = b.tagBody(s, tag)
		pages = append(pages, doc)
	}
	return pages
}

func (b *Blog) tagBody(s *site.Site, tag string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<span class=\"blog-filter\">Currently filtering on: <em>%s</em></span>\n", directive.EscapeLiteral(tag))
	for _, doc := range s.DocumentsWithTag(tag) {
		if doc.Kind != document.KindPage || doc.ID == "" || doc.Title == "" {
			continue
		}
		fmt.Fprintf(&sb, "<p>{ link(%s, %s) } <span class=\"blog-date\">[main site]</span></p>\n",
			directive.QuoteString(doc.ID), directive.QuoteString(doc.Title))
	}
	for _, entry := range b.entries {
		if entry.HasTag(tag) {
			sb.WriteString(b.entryLine(entry))
		}
	}
	return sb.String()
}
