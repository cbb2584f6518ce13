package blog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/loki/internal/document"
	"git.home.luguber.info/inful/loki/internal/foundation/errors"
	"git.home.luguber.info/inful/loki/internal/site"
	"git.home.luguber.info/inful/loki/internal/testutil"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func entry(id, date, tags string) string {
	return "id '" + id + "'\ntitle '" + id + " title'\ndate '" + date + "'\ntags " + tags + "\ndescription '" + id + " desc'\n--\n"
}

type fixture struct {
	site *site.Site
	blog *Blog
	src  string
	dst  string
}

func newFixture(t *testing.T, values map[string]any) *fixture {
	t.Helper()
	src, dst := t.TempDir(), t.TempDir()
	testutil.WriteFile(t, src, "entries/a.html", entry("a", "2024-01-01 10:00", "['go']")+"AAA\n")
	testutil.WriteFile(t, src, "entries/b.html", entry("b", "2024-02-01 10:00", "['go', 'web', 'go']")+"prev={blog_previous} next={blog_next}\n")
	testutil.WriteFile(t, src, "entries/c.html", entry("c", "2024-02-15 10:00", "[]")+"{blog_oldest('first')}\n")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "entries", "drafts"), 0o755))
	testutil.WriteFile(t, src, "views/about.html", "id 'about'\ntitle 'About'\ntags ['go']\n--\n{tag_sidebar}{rss_feed}\n")

	if _, ok := values["directory"]; !ok {
		values["directory"] = "entries"
	}
	cfg, err := ParseConfig(values)
	require.NoError(t, err)

	s := site.New(site.Options{SourceRoot: src, DestRoot: dst, Now: func() time.Time { return fixedNow }})
	b := New(cfg)
	require.NoError(t, s.SetBlog(b))
	_, err = s.AddPage("about.html")
	require.NoError(t, err)
	return &fixture{site: s, blog: b, src: src, dst: dst}
}

func ids(docs []*document.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestEntriesSortedNewestFirst(t *testing.T) {
	f := newFixture(t, map[string]any{})
	require.NoError(t, f.site.Register(context.Background()))

	assert.Equal(t, []string{"c", "b", "a"}, ids(f.blog.Entries()))
	assert.Equal(t, "blog/b.html", f.blog.Entries()[1].DestPath())
	assert.Equal(t, []string{"about", "blog"}, ids(f.site.Documents()))
}

func TestPagination(t *testing.T) {
	f := newFixture(t, map[string]any{"entries_per_page": 2, "main_title": "Blog"})
	require.NoError(t, f.site.Register(context.Background()))
	require.Equal(t, 2, f.blog.PageCount())

	docs := f.site.Documents()
	require.Equal(t, []string{"about", "blog", "blog-page2"}, ids(docs))

	assert.Equal(t,
		"<div class=\"blog-entry-list\">\n"+
			"<p>{ link(\"c\", \"c title\") } <span class=\"blog-date\">[2024-02-15 10:00]</span></p>\n"+
			"<p>{ link(\"b\", \"b title\") } <span class=\"blog-date\">[2024-02-01 10:00]</span></p>\n"+
			"</div>\n<div>&nbsp;</div>\n"+
			"<span class=\"next-blog-page\"><a href=\"page2.html\">next page [2]</a></span>\n",
		docs[1].Body)
	assert.Equal(t,
		"<div class=\"blog-entry-list\">\n"+
			"<p>{ link(\"a\", \"a title\") } <span class=\"blog-date\">[2024-01-01 10:00]</span></p>\n"+
			"</div>\n<div>&nbsp;</div>\n"+
			"<span class=\"prev-blog-page\"><a href=\"index.html\">prev page [1]</a></span>\n",
		docs[2].Body)
	assert.Equal(t, "blog/page2.html", docs[2].DestPath())

	require.NoError(t, f.site.Build(context.Background()))
	index := testutil.ReadFile(t, f.dst, "blog/index.html")
	assert.Contains(t, index, "<title>Blog</title>")
	assert.Contains(t, index, "<p><a href=\"c.html\">c title</a> <span class=\"blog-date\">[2024-02-15 10:00]</span></p>")
}

func TestEmptyBlog(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "entries"), 0o755))
	s := site.New(site.Options{SourceRoot: src, DestRoot: dst})
	b := New(Config{Directory: "entries", EntriesPerPage: 20, DateFormat: DefaultDateFormat})
	require.NoError(t, s.SetBlog(b))

	require.NoError(t, s.Register(context.Background()))
	assert.Equal(t, 1, b.PageCount())
	require.NoError(t, s.Build(context.Background()))
	assert.Equal(t, "<html>\n<body>\nNo blog entries yet.</body>\n</html>\n", testutil.ReadFile(t, dst, "blog/index.html"))
}

func TestNavigation(t *testing.T) {
	f := newFixture(t, map[string]any{})
	require.NoError(t, f.site.Register(context.Background()))
	require.NoError(t, f.site.Build(context.Background()))

	assert.Contains(t, testutil.ReadFile(t, f.dst, "blog/b.html"),
		"prev=<a href=\"a.html\">a title</a> next=<a href=\"c.html\">c title</a>\n")
	assert.Contains(t, testutil.ReadFile(t, f.dst, "blog/c.html"), "<a href=\"a.html\">first</a>\n")

	entries := f.blog.Entries()
	assert.Nil(t, f.blog.Next(entries[0]))
	assert.Nil(t, f.blog.Previous(entries[2]))
	assert.Equal(t, entries[2], f.blog.Oldest())
	assert.Equal(t, entries[0], f.blog.Newest())
}

func TestTagPagesListOnlyTaggedContent(t *testing.T) {
	f := newFixture(t, map[string]any{"tag_pages": true})
	require.NoError(t, f.site.Register(context.Background()))

	docs := f.site.Documents()
	require.Equal(t, []string{"about", "blog", "tag-go", "tag-web"}, ids(docs))
	goPage := docs[2]
	assert.Equal(t, "go tag", goPage.Title)
	assert.Equal(t, "blog/tags/go.html", goPage.DestPath())
	assert.Equal(t,
		"<span class=\"blog-filter\">Currently filtering on: <em>go</em></span>\n"+
			"<p>{ link(\"about\", \"About\") } <span class=\"blog-date\">[main site]</span></p>\n"+
			"<p>{ link(\"b\", \"b title\") } <span class=\"blog-date\">[2024-02-01 10:00]</span></p>\n"+
			"<p>{ link(\"a\", \"a title\") } <span class=\"blog-date\">[2024-01-01 10:00]</span></p>\n",
		goPage.Body)
	assert.NotContains(t, docs[3].Body, "link(\"a\"")

	require.NoError(t, f.site.Build(context.Background()))
	assert.Contains(t, testutil.ReadFile(t, f.dst, "blog/tags/go.html"), "<a href=\"../../about.html\">About</a>")
	assert.Contains(t, testutil.ReadFile(t, f.dst, "about.html"),
		"<div class=\"blog-tag-sidebar\">\n<ul>\n"+
			"<li><a href=\"blog/tags/go.html\">go (3)</a></li>\n"+
			"<li><a href=\"blog/tags/web.html\">web (1)</a></li>\n"+
			"</ul>\n</div>\n"+
			"<a href=\"blog/rss.xml\">RSS</a>")
}

func TestTagPageHrefsAreEscaped(t *testing.T) {
	f := newFixture(t, map[string]any{"tag_pages": true})
	testutil.WriteFile(t, f.src, "entries/d.html", entry("d", "2024-01-10 10:00", "['web dev']"))
	testutil.WriteFile(t, f.src, "views/links.html", "--\n{link('tag-web dev', 'wd')}\n{tag_sidebar}")
	_, err := f.site.AddPage("links.html")
	require.NoError(t, err)

	require.NoError(t, f.site.Register(context.Background()))
	require.NoError(t, f.site.Build(context.Background()))

	out := testutil.ReadFile(t, f.dst, "links.html")
	assert.Contains(t, out, "<a href=\"blog/tags/web%20dev.html\">wd</a>")
	assert.Contains(t, out, "<li><a href=\"blog/tags/web%20dev.html\">web dev (1)</a></li>")
	testutil.NewFileAssertions(t, f.dst).AssertFileExists("blog/tags/web dev.html")
}

func TestTagSidebarWithoutTagPages(t *testing.T) {
	f := newFixture(t, map[string]any{})
	require.NoError(t, f.site.Register(context.Background()))
	about := f.site.Documents()[0]

	assert.Equal(t, "<div class=\"blog-tag-sidebar\">\n<ul>\n<li>go (3)</li>\n<li>web (1)</li>\n</ul>\n</div>\n",
		f.blog.TagSidebar(f.site, about))
}

func TestDateSidebar(t *testing.T) {
	f := newFixture(t, map[string]any{})
	require.NoError(t, f.site.Register(context.Background()))
	b := f.blog.Entries()[1]

	html := f.blog.DateSidebar(b, fixedNow)
	assert.Contains(t, html, "function toggleDate(elem)")
	assert.Contains(t, html, `<span class="blog_date_expanded" style="float: left; width: 1em; cursor: pointer;" onclick="toggleDate(this);">&#9662;</span><span>2024</span>`)
	assert.Contains(t, html, `&#9662;</span><span>February</span>`+"\n        <ul style=\"list-style-type: none; display: block;\">\n"+
		"          <li style=\"clear: both;\"><a href=\"c.html\">c title</a></li>\n"+
		"          <li style=\"clear: both;\"><a href=\"b.html\">b title</a></li>\n")
	assert.Contains(t, html, `<span class="blog_date_collapsed" style="float: left; width: 1em; cursor: pointer;" onclick="toggleDate(this);">&#9656;</span><span>January</span>`+
		"\n        <ul style=\"list-style-type: none; display: none;\">\n")
}

func TestRSS(t *testing.T) {
	f := newFixture(t, map[string]any{
		"generate_rss": true,
		"main_title":   "News",
		"description":  "All the news",
		"site_link":    "https://example.com",
	})
	require.NoError(t, f.site.Register(context.Background()))
	require.NoError(t, f.site.Build(context.Background()))

	feed := testutil.ReadFile(t, f.dst, "blog/rss.xml")
	assert.Contains(t, feed, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, feed, `<rss version="2.0">`)
	assert.Contains(t, feed, "<title>News</title>")
	assert.Contains(t, feed, "<link>https://example.com/blog/c.html</link>")
	assert.Contains(t, feed, "<description>a desc</description>")
	assert.Contains(t, feed, "<lastBuildDate>"+fixedNow.Format(time.RFC1123Z)+"</lastBuildDate>")
	assert.Contains(t, f.site.Written(), FeedPath)
}

func TestRSSRequiresSiteLink(t *testing.T) {
	src := t.TempDir()
	s := site.New(site.Options{SourceRoot: src, DestRoot: t.TempDir()})
	b := New(Config{Directory: "missing", GenerateRSS: true, MainTitle: "t", Description: "d", EntriesPerPage: 20})
	require.NoError(t, s.SetBlog(b))

	err := s.Register(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	assert.Contains(t, err.Error(), "must supply site_link when generating RSS")
}

func TestRSSRequiresEntryDescriptions(t *testing.T) {
	src := t.TempDir()
	testutil.WriteFile(t, src, "entries/a.html", "id 'a'\ntitle 'A'\ndate '2024-01-01'\n--\nx\n")
	s := site.New(site.Options{SourceRoot: src, DestRoot: t.TempDir()})
	b := New(Config{Directory: "entries", GenerateRSS: true, MainTitle: "t", Description: "d", SiteLink: "l", EntriesPerPage: 20})
	require.NoError(t, s.SetBlog(b))

	err := s.Register(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must supply descriptions for entries when generating RSS")
}

func TestEntryRequirements(t *testing.T) {
	tests := []struct {
		name, content, want string
	}{
		{"missing date", "id 'x'\ntitle 'X'\n--\n", "all blog entries must have a date"},
		{"missing id", "title 'X'\ndate '2024-01-01'\n--\n", "all blog entries must have an id"},
		{"bad date", "id 'x'\ntitle 'X'\ndate 'soon'\n--\n", "invalid date 'soon'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := t.TempDir()
			testutil.WriteFile(t, src, "entries/x.html", tt.content)
			s := site.New(site.Options{SourceRoot: src, DestRoot: t.TempDir()})
			require.NoError(t, s.SetBlog(New(Config{Directory: "entries", EntriesPerPage: 20})))

			err := s.Register(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDuplicateIDBetweenPageAndEntry(t *testing.T) {
	f := newFixture(t, map[string]any{})
	testutil.WriteFile(t, f.src, "entries/dup.html", entry("about", "2024-01-05", "[]"))

	err := f.site.Register(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryRegistration))
	assert.Contains(t, err.Error(), "error loading blog entry: duplicate id 'about'")
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(map[string]any{"directory": "posts", "tag_pages": true})
	require.NoError(t, err)
	assert.Equal(t, "posts", cfg.Directory)
	assert.True(t, cfg.TagPages)
	assert.Equal(t, DefaultEntriesPerPage, cfg.EntriesPerPage)
	assert.Equal(t, DefaultDateFormat, cfg.DateFormat)

	_, err = ParseConfig(map[string]any{"colour": "red"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid parameter 'colour'")

	_, err = ParseConfig(map[string]any{"tag_pages": "yes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid type for tag_pages: expecting boolean, got 'yes'")

	_, err = ParseConfig(map[string]any{"entries_per_page": 0})
	require.Error(t, err)
}

func TestMissingDirectory(t *testing.T) {
	s := site.New(site.Options{SourceRoot: t.TempDir(), DestRoot: t.TempDir()})
	require.NoError(t, s.SetBlog(New(Config{EntriesPerPage: 20})))

	err := s.Register(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must supply a directory with blog entries when using blog_config")
}
