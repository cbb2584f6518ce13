package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/risor-io/risor/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/loki/internal/blog"
	"git.home.luguber.info/inful/loki/internal/document"
	"git.home.luguber.info/inful/loki/internal/foundation/errors"
	"git.home.luguber.info/inful/loki/internal/site"
)

func newSite(t *testing.T) *site.Site {
	t.Helper()
	return site.New(site.Options{SourceRoot: t.TempDir(), DestRoot: t.TempDir()})
}

func TestSetAndGlobalDeclareSiteValues(t *testing.T) {
	s := newSite(t)
	r := NewRunner(s)

	err := r.RunSource(context.Background(), `
set("author", "Ada")
global("nav", ["home", "about"])
global("copy", get("author"))
`, "inline", PreLoad)
	require.NoError(t, err)

	v, ok := s.Attr("author")
	require.True(t, ok)
	assert.Equal(t, "Ada", v)
	v, _ = s.Attr("nav")
	assert.Equal(t, []any{"home", "about"}, v)
	v, _ = s.Attr("copy")
	assert.Equal(t, "Ada", v)
}

func TestHostBuiltinsReplaceRisorDefaults(t *testing.T) {
	s := newSite(t)

	err := NewRunner(s).RunSource(context.Background(), `set("n", len([1, 2, 3]))`, "inline", PostLoad)
	require.NoError(t, err)

	v, ok := s.Attr("n")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestBlogConfig(t *testing.T) {
	s := newSite(t)
	r := NewRunner(s)

	err := r.RunSource(context.Background(), `
blog_config({
  "directory": "entries",
  "main_title": "News",
  "tag_pages": true,
  "entries_per_page": 5
})
`, "inline", PreLoad)
	require.NoError(t, err)

	b, ok := s.Blog().(*blog.Blog)
	require.True(t, ok)
	assert.Equal(t, "entries", b.Config().Directory)
	assert.Equal(t, "News", b.Config().MainTitle)
	assert.True(t, b.Config().TagPages)
	assert.Equal(t, 5, b.Config().EntriesPerPage)
}

func TestBlogConfigRejectedAfterLoad(t *testing.T) {
	s := newSite(t)
	r := NewRunner(s)

	err := r.RunSource(context.Background(), `blog_config({"directory": "entries"})`, "config_load.risor", PostLoad)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryScript))
	assert.Contains(t, err.Error(), "error reading config_load.risor")
	assert.Nil(t, s.Blog())
}

func TestBlogConfigValidation(t *testing.T) {
	s := newSite(t)
	err := NewRunner(s).RunSource(context.Background(), `blog_config({"directory": 3})`, "inline", PreLoad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid type for directory")
}

func TestDocumentsAndTagCounts(t *testing.T) {
	s := newSite(t)
	doc := document.New(document.KindPage, "a", "dir", "a")
	doc.ID = "a"
	doc.Tags = []string{"go"}
	require.NoError(t, s.Add(doc))

	err := NewRunner(s).RunSource(context.Background(), `
docs := documents()
global("first_path", docs[0]["path"])
global("count", len(docs))
global("go_count", tag_counts()["go"])
`, "inline", PostLoad)
	require.NoError(t, err)

	v, _ := s.Attr("first_path")
	assert.Equal(t, "dir/a.html", v)
	v, _ = s.Attr("count")
	assert.Equal(t, 1, v)
	v, _ = s.Attr("go_count")
	assert.Equal(t, 1, v)
}

func TestRunMissingScriptIsNoop(t *testing.T) {
	s := newSite(t)
	require.NoError(t, NewRunner(s).Run(context.Background(), PreLoad))
}

func TestRunReadsScriptFromSourceRoot(t *testing.T) {
	s := newSite(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.SourceRoot(), "config_load.risor"), []byte(`global("loaded", true)`), 0o644))

	require.NoError(t, NewRunner(s).Run(context.Background(), PostLoad))
	v, _ := s.Attr("loaded")
	assert.Equal(t, true, v)
}

func TestScriptSyntaxError(t *testing.T) {
	s := newSite(t)
	err := NewRunner(s).RunSource(context.Background(), `set("x", `, "broken.risor", PreLoad)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryScript))
}

func TestValueConversion(t *testing.T) {
	m := object.NewMap(map[string]object.Object{
		"n":    object.NewInt(3),
		"list": object.NewList([]object.Object{object.NewString("a"), object.NewBool(true)}),
		"none": object.Nil,
	})
	v, err := toGo(m)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": 3, "list": []any{"a", true}, "none": nil}, v)

	back := fromGo(map[string]any{"n": 3})
	_, ok := back.(*object.Map)
	assert.True(t, ok)
	assert.Equal(t, object.Nil, fromGo(nil))
}
