package manual

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

func outline() []any {
	return []any{"manual", "intro",
		[]any{"sec1", "1 text"},
		[]any{"sec2", "2 text"},
		[]any{"sec3", "3 text",
			[]any{"subsec", "subsec text"},
			[]any{"other", "other text"},
		},
	}
}

func identity(src, _ string) (string, error) { return src, nil }

func TestNew_AssignsPreOrderIndices(t *testing.T) {
	m, err := New(outline())
	require.NoError(t, err)

	var got []string
	var walk func([]*Section)
	walk = func(ss []*Section) {
		for _, s := range ss {
			got = append(got, s.Index)
			walk(s.Children)
		}
	}
	walk(m.Sections)

	assert.Equal(t, "manual", m.Name)
	assert.Equal(t, "intro", m.Introduction)
	assert.Equal(t, []string{"2", "3", "4", "4.1", "4.2"}, got)
}

func TestNew_RejectsMalformedOutlines(t *testing.T) {
	for name, data := range map[string][]any{
		"too short":       {"manual"},
		"non-string name": {1, "intro"},
		"section scalar":  {"m", "i", "sec"},
		"section short":   {"m", "i", []any{"only name"}},
		"nested bad body": {"m", "i", []any{"s", "b", []any{"c", 3}}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := New(data)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
		})
	}
}

func TestIndex(t *testing.T) {
	m, err := New(outline())
	require.NoError(t, err)

	for path, want := range map[string]string{
		"Introduction": "1",
		"sec2":         "3",
		"sec3|other":   "4.2",
		"sec3":         "4",
	} {
		got, err := m.Index(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err = m.Index("sec3|missing")
	require.Error(t, err)
	assert.Equal(t, "[reference] error resolving manual reference: sec3|missing not found", err.Error())
	assert.True(t, errors.HasCategory(err, errors.CategoryReference))
}

func TestRender(t *testing.T) {
	m, err := New(outline())
	require.NoError(t, err)

	span := "<li>" + ToggleSpan(false) + "<a href=\"#"
	selSpan := "<li>" + ToggleSpan(true) + "<a href=\"#"
	want := strings.Join([]string{
		`<h1><span id="1"></span>manual</h1>`,
		`intro`,
		`<h1 id="toc-anchor">Table of Contents</h1>`,
		ToggleScript(),
		`<ul class="toc">`,
		span + `1"><span>1</span> Introduction</a></li>`,
		span + `2"><span>2</span> sec1</a></li>`,
		span + `3"><span>3</span> sec2</a></li>`,
		selSpan + `4"><span>4</span> sec3</a>`,
		`<ul style="display: none;">`,
		span + `4.1"><span>4.1</span> subsec</a></li>`,
		span + `4.2"><span>4.2</span> other</a></li>`,
		`</ul>`,
		`</li>`,
		`</ul>`,
		`<h2><a href="#toc-anchor"><span id="2">2</span> sec1</a></h2>`,
		`1 text`,
		`<h2><a href="#toc-anchor"><span id="3">3</span> sec2</a></h2>`,
		`2 text`,
		`<h2><a href="#toc-anchor"><span id="4">4</span> sec3</a></h2>`,
		`3 text`,
		`<h3><a href="#toc-anchor"><span id="4.1">4.1</span> subsec</a></h3>`,
		`subsec text`,
		`<h3><a href="#toc-anchor"><span id="4.2">4.2</span> other</a></h3>`,
		`other text`,
	}, "\n") + "\n"

	got, err := m.Render("views/page", identity)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRender_LabelsAndErrors(t *testing.T) {
	m, err := New(outline())
	require.NoError(t, err)

	var labels []string
	_, err = m.Render("views/page", func(src, label string) (string, error) {
		labels = append(labels, label)
		return src, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "views/page manual section 1 Introduction", labels[0])
	assert.Equal(t, "views/page manual section 4.2 other", labels[len(labels)-1])

	_, err = m.Render("views/page", func(src, label string) (string, error) {
		if strings.Contains(label, "4.1") {
			return "", errors.ReferenceError("invalid directive 'x'").Build()
		}
		return src, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid directive 'x'")
}

func TestToggleScriptFor(t *testing.T) {
	script := ToggleScriptFor("toggleDate", "blog_date_collapsed", "blog_date_expanded")
	assert.True(t, strings.HasPrefix(script, "<script type=\"text/javascript\">\nfunction toggleDate(elem) {\n"))
	assert.Contains(t, script, "if (html_class == 'blog_date_collapsed') {\n    elem.className = 'blog_date_expanded';")
	assert.True(t, strings.HasSuffix(script, "}\n</script>\n"))
}
