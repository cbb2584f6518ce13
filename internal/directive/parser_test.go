package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

// recordEnv records calls and echoes their arguments.
type recordEnv struct {
	vars  map[string]any
	calls []string
}

func (e *recordEnv) Lookup(name string) (any, bool) {
	v, ok := e.vars[name]
	return v, ok
}

func (e *recordEnv) Call(name string, args Args) (any, error) {
	e.calls = append(e.calls, name)
	if name == "fail" {
		return nil, errors.ReferenceError("invalid directive '%s'", name).Build()
	}
	return []any(args), nil
}

type attrs map[string]any

func (a attrs) Attr(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}

func evalString(t *testing.T, src string, env Env) any {
	t.Helper()
	stmts, err := Parse(src)
	require.NoError(t, err)
	v, err := EvalAll(stmts, env)
	require.NoError(t, err)
	return v
}

func TestParse_Literals(t *testing.T) {
	env := &recordEnv{}
	tests := []struct {
		src  string
		want any
	}{
		{`"hello"`, "hello"},
		{`'it\'s'`, "it's"},
		{`"a\nb"`, "a\nb"},
		{`42`, 42},
		{`-7`, -7},
		{`1.5`, 1.5},
		{`true`, true},
		{`false`, false},
		{`nil`, nil},
		{`:sym`, "sym"},
		{`["a", 1, [true]]`, []any{"a", 1, []any{true}}},
		{`{class: "x", "data": 2, :style => "s",}`, map[string]any{"class": "x", "data": 2, "style": "s"}},
		{`[]`, []any{}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, evalString(t, tt.src, env))
		})
	}
}

func TestParse_Calls(t *testing.T) {
	t.Run("parenthesized with keywords", func(t *testing.T) {
		env := &recordEnv{}
		v := evalString(t, `link("id", "text", class: "nav", append: "#top")`, env)
		assert.Equal(t, []any{"id", "text", map[string]any{"class": "nav", "append": "#top"}}, v)
		assert.Equal(t, []string{"link"}, env.calls)
	})

	t.Run("command form", func(t *testing.T) {
		env := &recordEnv{}
		v := evalString(t, `tags ['a', 'b']`, env)
		assert.Equal(t, []any{[]any{"a", "b"}}, v)
	})

	t.Run("bare identifier is a zero argument call", func(t *testing.T) {
		env := &recordEnv{}
		v := evalString(t, ` body `, env)
		assert.Empty(t, v)
		assert.Equal(t, []string{"body"}, env.calls)
	})

	t.Run("bare identifier prefers variables", func(t *testing.T) {
		env := &recordEnv{vars: map[string]any{"page": attrs{"title": "Home"}}}
		assert.Equal(t, "Home", evalString(t, `page.title`, env))
		assert.Empty(t, env.calls)
	})

	t.Run("multi-line statements", func(t *testing.T) {
		env := &recordEnv{}
		stmts, err := Parse("id 'a'\n\ntitle(\n  'b'\n); tags ['x']\n")
		require.NoError(t, err)
		require.Len(t, stmts, 3)
		assert.Equal(t, 1, stmts[0].Line)
		assert.Equal(t, 3, stmts[1].Line)
		assert.Equal(t, 5, stmts[2].Line)
		_, err = EvalAll(stmts, env)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "title", "tags"}, env.calls)
	})

	t.Run("comments are ignored", func(t *testing.T) {
		stmts, err := Parse("# heading\nid 'a' # trailing\n")
		require.NoError(t, err)
		assert.Len(t, stmts, 1)
	})

	t.Run("empty source has no statements", func(t *testing.T) {
		stmts, err := Parse("  \n ")
		require.NoError(t, err)
		assert.Empty(t, stmts)
	})
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{
		`"unterminated`,
		`a + b`,
		`link("a" "b")`,
		`page.title()`,
		`f(a: 1, 2)`,
		`[1, 2`,
		`{1}`,
	} {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryParse), "got %v", err)
		})
	}
}

func TestEval_Fields(t *testing.T) {
	env := &recordEnv{vars: map[string]any{
		"site": attrs{"meta": map[string]any{"author": "ann"}},
	}}

	assert.Equal(t, "ann", evalString(t, `site.meta.author`, env))
	assert.Nil(t, evalString(t, `site.meta.missing`, env))

	stmts, err := Parse(`site.nope`)
	require.NoError(t, err)
	_, err = EvalAll(stmts, env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined field 'nope'")
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "3", ToString(3))
	assert.Equal(t, "2.5", ToString(2.5))
	assert.Equal(t, "true", ToString(true))
	assert.Equal(t, "[a, 1]", ToString([]any{"a", 1}))
	assert.Equal(t, "{a: 1, b: x}", ToString(map[string]any{"b": "x", "a": 1}))
}

func TestErrorLine(t *testing.T) {
	_, err := Parse("id 'a'\ntitle 'b'\ntags [1,\n")
	require.Error(t, err)
	line, ok := ErrorLine(err)
	require.True(t, ok)
	assert.Equal(t, 4, line)
}
