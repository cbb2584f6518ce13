package script

import (
	"context"
	"fmt"

	"github.com/risor-io/risor/object"

	"git.home.luguber.info/inful/loki/internal/blog"
	"git.home.luguber.info/inful/loki/internal/document"
)

// makeSetFn creates "set" and "global"; both declare a site-wide value.
//
// set(key, value)
func (r *Runner) makeSetFn(name string) *object.Builtin {
	return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError(name, 2, len(args))
		}
		key, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("%s: key must be a string, got %s", name, args[0].Type())
		}
		value, err := toGo(args[1])
		if err != nil {
			return object.Errorf("%s: %v", name, err)
		}
		r.site.SetGlobal(key.Value(), value)
		return object.Nil
	})
}

// makeGetFn creates "get".
//
// get(key) → value or nil
func (r *Runner) makeGetFn() *object.Builtin {
	return object.NewBuiltin("get", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("get", 1, len(args))
		}
		key, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("get: key must be a string, got %s", args[0].Type())
		}
		v, _ := r.site.Attr(key.Value())
		return fromGo(v)
	})
}

// makeBlogConfigFn creates "blog_config".
//
// blog_config({directory: "entries", ...})
func (r *Runner) makeBlogConfigFn(phase Phase) *object.Builtin {
	return object.NewBuiltin("blog_config", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("blog_config", 1, len(args))
		}
		if phase != PreLoad {
			return object.Errorf("blog_config: the blog must be configured in %s", PreLoad.File())
		}
		raw, err := toGo(args[0])
		if err != nil {
			return object.Errorf("blog_config: %v", err)
		}
		values, ok := raw.(map[string]any)
		if !ok {
			return object.Errorf("blog_config: expected map, got %s", args[0].Type())
		}
		cfg, err := blog.ParseConfig(values)
		if err != nil {
			return object.Errorf("blog_config: %v", err)
		}
		if err := r.site.SetBlog(blog.New(cfg)); err != nil {
			return object.Errorf("blog_config: %v", err)
		}
		r.logger.Info("Configured blog", "directory", cfg.Directory)
		return object.Nil
	})
}

// makeDocumentsFn creates "documents".
//
// documents() → [{id, title, path, kind, date, tags}]
func (r *Runner) makeDocumentsFn() *object.Builtin {
	return object.NewBuiltin("documents", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("documents", 0, len(args))
		}
		docs := r.site.Documents()
		results := make([]object.Object, 0, len(docs))
		for _, doc := range docs {
			results = append(results, documentMap(doc))
		}
		return object.NewList(results)
	})
}

func documentMap(doc *document.Document) object.Object {
	tags := make([]object.Object, len(doc.Tags))
	for i, tag := range doc.Tags {
		tags[i] = object.NewString(tag)
	}
	return object.NewMap(map[string]object.Object{
		"id":    object.NewString(doc.ID),
		"title": object.NewString(doc.Title),
		"path":  object.NewString(doc.DestPath()),
		"kind":  object.NewString(string(doc.Kind)),
		"date":  object.NewString(doc.Date),
		"tags":  object.NewList(tags),
	})
}

// makeTagCountsFn creates "tag_counts".
//
// tag_counts() → {tag: count}
func (r *Runner) makeTagCountsFn() *object.Builtin {
	return object.NewBuiltin("tag_counts", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("tag_counts", 0, len(args))
		}
		m := make(map[string]object.Object)
		for tag, n := range r.site.TagCounts() {
			m[tag] = object.NewInt(int64(n))
		}
		return object.NewMap(m)
	})
}

// toGo converts a script value to the value model shared with headers and directives.
func toGo(obj object.Object) (any, error) {
	switch v := obj.(type) {
	case nil, *object.NilType:
		return nil, nil
	case *object.String:
		return v.Value(), nil
	case *object.Int:
		return int(v.Value()), nil
	case *object.Float:
		return v.Value(), nil
	case *object.Bool:
		return v.Value(), nil
	case *object.List:
		items := v.Value()
		out := make([]any, len(items))
		for i, item := range items {
			x, err := toGo(item)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case *object.Map:
		out := make(map[string]any)
		for k, item := range v.Value() {
			x, err := toGo(item)
			if err != nil {
				return nil, err
			}
			out[k] = x
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value of type %s", obj.Type())
}

// fromGo converts a site value back into a script value.
func fromGo(v any) object.Object {
	switch x := v.(type) {
	case nil:
		return object.Nil
	case string:
		return object.NewString(x)
	case int:
		return object.NewInt(int64(x))
	case float64:
		return object.NewFloat(x)
	case bool:
		return object.NewBool(x)
	case []string:
		items := make([]object.Object, len(x))
		for i, s := range x {
			items[i] = object.NewString(s)
		}
		return object.NewList(items)
	case []any:
		items := make([]object.Object, len(x))
		for i, item := range x {
			items[i] = fromGo(item)
		}
		return object.NewList(items)
	case map[string]any:
		m := make(map[string]object.Object, len(x))
		for k, item := range x {
			m[k] = fromGo(item)
		}
		return object.NewMap(m)
	}
	return object.NewString(fmt.Sprint(v))
}
