// Package metadata splits source documents into header and body and evaluates header
// statements against the document's field schema.
package metadata

import (
	"strings"

	"git.home.luguber.info/inful/loki/internal/directive"
	"git.home.luguber.info/inful/loki/internal/document"
	"git.home.luguber.info/inful/loki/internal/foundation/errors"
	"git.home.luguber.info/inful/loki/internal/manual"
)

// Separator terminates the header when it appears alone on a line.
const Separator = "--"

// Site is the site-wide state reachable from headers.
type Site interface {
	directive.Object
	SetGlobal(key string, value any)
}

// Split returns the header and body of raw. Without a separator line the whole input is
// body. CRLF line endings are normalized to LF.
func Split(raw string) (header, body string, found bool) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	if strings.HasPrefix(raw, Separator+"\n") {
		return "", raw[len(Separator)+1:], true
	}
	marker := "\n" + Separator + "\n"
	i := strings.Index(raw, marker)
	if i < 0 {
		return "", raw, false
	}
	return raw[:i], raw[i+len(marker):], true
}

// Load splits raw, evaluates its header into doc and stores the body.
func Load(doc *document.Document, raw string, site Site) error {
	header, body, found := Split(raw)
	doc.Body = body
	if !found {
		return nil
	}
	return Evaluate(doc, header, site)
}

// Evaluate runs header statements against doc. Schema fields are validated only after
// every statement ran; the error names the offending field.
func Evaluate(doc *document.Document, header string, site Site) error {
	stmts, err := directive.Parse(header)
	if err != nil {
		line, _ := directive.ErrorLine(err)
		return errors.Locate(err, doc.Label, line)
	}

	env := &headerEnv{
		doc:    doc,
		site:   site,
		schema: document.SchemaFor(doc.Kind),
		values: make(map[string]any),
		lines:  make(map[string]int),
	}
	for _, stmt := range stmts {
		env.line = stmt.Line
		if _, err := directive.Eval(stmt.Expr, env); err != nil {
			return errors.Locate(err, doc.Label, stmt.Line)
		}
	}

	for _, f := range env.schema {
		if err := document.Validate(f.Name, env.values[f.Name], f.Type); err != nil {
			return errors.Locate(err, doc.Label, env.lines[f.Name])
		}
	}
	doc.Apply(env.values)
	return nil
}

type headerEnv struct {
	doc    *document.Document
	site   Site
	schema document.Schema
	values map[string]any
	lines  map[string]int
	line   int
}

func (e *headerEnv) Lookup(name string) (any, bool) {
	switch name {
	case "page":
		return pageView{e}, true
	case "site":
		if e.site == nil {
			return nil, true
		}
		return e.site, true
	}
	return nil, false
}

func (e *headerEnv) Call(name string, args directive.Args) (any, error) {
	if f, ok := e.schema.Lookup(name); ok {
		return e.assign(f.Name, args)
	}
	switch name {
	case "set":
		if err := args.Expect("set", 2, 2); err != nil {
			return nil, err
		}
		key, err := args.String(0, "key")
		if err != nil {
			return nil, err
		}
		if _, ok := e.schema.Lookup(key); ok {
			return e.assign(key, args[1:])
		}
		e.doc.Set(key, args[1])
		return nil, nil
	case "global":
		if err := args.Expect("global", 2, 2); err != nil {
			return nil, err
		}
		key, err := args.String(0, "key")
		if err != nil {
			return nil, err
		}
		if e.site == nil {
			return nil, errors.InternalError("no site available for global '%s'", key).Build()
		}
		e.site.SetGlobal(key, args[1])
		return nil, nil
	case "manual_data":
		if e.doc.Kind != document.KindPage {
			break
		}
		if err := args.Expect("manual_data", 1, 1); err != nil {
			return nil, err
		}
		outline, ok := args[0].([]any)
		if !ok {
			return nil, directive.TypeError("manual_data", args[0], "array")
		}
		m, err := manual.New(outline)
		if err != nil {
			return nil, err
		}
		e.doc.Manual = m
		return nil, nil
	}
	return nil, errors.ValidationError("invalid parameter '%s'", name).Build()
}

// assign records a field value; nil leaves the field unset. Without an argument the
// current value is returned.
func (e *headerEnv) assign(name string, args directive.Args) (any, error) {
	if err := args.Expect(name, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		v, _ := pageView{e}.Attr(name)
		return v, nil
	}
	if args[0] != nil {
		e.values[name] = args[0]
		e.lines[name] = e.line
	}
	return nil, nil
}

// pageView exposes pending header values ahead of the document's applied fields.
type pageView struct {
	env *headerEnv
}

func (p pageView) Attr(name string) (any, bool) {
	if v, ok := p.env.values[name]; ok {
		return v, true
	}
	return p.env.doc.Attr(name)
}
