package directive

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

// Builtins returns the operations every renderer supports.
func Builtins() Table {
	return Table{
		"body":     opBody,
		"include":  opInclude,
		"link_abs": opLinkAbs,
		"table":    opTable,
	}
}

func opBody(r *Renderer, args Args) (any, error) {
	if err := args.Expect("body", 0, 0); err != nil {
		return nil, err
	}
	if r.mode == ModeBody {
		return nil, errors.ReferenceError("attempt to include body outside of template").Build()
	}
	return r.RenderBody()
}

func opInclude(r *Renderer, args Args) (any, error) {
	if err := args.Expect("include", 1, 1); err != nil {
		return nil, err
	}
	name, err := args.String(0, "include path")
	if err != nil {
		return nil, err
	}
	return r.Include(name)
}

func opLinkAbs(_ *Renderer, args Args) (any, error) {
	if err := args.Expect("link_abs", 2, 3); err != nil {
		return nil, err
	}
	opts, err := args.Options(2)
	if err != nil {
		return nil, err
	}
	return Anchor(args.Text(0, ""), args.Text(1, ""), opts), nil
}

// Anchor renders `<a href="url" ...>text</a>`.
func Anchor(url, text string, opts map[string]any) string {
	return fmt.Sprintf(`<a href="%s"%s>%s</a>`, url, Attributes(opts), text)
}

func opTable(_ *Renderer, args Args) (any, error) {
	if err := args.Expect("table", 1, 2); err != nil {
		return nil, err
	}
	opts, err := args.Options(1)
	if err != nil {
		return nil, err
	}
	rows, ok := args.Get(0).([]any)
	if !ok {
		return nil, errors.ValidationError("table data must be an array").Build()
	}

	var b strings.Builder
	b.WriteString("<table" + Attributes(opts) + ">\n")
	for _, row := range rows {
		cells, ok := row.([]any)
		if !ok {
			return nil, errors.ValidationError("rows of table data must all be arrays").Build()
		}
		b.WriteString("  <tr>\n")
		for _, cell := range cells {
			b.WriteString("    <td>" + ToString(cell) + "</td>\n")
		}
		b.WriteString("  </tr>\n")
	}
	b.WriteString("</table>\n")
	return b.String(), nil
}
