package directive

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

// Args holds evaluated call arguments. Keyword arguments arrive as a trailing map.
type Args []any

// Expect checks the argument count for the named operation.
func (a Args) Expect(op string, lo, hi int) error {
	if len(a) < lo || len(a) > hi {
		want := strconv.Itoa(lo)
		if hi != lo {
			want = fmt.Sprintf("%d..%d", lo, hi)
		}
		return errors.ValidationError("wrong number of arguments for '%s' (given %d, expected %s)", op, len(a), want).Build()
	}
	return nil
}

// Get returns argument i or nil if absent.
func (a Args) Get(i int) any {
	if i < len(a) {
		return a[i]
	}
	return nil
}

// String returns argument i, which must be a string.
func (a Args) String(i int, name string) (string, error) {
	s, ok := a.Get(i).(string)
	if !ok {
		return "", TypeError(name, a.Get(i), "string")
	}
	return s, nil
}

// Text returns argument i converted to text, or def when absent or nil.
func (a Args) Text(i int, def string) string {
	if v := a.Get(i); v != nil {
		return ToString(v)
	}
	return def
}

// Options returns argument i as an option map. An absent argument yields an empty map.
func (a Args) Options(i int) (map[string]any, error) {
	switch v := a.Get(i).(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, TypeError("options", v, "map")
	}
}

// TypeError reports a value of the wrong type.
func TypeError(param string, value any, want string) error {
	return errors.ValidationError("invalid type for %s: expecting %s, got '%s'", param, want, ToString(value)).Build()
}

// ToString converts an evaluated value to the text spliced into output.
func ToString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = ToString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		return "[" + strings.Join(v, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + ToString(v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}

// Truthy reports whether v counts as set: anything but nil and false.
func Truthy(v any) bool {
	b, isBool := v.(bool)
	return v != nil && (!isBool || b)
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "}", "}}")

// QuoteString renders s as a string literal that can be embedded inside a directive.
func QuoteString(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}

// EscapeLiteral escapes s so it passes through a render unchanged.
func EscapeLiteral(s string) string {
	return strings.ReplaceAll(s, "{", "{{")
}

// Attributes renders the id, class and style options as HTML attributes, in that order.
func Attributes(opts map[string]any) string {
	var b strings.Builder
	for _, name := range []string{"id", "class", "style"} {
		if v, ok := opts[name]; ok && Truthy(v) {
			fmt.Fprintf(&b, ` %s="%s"`, name, ToString(v))
		}
	}
	return b.String()
}
