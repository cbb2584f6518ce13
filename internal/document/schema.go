package document

import (
	"git.home.luguber.info/inful/loki/internal/directive"
	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

// FieldType is the declared type of a header field.
type FieldType string

const (
	TypeString       FieldType = "string"
	TypeStringArray  FieldType = "string_array"
	TypeBoolean      FieldType = "boolean"
	TypeInteger      FieldType = "integer"
	TypeFaviconArray FieldType = "favicon_array"
)

// Field declares one schema entry.
type Field struct {
	Name string
	Type FieldType
}

// Schema is an ordered list of typed fields.
type Schema []Field

// Lookup returns the named field.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks every value against its declared type, in schema order. Missing values
// are not errors.
func (s Schema) Validate(values map[string]any) error {
	for _, f := range s {
		if err := Validate(f.Name, values[f.Name], f.Type); err != nil {
			return err
		}
	}
	return nil
}

var common = Schema{
	{"id", TypeString},
	{"title", TypeString},
	{"tags", TypeStringArray},
	{"date", TypeString},
	{"description", TypeString},
	{"format", TypeString},
}

// PageFields are the header fields of ordinary pages.
var PageFields = append(append(Schema{}, common...),
	Field{"template", TypeString},
	Field{"css", TypeStringArray},
	Field{"javascript", TypeStringArray},
	Field{"favicon", TypeFaviconArray},
	Field{"head", TypeString},
)

// EntryFields are the header fields of blog entries. Presentation comes from the blog
// configuration.
var EntryFields = append(Schema{}, common...)

// SchemaFor returns the header schema of kind.
func SchemaFor(kind Kind) Schema {
	if kind == KindEntry {
		return EntryFields
	}
	return PageFields
}

// Validate checks a single value. A nil value is always valid.
func Validate(param string, value any, t FieldType) error {
	if value == nil {
		return nil
	}
	switch t {
	case TypeString:
		if _, ok := value.(string); !ok {
			return directive.TypeError(param, value, string(t))
		}
	case TypeInteger:
		if _, ok := value.(int); !ok {
			return directive.TypeError(param, value, string(t))
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return directive.TypeError(param, value, string(t))
		}
	case TypeStringArray:
		items, ok := value.([]any)
		if !ok {
			return directive.TypeError(param, value, string(t))
		}
		for _, item := range items {
			if _, ok := item.(string); !ok {
				return directive.TypeError("tag", item, "string")
			}
		}
	case TypeFaviconArray:
		items, ok := value.([]any)
		if !ok {
			return directive.TypeError(param, value, string(t))
		}
		for _, item := range items {
			if err := validateFavicon(item); err != nil {
				return err
			}
		}
	default:
		return errors.InternalError("undefined metadata type %s", t).Build()
	}
	return nil
}

func validateFavicon(item any) error {
	spec, ok := item.([]any)
	if !ok || len(spec) != 3 {
		return directive.TypeError("favicon spec", item, "array")
	}
	if _, ok := spec[0].(int); !ok {
		return directive.TypeError("favicon size", spec[0], "integer")
	}
	if _, ok := spec[1].(string); !ok {
		return directive.TypeError("favicon type", spec[1], "string")
	}
	if _, ok := spec[2].(string); !ok {
		return directive.TypeError("favicon path", spec[2], "string")
	}
	return nil
}

// Apply copies validated header values onto the document's typed fields.
func (d *Document) Apply(values map[string]any) {
	for name, v := range values {
		switch name {
		case "id":
			d.ID = v.(string)
		case "title":
			d.Title = v.(string)
		case "date":
			d.Date = v.(string)
		case "template":
			d.Template = v.(string)
		case "head":
			d.Head = v.(string)
		case "format":
			d.Format = v.(string)
		case "description":
			d.Description = v.(string)
		case "tags":
			d.Tags = Strings(v)
		case "css":
			d.CSS = Strings(v)
		case "javascript":
			d.JavaScript = Strings(v)
		case "favicon":
			d.Favicons = Favicons(v)
		}
	}
}

// Strings converts a validated string_array value.
func Strings(v any) []string {
	items, _ := v.([]any)
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.(string)
	}
	return out
}

// Favicons converts a validated favicon_array value.
func Favicons(v any) []Favicon {
	items, _ := v.([]any)
	if items == nil {
		return nil
	}
	out := make([]Favicon, len(items))
	for i, item := range items {
		spec := item.([]any)
		out[i] = Favicon{Size: spec[0].(int), Rel: spec[1].(string), Path: spec[2].(string)}
	}
	return out
}
