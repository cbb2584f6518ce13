package blog

import (
	"git.home.luguber.info/inful/loki/internal/document"
	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

const (
	// DefaultEntriesPerPage is the index page size when none is configured.
	DefaultEntriesPerPage = 20
	// DefaultDateFormat is the strftime layout of index and tag page dates.
	DefaultDateFormat = "%Y-%m-%d %H:%M"
	// MaxFeedItems caps the RSS feed.
	MaxFeedItems = 20
)

// ConfigFields is the schema of blog_config.
var ConfigFields = document.Schema{
	{Name: "directory", Type: document.TypeString},
	{Name: "main_title", Type: document.TypeString},
	{Name: "main_template", Type: document.TypeString},
	{Name: "entry_template", Type: document.TypeString},
	{Name: "css", Type: document.TypeStringArray},
	{Name: "javascript", Type: document.TypeStringArray},
	{Name: "favicon", Type: document.TypeFaviconArray},
	{Name: "head", Type: document.TypeString},
	{Name: "tag_pages", Type: document.TypeBoolean},
	{Name: "generate_rss", Type: document.TypeBoolean},
	{Name: "main_date_format", Type: document.TypeString},
	{Name: "description", Type: document.TypeString},
	{Name: "site_link", Type: document.TypeString},
	{Name: "entries_per_page", Type: document.TypeInteger},
}

// Config is a validated blog configuration.
type Config struct {
	Directory      string
	MainTitle      string
	MainTemplate   string
	EntryTemplate  string
	CSS            []string
	JavaScript     []string
	Favicons       []document.Favicon
	Head           string
	TagPages       bool
	GenerateRSS    bool
	DateFormat     string
	Description    string
	SiteLink       string
	EntriesPerPage int
}

// ParseConfig validates values against ConfigFields and applies defaults.
func ParseConfig(values map[string]any) (Config, error) {
	for key := range values {
		if _, ok := ConfigFields.Lookup(key); !ok {
			return Config{}, errors.ValidationError("invalid parameter '%s'", key).Build()
		}
	}
	if err := ConfigFields.Validate(values); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Directory:      str(values["directory"]),
		MainTitle:      str(values["main_title"]),
		MainTemplate:   str(values["main_template"]),
		EntryTemplate:  str(values["entry_template"]),
		CSS:            document.Strings(values["css"]),
		JavaScript:     document.Strings(values["javascript"]),
		Favicons:       document.Favicons(values["favicon"]),
		Head:           str(values["head"]),
		TagPages:       values["tag_pages"] == true,
		GenerateRSS:    values["generate_rss"] == true,
		DateFormat:     str(values["main_date_format"]),
		Description:    str(values["description"]),
		SiteLink:       str(values["site_link"]),
		EntriesPerPage: DefaultEntriesPerPage,
	}
	if n, ok := values["entries_per_page"].(int); ok {
		if n < 1 {
			return Config{}, errors.ValidationError("entries_per_page must be positive, got %d", n).Build()
		}
		cfg.EntriesPerPage = n
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = DefaultDateFormat
	}
	return cfg, nil
}

// validate reports configuration required before any entry is loaded.
func (c Config) validate() error {
	if c.Directory == "" {
		return errors.ConfigError("must supply a directory with blog entries when using blog_config").Build()
	}
	if !c.GenerateRSS {
		return nil
	}
	for _, req := range []struct{ name, value string }{
		{"main_title", c.MainTitle},
		{"description", c.Description},
		{"site_link", c.SiteLink},
	} {
		if req.value == "" {
			return errors.ConfigError("must supply %s when generating RSS", req.name).Build()
		}
	}
	return nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
