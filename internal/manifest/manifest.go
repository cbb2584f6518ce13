// Package manifest expands the list of views a site is made of, either from
// <source>/manifest.json or by walking <source>/views.
package manifest

import (
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

const (
	// FileName is the optional manifest in the source root.
	FileName = "manifest.json"
	// ViewsDir holds the page sources.
	ViewsDir = "views"
)

// CheckSource validates a source directory.
func CheckSource(source string) error {
	if !isDir(source) {
		return errors.ConfigError("source path must exist: %s", source).Build()
	}
	if !isDir(filepath.Join(source, ViewsDir)) {
		return errors.ConfigError("source path must contain a %s directory", ViewsDir).Build()
	}
	return nil
}

// CheckPaths validates the source and destination directories of a build.
func CheckPaths(source, dest string) error {
	if !isDir(source) {
		return errors.ConfigError("source path must exist: %s", source).Build()
	}
	if !isDir(dest) {
		return errors.ConfigError("destination path must exist: %s", dest).Build()
	}
	src, err := filepath.Abs(source)
	if err != nil {
		return errors.FileSystemError(err, "cannot resolve %s", source).Build()
	}
	dst, err := filepath.Abs(dest)
	if err != nil {
		return errors.FileSystemError(err, "cannot resolve %s", dest).Build()
	}
	if src == dst {
		return errors.ConfigError("destination path must be different from source path").Build()
	}
	if !isDir(filepath.Join(source, ViewsDir)) {
		return errors.ConfigError("source path must contain a %s directory", ViewsDir).Build()
	}
	return nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// Load returns the slash-separated view paths of the site, relative to the views directory.
// The manifest wins when present.
func Load(source string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(source, FileName))
	switch {
	case err == nil:
		return Parse(data)
	case os.IsNotExist(err):
		return Walk(filepath.Join(source, ViewsDir))
	default:
		return nil, errors.FileSystemError(err, "cannot read %s", FileName).Build()
	}
}

// Parse expands a manifest. Strings are views at the current level; a nested array names a
// directory in its first element and lists that directory's entries after it.
func Parse(data []byte) ([]string, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.ParseError("error parsing %s: %v", FileName, err).Build()
	}
	items, ok := root.([]any)
	if !ok {
		return nil, errors.ParseError("error parsing %s: '%v' must be array", FileName, root).Build()
	}
	var out []string
	if err := expand("", items, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func expand(dir string, items []any, out *[]string) error {
	for _, item := range items {
		switch v := item.(type) {
		case string:
			*out = append(*out, path.Join(dir, v))
		case []any:
			if len(v) == 0 {
				return errors.ParseError("error parsing %s: empty directory entry", FileName).Build()
			}
			name, ok := v[0].(string)
			if !ok {
				return errors.ParseError("error parsing %s: directory name '%v' must be string", FileName, v[0]).Build()
			}
			if err := expand(path.Join(dir, name), v[1:], out); err != nil {
				return err
			}
		default:
			return errors.ParseError("error parsing %s: '%v' must be array or string", FileName, item).Build()
		}
	}
	return nil
}

// Walk lists every regular file below dir in lexical order.
func Walk(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.FileSystemError(err, "cannot walk %s", dir).Build()
	}
	return out, nil
}
