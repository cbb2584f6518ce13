// Package relpath computes relative links between files of the output tree.
package relpath

import (
	"net/url"
	"strings"
)

// Relative returns the path of target as seen from the file here. Both are
// slash-separated and relative to the destination root.
func Relative(target, here string) string {
	targetDirs, name := split(target)
	hereDirs, _ := split(here)

	for len(targetDirs) > 0 && len(hereDirs) > 0 && targetDirs[0] == hereDirs[0] {
		targetDirs = targetDirs[1:]
		hereDirs = hereDirs[1:]
	}

	parts := make([]string, 0, len(hereDirs)+len(targetDirs)+1)
	for range hereDirs {
		parts = append(parts, "..")
	}
	parts = append(parts, targetDirs...)
	parts = append(parts, name)
	return strings.Join(parts, "/")
}

// Href is Relative with every segment percent-encoded for use in an href.
func Href(target, here string) string {
	segs := strings.Split(Relative(target, here), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// split returns the directory segments and the final element of p.
func split(p string) ([]string, string) {
	p = strings.TrimPrefix(p, "./")
	segs := strings.Split(p, "/")
	dirs := make([]string, 0, len(segs)-1)
	for _, s := range segs[:len(segs)-1] {
		if s != "" && s != "." {
			dirs = append(dirs, s)
		}
	}
	return dirs, segs[len(segs)-1]
}
