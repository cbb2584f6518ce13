package testutil

import (
	"testing"
)

func TestWriteTreeAndAssertions(t *testing.T) {
	root := t.TempDir()
	WriteTree(t, root, map[string]string{
		"a.html":       "alpha",
		"nested/b.txt": "beta gamma",
	})

	NewFileAssertions(t, root).
		AssertFileExists("a.html").
		AssertFileEquals("a.html", "alpha").
		AssertFileContains("nested/b.txt", "gamma").
		AssertFileNotExists("c.html")
}
