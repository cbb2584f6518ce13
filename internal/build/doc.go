// Package build provides the build execution pipeline for loki.
//
// A build validates the source and destination, expands the manifest, runs the pre-load
// configuration script, registers every document, runs the post-load script and finally
// renders the site. Optional stages write a sitemap and verify links in the written output.
// All execution paths (CLI, tests) route through BuildService.
package build
