// Package errors provides the classified error primitives used across the site compiler.
//
// Every failure the compiler reports is a ClassifiedError: a category that names the kind of
// content problem (parse, validation, reference, registration, config), a severity, structured
// context, and an optional source location. Builds are all-or-nothing, so every category
// defaults to fatal.
//
// Example usage:
//
//	err := errors.ReferenceError("no match found").
//		WithContext("id", id).
//		Build()
//
//	// attaches path/line once; inner locations win
//	return errors.Locate(err, "views/index", 12)
package errors
