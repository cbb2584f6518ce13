package errors

import (
	stderrors "errors"
	"fmt"
)

// Location identifies where in a source file an error was raised.
type Location struct {
	Path string
	Line int
}

func (l Location) String() string {
	return fmt.Sprintf("line %d of file %s", l.Line, l.Path)
}

// ClassifiedError represents a structured error with category, severity, context and an
// optional source location.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
	location *Location
}

// Error implements the standard error interface.
func (e *ClassifiedError) Error() string {
	msg := e.message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	if e.location != nil {
		return fmt.Sprintf("error on %s: [%s] %s", e.location, e.category, msg)
	}
	return fmt.Sprintf("[%s] %s", e.category, msg)
}

// Unwrap implements Go 1.13+ error unwrapping.
func (e *ClassifiedError) Unwrap() error {
	return e.cause
}

// Category returns the error category.
func (e *ClassifiedError) Category() ErrorCategory {
	return e.category
}

// Severity returns the error severity.
func (e *ClassifiedError) Severity() ErrorSeverity {
	return e.severity
}

// Message returns the error message.
func (e *ClassifiedError) Message() string {
	return e.message
}

// Cause returns the underlying error.
func (e *ClassifiedError) Cause() error {
	return e.cause
}

// Context returns the error context.
func (e *ClassifiedError) Context() ErrorContext {
	return e.context
}

// Location returns the source location, or nil if none was attached.
func (e *ClassifiedError) Location() *Location {
	return e.location
}

func (e *ClassifiedError) clone() *ClassifiedError {
	c := *e
	return &c
}

// WithContext adds context to the error and returns a new error.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	c := e.clone()
	c.context = e.context.Merge(ErrorContext{key: value})
	return c
}

// WithLocation returns a copy of the error located at path:line.
func (e *ClassifiedError) WithLocation(path string, line int) *ClassifiedError {
	c := e.clone()
	c.location = &Location{Path: path, Line: line}
	return c
}

// Is implements error comparison for Go 1.13+ error handling.
func (e *ClassifiedError) Is(target error) bool {
	if other, ok := target.(*ClassifiedError); ok {
		return e.category == other.category && e.message == other.message
	}
	return false
}

// IsCategory checks if the error belongs to a specific category.
func (e *ClassifiedError) IsCategory(category ErrorCategory) bool {
	return e.category == category
}

// IsFatal checks if the error is fatal (should stop execution).
func (e *ClassifiedError) IsFatal() bool {
	return e.severity == SeverityFatal
}

// AsClassified finds the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// IsClassified checks if an error chain contains a ClassifiedError.
func IsClassified(err error) bool {
	_, ok := AsClassified(err)
	return ok
}

// HasCategory checks if the error chain is classified with category.
func HasCategory(err error, category ErrorCategory) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.IsCategory(category)
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal.
func GetCategory(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.Category()
	}
	return CategoryInternal
}

// HasLocation reports whether any ClassifiedError in the chain carries a location.
func HasLocation(err error) bool {
	for err != nil {
		if classified, ok := err.(*ClassifiedError); ok && classified.location != nil {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Locate attaches path:line to err unless the chain already carries a location, so errors
// raised inside nested includes keep their innermost position.
func Locate(err error, path string, line int) error {
	if err == nil || HasLocation(err) {
		return err
	}
	if classified, ok := err.(*ClassifiedError); ok {
		return classified.WithLocation(path, line)
	}
	return WrapError(err, GetCategory(err), "evaluation failed").Fatal().Build().WithLocation(path, line)
}
