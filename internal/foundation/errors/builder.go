package errors

import "fmt"

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
	location *Location
}

// NewError creates a new ErrorBuilder with the specified category and message.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError creates a new ErrorBuilder that wraps an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	b := NewError(category, message)
	b.cause = err
	return b
}

// WithSeverity sets the error severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// WithCause sets the wrapped error.
func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.cause = err
	return b
}

// WithContext adds a context key-value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

// WithLocation attaches the source location.
func (b *ErrorBuilder) WithLocation(path string, line int) *ErrorBuilder {
	b.location = &Location{Path: path, Line: line}
	return b
}

// Fatal sets the severity to fatal.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	return b.WithSeverity(SeverityFatal)
}

// Warning sets the severity to warning.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	return b.WithSeverity(SeverityWarning)
}

// Build creates the final ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		message:  b.message,
		cause:    b.cause,
		context:  b.context,
		location: b.location,
	}
}

// Convenience constructors, one per content error kind. All are fatal: the compiler has no
// partial-success mode.

// ParseError creates an error for malformed directives or headers.
func ParseError(format string, args ...any) *ErrorBuilder {
	return NewError(CategoryParse, fmt.Sprintf(format, args...)).Fatal()
}

// ValidationError creates an error for type mismatches and malformed values.
func ValidationError(format string, args ...any) *ErrorBuilder {
	return NewError(CategoryValidation, fmt.Sprintf(format, args...)).Fatal()
}

// ReferenceError creates an error for unknown directives, ids and manual paths.
func ReferenceError(format string, args ...any) *ErrorBuilder {
	return NewError(CategoryReference, fmt.Sprintf(format, args...)).Fatal()
}

// RegistrationError creates an error for identifier collisions and phase misuse.
func RegistrationError(format string, args ...any) *ErrorBuilder {
	return NewError(CategoryRegistration, fmt.Sprintf(format, args...)).Fatal()
}

// ConfigError creates a configuration error.
func ConfigError(format string, args ...any) *ErrorBuilder {
	return NewError(CategoryConfig, fmt.Sprintf(format, args...)).Fatal()
}

// FileSystemError wraps an I/O failure.
func FileSystemError(err error, format string, args ...any) *ErrorBuilder {
	return WrapError(err, CategoryFileSystem, fmt.Sprintf(format, args...)).Fatal()
}

// ScriptError wraps a configuration script failure.
func ScriptError(err error, format string, args ...any) *ErrorBuilder {
	return WrapError(err, CategoryScript, fmt.Sprintf(format, args...)).Fatal()
}

// InternalError creates an internal error.
func InternalError(format string, args ...any) *ErrorBuilder {
	return NewError(CategoryInternal, fmt.Sprintf(format, args...)).Fatal()
}
