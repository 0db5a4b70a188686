// Package schemaerrors provides structured error types for schemagen.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between a missing document,
// malformed content and a bad $ref value without matching on message text.
//
// # Error Categories
//
//   - ParseError: YAML/JSON content that cannot be decoded
//   - LoadError: a document file that is missing or unreadable
//   - ReferenceError: malformed $ref values, circular references, path
//     traversal and identifier mismatches
//   - ResourceLimitError: depth, size and cache limits
//   - ConfigError: invalid options or misuse of the API
//
// # Usage with errors.As
//
//	result, err := compiler.Generate("schemas/car.yaml")
//	if err != nil {
//	    var refErr *schemaerrors.ReferenceError
//	    if errors.As(err, &refErr) && refErr.IsSyntax {
//	        // Report the offending $ref value to the schema author
//	    }
//	}
package schemaerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrParse indicates document content could not be decoded.
	ErrParse = errors.New("parse error")

	// ErrLoad indicates a document could not be read.
	ErrLoad = errors.New("load error")

	// ErrReference indicates a reference resolution failure.
	ErrReference = errors.New("reference error")

	// ErrReferenceSyntax indicates a malformed $ref value.
	ErrReferenceSyntax = errors.New("invalid reference syntax")

	// ErrCircularReference indicates a document references one of its ancestors.
	ErrCircularReference = errors.New("circular reference")

	// ErrPathTraversal indicates an identifier tried to escape the base directory.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrIdentifierMismatch indicates a loaded document declares a different id
	// than the one it was referenced by.
	ErrIdentifierMismatch = errors.New("identifier mismatch")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// ParseError represents a failure to decode a schema document.
type ParseError struct {
	// Path is the file path or source identifier
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// LoadError represents a document file that could not be read.
// It is never retried.
type LoadError struct {
	// Path is the file that was being read
	Path string
	// ID is the identifier the file was requested by (empty for the root document)
	ID string
	// Cause is the underlying I/O error
	Cause error
}

// Error returns a human-readable error message.
func (e *LoadError) Error() string {
	msg := "load error"
	if e.ID != "" {
		msg += fmt.Sprintf(" for %q", e.ID)
	}
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// ReferenceError represents a $ref that could not be compiled.
type ReferenceError struct {
	// Ref is the reference value that failed
	Ref string
	// Path is the JSON pointer of the marker inside its document (may be empty)
	Path string
	// Source is the document containing the marker (may be empty)
	Source string
	// IsSyntax is true when the value is not a valid reference string
	IsSyntax bool
	// IsCircular is true when the referenced document is already being resolved
	IsCircular bool
	// IsPathTraversal is true when the identifier escapes the base directory
	IsPathTraversal bool
	// IsMismatch is true when the loaded document declares a different id
	IsMismatch bool
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "reference error"
	switch {
	case e.IsSyntax:
		msg = "invalid reference"
	case e.IsCircular:
		msg = "circular reference"
	case e.IsPathTraversal:
		msg = "path traversal detected"
	case e.IsMismatch:
		msg = "identifier mismatch"
	}
	if e.Ref != "" {
		msg += fmt.Sprintf(" %q", e.Ref)
	}
	if e.Source != "" || e.Path != "" {
		msg += " at " + e.Source + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference, and the narrower sentinels when the
// corresponding flag is set.
func (e *ReferenceError) Is(target error) bool {
	switch target {
	case ErrReference:
		return true
	case ErrReferenceSyntax:
		return e.IsSyntax
	case ErrCircularReference:
		return e.IsCircular
	case ErrPathTraversal:
		return e.IsPathTraversal
	case ErrIdentifierMismatch:
		return e.IsMismatch
	}
	return false
}

// ResourceLimitError represents a resource exhaustion condition.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded
	// Common values: "ref_depth", "cached_documents", "file_size"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
