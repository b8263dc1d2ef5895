// Package errors provides the error taxonomy shared by the OpenWord packages.
//
// Most conditions in the annotation and lexicon core are degraded silently
// (malformed markup, malformed RTF, unresolved codes). The types here exist for
// the storage layer, configuration, and the single caller-visible condition:
// an unavailable lexicon.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a record (lexicon entry, verse, book) was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable indicates a collaborator that failed to initialize
	ErrUnavailable = errors.New("unavailable")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
	// ErrClosed indicates use of a handle after Close
	ErrClosed = errors.New("closed")
)

// ErrLexiconUnavailable is reported when the lexicon store could not be opened.
// It is sticky: once returned for a handle, every later call returns it too.
var ErrLexiconUnavailable = &UnavailableError{Resource: "lexicon"}

// NotFoundError represents a missing record with context
type NotFoundError struct {
	Resource string // Type of record (e.g., "lexicon entry", "verse", "book")
	ID       string // Identifier of the record
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnavailableError represents a collaborator that could not be initialized.
type UnavailableError struct {
	Resource string // Collaborator name (e.g., "lexicon")
	Err      error  // Cause of the failed initialization, if known
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s temporarily unavailable: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("%s temporarily unavailable", e.Resource)
}

// Unwrap returns ErrUnavailable so callers can match on the sentinel.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// Cause returns the underlying initialization failure, if any.
func (e *UnavailableError) Cause() error {
	return e.Err
}

// Is reports whether target is an UnavailableError for the same resource.
func (e *UnavailableError) Is(target error) bool {
	t, ok := target.(*UnavailableError)
	if !ok {
		return false
	}
	return t.Resource == e.Resource
}

// IOError represents a storage operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "open", "query", "scan")
	Path      string // Database file involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing error (verse references, config files)
type ParseError struct {
	Format  string // Format being parsed (e.g., "reference", "YAML")
	Input   string // Offending input or file path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("failed to parse %s %q: %s", e.Format, e.Input, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewUnavailable creates an UnavailableError carrying the initialization cause.
func NewUnavailable(resource string, err error) *UnavailableError {
	return &UnavailableError{
		Resource: resource,
		Err:      err,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, input, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Input:   input,
		Message: message,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join wraps errors.Join for convenience
func Join(errs ...error) error {
	return errors.Join(errs...)
}
