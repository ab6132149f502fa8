// Package errors provides custom error types for bibsync.
// Entry level failures (invalid entries, rejected writes) are reported per
// record and never stop a run; configuration and listing failures are fatal.
// The types here let callers tell the two apart with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
var As = errors.As

// Join returns an error that wraps the given errors.
var Join = errors.Join

// Common sentinel errors for bibsync
var (
	// ErrNotFound indicates that a requested record or collection was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidEntry indicates that a raw bibliographic record cannot be normalized
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrServiceUnavailable indicates a transient remote service failure
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrServiceRejected indicates the remote service refused a request
	ErrServiceRejected = errors.New("service rejected request")

	// ErrRateLimited indicates that the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrAmbiguousConfiguration indicates that a collection cannot be resolved from configuration
	ErrAmbiguousConfiguration = errors.New("ambiguous configuration")

	// ErrDuplicateKey indicates two remote records share a natural key in strict mode
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// InvalidEntryError describes a raw record that failed normalization.
type InvalidEntryError struct {
	ID     string
	Field  string
	Reason string
}

// Error implements the error interface
func (e *InvalidEntryError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("invalid entry %s: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("invalid entry: %s", e.Reason)
}

// Is implements errors.Is support
func (e *InvalidEntryError) Is(target error) bool {
	return target == ErrInvalidEntry
}

// NewInvalidEntryError creates a new InvalidEntryError
func NewInvalidEntryError(id, field, reason string) *InvalidEntryError {
	return &InvalidEntryError{ID: id, Field: field, Reason: reason}
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an error returned by the remote service.
// A zero StatusCode means the request never got a response.
type APIError struct {
	Service    string
	StatusCode int
	Code       string // service specific error code, e.g. "validation_error"
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 429:
		return target == ErrRateLimited || target == ErrServiceUnavailable
	case e.StatusCode == 404:
		return target == ErrNotFound || target == ErrServiceRejected
	case e.StatusCode >= 500, e.StatusCode == 0:
		return target == ErrServiceUnavailable
	default:
		return target == ErrServiceRejected
	}
}

// Retryable reports whether repeating the request may succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode == 409 || e.StatusCode == 429 || e.StatusCode >= 500
}

// NewAPIError creates a new APIError
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// NewAmbiguousConfigError creates a ConfigError for a collection that
// cannot be resolved. It matches ErrAmbiguousConfiguration.
func NewAmbiguousConfigError(component, message string) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       ErrAmbiguousConfiguration,
	}
}

// DuplicateKeyError reports remote records sharing one natural key.
type DuplicateKeyError struct {
	Collection string
	Key        string
	RemoteIDs  []string
}

// Error implements the error interface
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q in %s: %v", e.Key, e.Collection, e.RemoteIDs)
}

// Is implements errors.Is support
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// NewDuplicateKeyError creates a new DuplicateKeyError
func NewDuplicateKeyError(collection, key string, remoteIDs ...string) *DuplicateKeyError {
	return &DuplicateKeyError{Collection: collection, Key: key, RemoteIDs: remoteIDs}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInvalidEntry checks if an error is an invalid entry error
func IsInvalidEntry(err error) bool {
	return errors.Is(err, ErrInvalidEntry)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsServiceUnavailable checks if an error is a transient service failure
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// IsServiceRejected checks if the service refused a request
func IsServiceRejected(err error) bool {
	return errors.Is(err, ErrServiceRejected)
}

// IsAmbiguousConfiguration checks if an error is a fatal configuration error
func IsAmbiguousConfiguration(err error) bool {
	return errors.Is(err, ErrAmbiguousConfiguration)
}

// IsDuplicateKey checks if an error is a duplicate key error
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// ParseError reports an export or config file that could not be decoded.
type ParseError struct {
	Format  string // "bibtex", "json", "yaml"
	File    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IOError reports a local file that could not be read or written.
type IOError struct {
	Operation string // "read", "write", "create", "locate"
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("cannot %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("cannot %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ResourceError reports a failed operation on a remote record or
// collection.
type ResourceError struct {
	Operation string // "list", "get", "create", "update", "archive"
	Resource  string // collection name
	ID        string
	Err       error
}

func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %v", e.Operation, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Err: err}
}

// WrapIO wraps a file system error. A nil err returns nil.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapResource wraps a remote operation error. A nil err returns nil.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps a decoding error. A nil err returns nil.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// Reason returns a short human readable cause for err, suitable for a
// status line. Typed errors report their message without wrapping context.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode != 0 {
			return fmt.Sprintf("%s (status %d)", apiErr.Message, apiErr.StatusCode)
		}
		return apiErr.Message
	}
	var entryErr *InvalidEntryError
	if errors.As(err, &entryErr) {
		return entryErr.Reason
	}
	return err.Error()
}
