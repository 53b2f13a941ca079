// Package errors classifies workflow failures so routers and callers can
// decide between retrying, substituting, and failing hard.
//
// The taxonomy follows how each class is handled:
//   - transient: a retry may help (timeouts, rate limits)
//   - permanent: retry will not help (bad credentials, unreachable service)
//   - recoverable: the workflow can absorb it inline (malformed JSON,
//     validation failures) without aborting the run
package errors

import (
	"errors"
	"fmt"
)

// Category describes how an error should be handled.
type Category int

const (
	// CategoryTransient indicates a retry will likely help.
	CategoryTransient Category = iota

	// CategoryPermanent indicates a retry will not help.
	CategoryPermanent

	// CategoryRecoverable indicates the workflow can absorb the failure
	// inline: substitute a default, collect a validation message, or feed
	// an error payload back to the model.
	CategoryRecoverable
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTransient:
		return "transient"
	case CategoryPermanent:
		return "permanent"
	case CategoryRecoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with its handling category.
type CategorizedError struct {
	Err      error
	Category Category
	Retries  int
	Context  string
}

func (e *CategorizedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (category: %s, attempts: %d)", e.Context, e.Err, e.Category, e.Retries)
	}
	return fmt.Sprintf("%s (category: %s, attempts: %d)", e.Err, e.Category, e.Retries)
}

func (e *CategorizedError) Unwrap() error { return e.Err }

// Transient wraps err as transient.
func Transient(err error, context string) *CategorizedError {
	return &CategorizedError{Err: err, Category: CategoryTransient, Context: context}
}

// Permanent wraps err as permanent.
func Permanent(err error, context string) *CategorizedError {
	return &CategorizedError{Err: err, Category: CategoryPermanent, Context: context}
}

// Recoverable wraps err as recoverable.
func Recoverable(err error, context string) *CategorizedError {
	return &CategorizedError{Err: err, Category: CategoryRecoverable, Context: context}
}

// TransportError is a failed call to the generation service or another
// remote dependency. Fatal for the run; never retried automatically.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("transport failure at %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// JSONParseError indicates the model produced invalid JSON where JSON was
// required.
type JSONParseError struct {
	Input   string
	Message string
}

func (e *JSONParseError) Error() string {
	return fmt.Sprintf("JSON parse error: %s", e.Message)
}

// ValidationError is a field-level validation failure on extracted data.
// These are collected and returned alongside the raw data, never raised
// past the parsing boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// TimeoutError indicates an operation exceeded its deadline.
type TimeoutError struct {
	Operation string
	Elapsed   string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout after %s: %s", e.Elapsed, e.Operation)
}

// Categorize determines how an error should be handled. Unknown errors are
// permanent: failing hard beats retrying blind.
func Categorize(err error) Category {
	if err == nil {
		return CategoryPermanent
	}

	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Category
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return CategoryPermanent
	}

	var jsonErr *JSONParseError
	if errors.As(err, &jsonErr) {
		return CategoryRecoverable
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return CategoryRecoverable
	}

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return CategoryTransient
	}

	return CategoryPermanent
}

// IsRetryable reports whether the error should be retried.
func IsRetryable(err error) bool {
	return Categorize(err) == CategoryTransient
}

// IsRecoverable reports whether the workflow can absorb the error inline.
func IsRecoverable(err error) bool {
	return Categorize(err) == CategoryRecoverable
}
