// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrSourceUnavailable indicates the grid provider failed to deliver a
	// grid for a source (network or workbook parse failure).
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrLayoutUnrecoverable indicates the header-band scan found no group
	// row within the scan window; the source has no usable layout.
	ErrLayoutUnrecoverable = errors.New("layout unrecoverable")

	// ErrNoData indicates a query matched nothing.
	ErrNoData = errors.New("no data")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownSource indicates a source id is not registered.
	ErrUnknownSource = errors.New("unknown source")
)

// FetchError represents spreadsheet fetch failures with context.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error (url=%s, status=%d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error (url=%s): %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new fetch error.
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}
