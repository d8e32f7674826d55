package trello

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a failed call against the Trello API
type APIError struct {
	// Op is the operation that failed (e.g., "listBoards", "createCard")
	Op string

	// StatusCode is the HTTP status returned by the service, or 0 if the
	// request never produced a response
	StatusCode int

	// Body is a truncated copy of the response body, if any
	Body string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("trello %s: status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("trello %s: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err represents a resource the service does not
// know about, as opposed to a connectivity or authorization failure.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsUnauthorized reports whether err represents rejected credentials
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}
