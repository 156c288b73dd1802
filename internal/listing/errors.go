package listing

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is a non-2xx response from the listing host. Callers should
// prefer the predicate functions over asserting on the type directly.
type HTTPError struct {
	operation  string
	url        string
	statusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: %s: HTTP %d", e.operation, e.url, e.statusCode)
}

func newHTTPError(operation, url string, statusCode int) *HTTPError {
	return &HTTPError{operation: operation, url: url, statusCode: statusCode}
}

// StatusCode returns the HTTP status code from the response.
func (e *HTTPError) StatusCode() int { return e.statusCode }

// URL returns the URL that failed.
func (e *HTTPError) URL() string { return e.url }

// IsNotFound reports whether err is an HTTP error with 404 status.
func IsNotFound(err error) bool { return HasStatusCode(err, http.StatusNotFound) }

// IsForbidden reports whether err is an HTTP error with 403 status.
func IsForbidden(err error) bool { return HasStatusCode(err, http.StatusForbidden) }

// HasStatusCode reports whether err is an HTTP error whose status matches.
func HasStatusCode(err error, code int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.statusCode == code
}
